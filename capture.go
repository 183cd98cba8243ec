// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package fluxcap

import (
	"fmt"

	"github.com/gogpu/fluxcap/gpu"
)

// Renderer draws the current simulation state into the bound framebuffer.
type Renderer interface {
	Render() error
}

// CaptureFrame binds t, renders one frame with r and reads the full target
// back as tightly packed RGB bytes in lower-left origin order.
//
// ReadPixels blocks until rendering into the framebuffer has completed, so
// no explicit Finish is issued here.
func CaptureFrame(t *Target, r Renderer) (*PixelBuffer, error) {
	if err := t.Bind(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadback, err)
	}
	if err := r.Render(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	buf := NewPixelBuffer(t.width, t.height)
	n, err := t.dev.ReadPixels(0, 0, t.width, t.height, gpu.LayoutRGB, buf.Pix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadback, err)
	}
	if n != len(buf.Pix) {
		return nil, fmt.Errorf("%w: read %d of %d bytes", ErrReadback, n, len(buf.Pix))
	}

	Logger().Debug("fluxcap: frame read back", "bytes", n)
	return buf, nil
}
