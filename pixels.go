// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package fluxcap

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/gogpu/fluxcap/internal/imageio"
)

// Origin is the row order of a PixelBuffer.
type Origin uint8

const (
	// OriginBottomLeft means row 0 is the bottom of the image, as read back
	// from the GPU.
	OriginBottomLeft Origin = iota

	// OriginTopLeft means row 0 is the top of the image, as image files
	// expect.
	OriginTopLeft
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginBottomLeft:
		return "bottom-left"
	case OriginTopLeft:
		return "top-left"
	default:
		return fmt.Sprintf("Origin(%d)", uint8(o))
	}
}

// PixelBuffer is a tightly packed RGB frame: 3 bytes per pixel, no row
// padding, len(Pix) == 3*Width*Height.
type PixelBuffer struct {
	Pix    []byte
	Width  int
	Height int
	Origin Origin
}

// NewPixelBuffer returns a zeroed buffer in GPU (bottom-left) row order.
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		Pix:    make([]byte, 3*width*height),
		Width:  width,
		Height: height,
		Origin: OriginBottomLeft,
	}
}

// Stride returns the byte length of one row.
func (b *PixelBuffer) Stride() int { return 3 * b.Width }

// FlipRows reverses the row order in place and toggles Origin.
// Applying it twice restores the buffer.
func (b *PixelBuffer) FlipRows() {
	stride := b.Stride()
	tmp := make([]byte, stride)
	for top, bottom := 0, b.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		rt := b.Pix[top*stride : (top+1)*stride]
		rb := b.Pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, rt)
		copy(rt, rb)
		copy(rb, tmp)
	}
	if b.Origin == OriginBottomLeft {
		b.Origin = OriginTopLeft
	} else {
		b.Origin = OriginBottomLeft
	}
}

// Image returns the buffer as an opaque image in top-left row order,
// without modifying b.
func (b *PixelBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	stride := b.Stride()
	for y := range b.Height {
		srcRow := y
		if b.Origin == OriginBottomLeft {
			srcRow = b.Height - 1 - y
		}
		src := b.Pix[srcRow*stride : (srcRow+1)*stride]
		dst := img.Pix[y*img.Stride:]
		for x := range b.Width {
			dst[x*4+0] = src[x*3+0]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 0xff
		}
	}
	return img
}

// Save corrects the row order if needed and writes the frame to path,
// creating the parent directory. The encoder is chosen from the extension
// (.png, .jpg, .jpeg, .bmp, .tif, .tiff). Errors wrap ErrOutputWrite.
func (b *PixelBuffer) Save(path string) error {
	if b.Origin != OriginTopLeft {
		b.FlipRows()
		Logger().Debug("fluxcap: rows flipped")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", ErrOutputWrite, err)
		}
	}
	if err := imageio.Save(path, b.Image()); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	Logger().Info("fluxcap: frame saved", "path", path, "width", b.Width, "height", b.Height)
	return nil
}
