// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package fluxcap

import (
	"fmt"

	"github.com/gogpu/fluxcap/gpu"
)

// Target is an offscreen render target: one sRGB renderbuffer attached as
// the color attachment of one framebuffer.
//
// A Target must be destroyed exactly once, before its device's context is
// closed.
type Target struct {
	dev      gpu.Device
	rb       gpu.Renderbuffer
	fb       gpu.Framebuffer
	width    int
	height   int
	released bool
}

// NewTarget allocates a width x height target on dev and leaves nothing
// bound. If the driver rejects any step, everything created so far is
// deleted and the error wraps ErrAllocation.
func NewTarget(dev gpu.Device, width, height int) (*Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrAllocation, width, height)
	}

	rb, err := dev.CreateRenderbuffer(gpu.FormatSRGB8Alpha8, width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: renderbuffer: %w", ErrAllocation, err)
	}

	fb, err := dev.CreateFramebuffer()
	if err != nil {
		dev.DeleteRenderbuffer(rb)
		return nil, fmt.Errorf("%w: framebuffer: %w", ErrAllocation, err)
	}

	if err := dev.FramebufferRenderbuffer(fb, rb); err != nil {
		dev.DeleteFramebuffer(fb)
		dev.DeleteRenderbuffer(rb)
		return nil, fmt.Errorf("%w: attach: %w", ErrAllocation, err)
	}

	dev.BindFramebuffer(gpu.None)
	dev.BindRenderbuffer(gpu.None)

	Logger().Debug("fluxcap: target allocated", "width", width, "height", height)
	return &Target{dev: dev, rb: rb, fb: fb, width: width, height: height}, nil
}

// Width returns the target width in pixels.
func (t *Target) Width() int { return t.width }

// Height returns the target height in pixels.
func (t *Target) Height() int { return t.height }

// Bind makes the target current for rendering and readback.
func (t *Target) Bind() error {
	if t.released {
		return ErrTargetReleased
	}
	t.dev.BindRenderbuffer(t.rb)
	t.dev.BindFramebuffer(t.fb)
	return nil
}

// Destroy deletes the framebuffer, then the renderbuffer. A second call
// returns ErrTargetReleased without touching the device.
func (t *Target) Destroy() error {
	if t.released {
		return ErrTargetReleased
	}
	t.released = true
	t.dev.DeleteFramebuffer(t.fb)
	t.dev.DeleteRenderbuffer(t.rb)
	Logger().Debug("fluxcap: target released")
	return nil
}

// Released reports whether Destroy has run.
func (t *Target) Released() bool { return t.released }
