// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"
)

// Resource handles
//
// These opaque IDs represent GPU objects. Each backend maintains the mapping
// between IDs and native resources; on the gl backend they are GL names.

// Renderbuffer is an opaque handle to pixel storage.
type Renderbuffer uint32

// Framebuffer is an opaque handle to a render target.
type Framebuffer uint32

// None is the zero handle: nothing bound, or the default surface.
const None = 0

// Format is the storage format of a renderbuffer.
type Format uint8

const (
	// FormatSRGB8Alpha8 stores 8-bit sRGB-encoded color with linear alpha.
	FormatSRGB8Alpha8 Format = iota + 1

	// FormatRGBA8 stores 8-bit linear color with alpha.
	FormatRGBA8
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatSRGB8Alpha8:
		return "SRGB8_ALPHA8"
	case FormatRGBA8:
		return "RGBA8"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// Layout is the channel layout of a pixel transfer. Every layout uses one
// unsigned byte per channel and no row padding.
type Layout uint8

const (
	// LayoutRGB transfers 3 bytes per pixel.
	LayoutRGB Layout = iota + 1

	// LayoutRGBA transfers 4 bytes per pixel.
	LayoutRGBA
)

// BytesPerPixel returns the transfer size of one pixel.
func (l Layout) BytesPerPixel() int {
	switch l {
	case LayoutRGB:
		return 3
	case LayoutRGBA:
		return 4
	default:
		return 0
	}
}

// String returns the layout name.
func (l Layout) String() string {
	switch l {
	case LayoutRGB:
		return "RGB"
	case LayoutRGBA:
		return "RGBA"
	default:
		return fmt.Sprintf("Layout(%d)", uint8(l))
	}
}

// TransferSize returns the byte length of a width x height transfer.
func (l Layout) TransferSize(width, height int) int {
	return l.BytesPerPixel() * width * height
}

// Common device errors.
var (
	// ErrNoFramebuffer is returned by pixel transfers when no framebuffer is bound.
	ErrNoFramebuffer = errors.New("gpu: no framebuffer bound")

	// ErrIncomplete is returned when a framebuffer has no usable color attachment.
	ErrIncomplete = errors.New("gpu: framebuffer incomplete")

	// ErrUnknownHandle is returned when a handle was never created or was deleted.
	ErrUnknownHandle = errors.New("gpu: unknown handle")

	// ErrBadRegion is returned when a transfer region lies outside the target.
	ErrBadRegion = errors.New("gpu: region out of bounds")

	// ErrBadLayout is returned for an unsupported pixel layout.
	ErrBadLayout = errors.New("gpu: unsupported pixel layout")

	// ErrShortBuffer is returned when a transfer buffer is smaller than the region.
	ErrShortBuffer = errors.New("gpu: buffer too small for region")
)

// CheckTransfer validates a pixel transfer against a target of size
// (targetW, targetH) and a caller buffer of length bufLen.
func CheckTransfer(x, y, width, height, targetW, targetH int, layout Layout, bufLen int) error {
	if layout.BytesPerPixel() == 0 {
		return fmt.Errorf("%w: %v", ErrBadLayout, layout)
	}
	if x < 0 || y < 0 || width <= 0 || height <= 0 || x+width > targetW || y+height > targetH {
		return fmt.Errorf("%w: (%d,%d %dx%d) in %dx%d", ErrBadRegion, x, y, width, height, targetW, targetH)
	}
	if need := layout.TransferSize(width, height); bufLen < need {
		return fmt.Errorf("%w: have %d, need %d", ErrShortBuffer, bufLen, need)
	}
	return nil
}
