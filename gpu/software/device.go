// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package software implements gpu.Device in CPU memory.
//
// It is the lowest-priority surface backend: always available, exact, and
// slow. Renderbuffer storage is kept in transfer order (lower-left origin,
// RGBA), so pixel transfers are plain row copies.
//
// Importing the package registers the "software" backend:
//
//	import _ "github.com/gogpu/fluxcap/gpu/software"
package software

import (
	"fmt"

	"github.com/gogpu/fluxcap/gpu"
)

// Stats counts the commands a Device has executed.
type Stats struct {
	Finishes      int
	Reads         int
	Writes        int
	Renderbuffers int // live renderbuffers
	Framebuffers  int // live framebuffers
}

type renderbuffer struct {
	format gpu.Format
	width  int
	height int
	pix    []byte // RGBA, row 0 = bottom
}

type framebuffer struct {
	color gpu.Renderbuffer
}

// Device is a CPU implementation of gpu.Device.
//
// Device is NOT safe for concurrent use, matching the single-thread
// contract of real GPU contexts.
type Device struct {
	nextID uint32

	renderbuffers map[gpu.Renderbuffer]*renderbuffer
	framebuffers  map[gpu.Framebuffer]*framebuffer

	boundRB gpu.Renderbuffer
	boundFB gpu.Framebuffer

	stats Stats
}

var _ gpu.Device = (*Device)(nil)

// NewDevice creates an empty device.
func NewDevice() *Device {
	return &Device{
		nextID:        1, // 0 is gpu.None
		renderbuffers: make(map[gpu.Renderbuffer]*renderbuffer),
		framebuffers:  make(map[gpu.Framebuffer]*framebuffer),
	}
}

func (d *Device) allocID() uint32 {
	id := d.nextID
	d.nextID++
	return id
}

// CreateRenderbuffer allocates zeroed RGBA storage.
func (d *Device) CreateRenderbuffer(format gpu.Format, width, height int) (gpu.Renderbuffer, error) {
	if format != gpu.FormatSRGB8Alpha8 && format != gpu.FormatRGBA8 {
		return gpu.None, fmt.Errorf("software: unsupported format %v", format)
	}
	if width <= 0 || height <= 0 {
		return gpu.None, fmt.Errorf("software: invalid renderbuffer size %dx%d", width, height)
	}
	rb := gpu.Renderbuffer(d.allocID())
	d.renderbuffers[rb] = &renderbuffer{
		format: format,
		width:  width,
		height: height,
		pix:    make([]byte, 4*width*height),
	}
	d.boundRB = rb
	return rb, nil
}

// CreateFramebuffer allocates a framebuffer with no attachment.
func (d *Device) CreateFramebuffer() (gpu.Framebuffer, error) {
	fb := gpu.Framebuffer(d.allocID())
	d.framebuffers[fb] = &framebuffer{}
	d.boundFB = fb
	return fb, nil
}

// FramebufferRenderbuffer attaches rb as the color attachment of fb.
func (d *Device) FramebufferRenderbuffer(fb gpu.Framebuffer, rb gpu.Renderbuffer) error {
	f, ok := d.framebuffers[fb]
	if !ok {
		return fmt.Errorf("%w: framebuffer %d", gpu.ErrUnknownHandle, fb)
	}
	if _, ok := d.renderbuffers[rb]; !ok {
		return fmt.Errorf("%w: renderbuffer %d", gpu.ErrIncomplete, rb)
	}
	f.color = rb
	d.boundFB = fb
	return nil
}

// BindRenderbuffer records rb as current.
func (d *Device) BindRenderbuffer(rb gpu.Renderbuffer) { d.boundRB = rb }

// BindFramebuffer records fb as current.
func (d *Device) BindFramebuffer(fb gpu.Framebuffer) { d.boundFB = fb }

// DeleteRenderbuffer releases rb. Unknown handles are ignored.
func (d *Device) DeleteRenderbuffer(rb gpu.Renderbuffer) {
	if _, ok := d.renderbuffers[rb]; !ok {
		return
	}
	delete(d.renderbuffers, rb)
	if d.boundRB == rb {
		d.boundRB = gpu.None
	}
}

// DeleteFramebuffer releases fb. Unknown handles are ignored.
func (d *Device) DeleteFramebuffer(fb gpu.Framebuffer) {
	if _, ok := d.framebuffers[fb]; !ok {
		return
	}
	delete(d.framebuffers, fb)
	if d.boundFB == fb {
		d.boundFB = gpu.None
	}
}

// Finish is a no-op: CPU commands complete synchronously.
func (d *Device) Finish() error {
	d.stats.Finishes++
	return nil
}

// ReadPixels copies from the bound framebuffer's color attachment.
func (d *Device) ReadPixels(x, y, width, height int, layout gpu.Layout, dst []byte) (int, error) {
	rb, err := d.boundColor()
	if err != nil {
		return 0, err
	}
	if err := gpu.CheckTransfer(x, y, width, height, rb.width, rb.height, layout, len(dst)); err != nil {
		return 0, err
	}
	bpp := layout.BytesPerPixel()
	n := 0
	for row := 0; row < height; row++ {
		src := rb.pix[((y+row)*rb.width+x)*4:]
		for col := 0; col < width; col++ {
			copy(dst[n:n+bpp], src[col*4:col*4+bpp])
			n += bpp
		}
	}
	d.stats.Reads++
	return n, nil
}

// WritePixels copies into the bound framebuffer's color attachment.
// RGB sources are stored with opaque alpha.
func (d *Device) WritePixels(x, y, width, height int, layout gpu.Layout, src []byte) error {
	rb, err := d.boundColor()
	if err != nil {
		return err
	}
	if err := gpu.CheckTransfer(x, y, width, height, rb.width, rb.height, layout, len(src)); err != nil {
		return err
	}
	bpp := layout.BytesPerPixel()
	n := 0
	for row := 0; row < height; row++ {
		dst := rb.pix[((y+row)*rb.width+x)*4:]
		for col := 0; col < width; col++ {
			p := dst[col*4 : col*4+4]
			copy(p, src[n:n+bpp])
			if bpp == 3 {
				p[3] = 0xff
			}
			n += bpp
		}
	}
	d.stats.Writes++
	return nil
}

// Stats returns the command counters.
func (d *Device) Stats() Stats {
	s := d.stats
	s.Renderbuffers = len(d.renderbuffers)
	s.Framebuffers = len(d.framebuffers)
	return s
}

// Bound returns the currently bound renderbuffer and framebuffer.
func (d *Device) Bound() (gpu.Renderbuffer, gpu.Framebuffer) {
	return d.boundRB, d.boundFB
}

func (d *Device) boundColor() (*renderbuffer, error) {
	if d.boundFB == gpu.None {
		return nil, gpu.ErrNoFramebuffer
	}
	f, ok := d.framebuffers[d.boundFB]
	if !ok {
		return nil, fmt.Errorf("%w: framebuffer %d", gpu.ErrUnknownHandle, d.boundFB)
	}
	rb, ok := d.renderbuffers[f.color]
	if !ok {
		return nil, gpu.ErrIncomplete
	}
	return rb, nil
}
