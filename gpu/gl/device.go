// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/gogpu/fluxcap/gpu"
)

type size struct {
	width  int
	height int
}

// Device issues GL commands on the current context.
//
// Device tracks the sizes and attachments of the objects it created so
// that transfers can be validated before they reach the driver.
type Device struct {
	renderbuffers map[gpu.Renderbuffer]size
	framebuffers  map[gpu.Framebuffer]gpu.Renderbuffer
	boundFB       gpu.Framebuffer
}

var _ gpu.Device = (*Device)(nil)

func newDevice() *Device {
	return &Device{
		renderbuffers: make(map[gpu.Renderbuffer]size),
		framebuffers:  make(map[gpu.Framebuffer]gpu.Renderbuffer),
	}
}

// glError drains the GL error queue and reports the first error.
func glError(op string) error {
	code := gl.GetError()
	if code == gl.NO_ERROR {
		return nil
	}
	for gl.GetError() != gl.NO_ERROR {
	}
	return fmt.Errorf("gl: %s: error 0x%04x", op, code)
}

func internalFormat(f gpu.Format) (uint32, error) {
	switch f {
	case gpu.FormatSRGB8Alpha8:
		return gl.SRGB8_ALPHA8, nil
	case gpu.FormatRGBA8:
		return gl.RGBA8, nil
	default:
		return 0, fmt.Errorf("gl: unsupported format %v", f)
	}
}

func transferFormat(l gpu.Layout) uint32 {
	if l == gpu.LayoutRGB {
		return gl.RGB
	}
	return gl.RGBA
}

// CreateRenderbuffer allocates renderbuffer storage and leaves it bound.
func (d *Device) CreateRenderbuffer(format gpu.Format, width, height int) (gpu.Renderbuffer, error) {
	internal, err := internalFormat(format)
	if err != nil {
		return gpu.None, err
	}
	var id uint32
	gl.GenRenderbuffers(1, &id)
	gl.BindRenderbuffer(gl.RENDERBUFFER, id)
	gl.RenderbufferStorage(gl.RENDERBUFFER, internal, int32(width), int32(height))
	if err := glError("renderbuffer storage"); err != nil {
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
		gl.DeleteRenderbuffers(1, &id)
		return gpu.None, err
	}
	rb := gpu.Renderbuffer(id)
	d.renderbuffers[rb] = size{width, height}
	return rb, nil
}

// CreateFramebuffer creates a framebuffer object and leaves it bound.
func (d *Device) CreateFramebuffer() (gpu.Framebuffer, error) {
	var id uint32
	gl.GenFramebuffers(1, &id)
	gl.BindFramebuffer(gl.FRAMEBUFFER, id)
	if err := glError("create framebuffer"); err != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.DeleteFramebuffers(1, &id)
		return gpu.None, err
	}
	fb := gpu.Framebuffer(id)
	d.framebuffers[fb] = gpu.None
	d.boundFB = fb
	return fb, nil
}

// FramebufferRenderbuffer attaches rb to COLOR_ATTACHMENT0 of fb and checks
// completeness.
func (d *Device) FramebufferRenderbuffer(fb gpu.Framebuffer, rb gpu.Renderbuffer) error {
	if _, ok := d.framebuffers[fb]; !ok {
		return fmt.Errorf("%w: framebuffer %d", gpu.ErrUnknownHandle, fb)
	}
	if _, ok := d.renderbuffers[rb]; !ok {
		return fmt.Errorf("%w: renderbuffer %d", gpu.ErrUnknownHandle, rb)
	}
	d.BindFramebuffer(fb)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, uint32(rb))
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("%w: status 0x%04x", gpu.ErrIncomplete, status)
	}
	d.framebuffers[fb] = rb
	return nil
}

// BindRenderbuffer binds rb to GL_RENDERBUFFER.
func (d *Device) BindRenderbuffer(rb gpu.Renderbuffer) {
	gl.BindRenderbuffer(gl.RENDERBUFFER, uint32(rb))
}

// BindFramebuffer binds fb for drawing and reading and sets the viewport
// to its color attachment.
func (d *Device) BindFramebuffer(fb gpu.Framebuffer) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
	d.boundFB = fb
	if sz, ok := d.renderbuffers[d.framebuffers[fb]]; ok {
		gl.Viewport(0, 0, int32(sz.width), int32(sz.height))
	}
}

// DeleteRenderbuffer deletes rb.
func (d *Device) DeleteRenderbuffer(rb gpu.Renderbuffer) {
	if _, ok := d.renderbuffers[rb]; !ok {
		return
	}
	id := uint32(rb)
	gl.DeleteRenderbuffers(1, &id)
	delete(d.renderbuffers, rb)
}

// DeleteFramebuffer deletes fb. GL reverts a deleted bound framebuffer to
// the default one.
func (d *Device) DeleteFramebuffer(fb gpu.Framebuffer) {
	if _, ok := d.framebuffers[fb]; !ok {
		return
	}
	id := uint32(fb)
	gl.DeleteFramebuffers(1, &id)
	delete(d.framebuffers, fb)
	if d.boundFB == fb {
		d.boundFB = gpu.None
	}
}

// Finish blocks until the GL command stream has drained.
func (d *Device) Finish() error {
	gl.Finish()
	return glError("finish")
}

func (d *Device) boundSize() (size, error) {
	if d.boundFB == gpu.None {
		return size{}, gpu.ErrNoFramebuffer
	}
	rb, ok := d.framebuffers[d.boundFB]
	if !ok {
		return size{}, fmt.Errorf("%w: framebuffer %d", gpu.ErrUnknownHandle, d.boundFB)
	}
	sz, ok := d.renderbuffers[rb]
	if !ok {
		return size{}, gpu.ErrIncomplete
	}
	return sz, nil
}

// ReadPixels reads from the bound framebuffer with glReadPixels, tightly
// packed.
func (d *Device) ReadPixels(x, y, width, height int, layout gpu.Layout, dst []byte) (int, error) {
	sz, err := d.boundSize()
	if err != nil {
		return 0, err
	}
	if err := gpu.CheckTransfer(x, y, width, height, sz.width, sz.height, layout, len(dst)); err != nil {
		return 0, err
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height),
		transferFormat(layout), gl.UNSIGNED_BYTE, gl.Ptr(&dst[0]))
	if err := glError("read pixels"); err != nil {
		return 0, err
	}
	return layout.TransferSize(width, height), nil
}

// WritePixels uploads src into a temporary texture and blits it into the
// bound framebuffer.
func (d *Device) WritePixels(x, y, width, height int, layout gpu.Layout, src []byte) error {
	sz, err := d.boundSize()
	if err != nil {
		return err
	}
	if err := gpu.CheckTransfer(x, y, width, height, sz.width, sz.height, layout, len(src)); err != nil {
		return err
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	defer gl.DeleteTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0,
		transferFormat(layout), gl.UNSIGNED_BYTE, gl.Ptr(&src[0]))

	var read uint32
	gl.GenFramebuffers(1, &read)
	defer gl.DeleteFramebuffers(1, &read)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, read)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, uint32(d.boundFB))
	gl.BlitFramebuffer(0, 0, int32(width), int32(height),
		int32(x), int32(y), int32(x+width), int32(y+height),
		gl.COLOR_BUFFER_BIT, gl.NEAREST)
	err = glError("blit")

	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(d.boundFB))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return err
}
