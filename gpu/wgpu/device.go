// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fluxcap/gpu"
)

// copyPitchAlignment is the WebGPU row alignment for buffer-texture copies.
const copyPitchAlignment = 256

type renderbuffer struct {
	tex    hal.Texture
	width  int
	height int
}

// Device maps gpu handles to hal resources.
type Device struct {
	device hal.Device
	queue  hal.Queue

	nextID        uint32
	renderbuffers map[gpu.Renderbuffer]*renderbuffer
	framebuffers  map[gpu.Framebuffer]gpu.Renderbuffer
	boundFB       gpu.Framebuffer
}

var _ gpu.Device = (*Device)(nil)

func newDevice(device hal.Device, queue hal.Queue) *Device {
	return &Device{
		device:        device,
		queue:         queue,
		nextID:        1,
		renderbuffers: make(map[gpu.Renderbuffer]*renderbuffer),
		framebuffers:  make(map[gpu.Framebuffer]gpu.Renderbuffer),
	}
}

func (d *Device) allocID() uint32 {
	id := d.nextID
	d.nextID++
	return id
}

// CreateRenderbuffer creates a zero-filled texture. Both formats are stored
// as RGBA8Unorm: bytes pass through transfers unchanged, as they do on a GL
// sRGB renderbuffer with GL_FRAMEBUFFER_SRGB disabled.
func (d *Device) CreateRenderbuffer(format gpu.Format, width, height int) (gpu.Renderbuffer, error) {
	if format != gpu.FormatSRGB8Alpha8 && format != gpu.FormatRGBA8 {
		return gpu.None, fmt.Errorf("wgpu: unsupported format %v", format)
	}
	if width <= 0 || height <= 0 {
		return gpu.None, fmt.Errorf("wgpu: invalid renderbuffer size %dx%d", width, height)
	}
	rb := gpu.Renderbuffer(d.allocID())
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("fluxcap_renderbuffer_%d", rb),
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage: gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageCopySrc |
			gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return gpu.None, fmt.Errorf("wgpu: create texture: %w", err)
	}
	r := &renderbuffer{tex: tex, width: width, height: height}

	// A defined initial state; every later transfer then starts from CopyDst.
	if err := d.writeRows(r, make([]byte, 4*width*height)); err != nil {
		d.device.DestroyTexture(tex)
		return gpu.None, err
	}

	d.renderbuffers[rb] = r
	return rb, nil
}

// CreateFramebuffer creates an empty binding and makes it current.
func (d *Device) CreateFramebuffer() (gpu.Framebuffer, error) {
	fb := gpu.Framebuffer(d.allocID())
	d.framebuffers[fb] = gpu.None
	d.boundFB = fb
	return fb, nil
}

// FramebufferRenderbuffer attaches rb as the color target of fb.
func (d *Device) FramebufferRenderbuffer(fb gpu.Framebuffer, rb gpu.Renderbuffer) error {
	if _, ok := d.framebuffers[fb]; !ok {
		return fmt.Errorf("%w: framebuffer %d", gpu.ErrUnknownHandle, fb)
	}
	if _, ok := d.renderbuffers[rb]; !ok {
		return fmt.Errorf("%w: renderbuffer %d", gpu.ErrIncomplete, rb)
	}
	d.framebuffers[fb] = rb
	d.boundFB = fb
	return nil
}

// BindRenderbuffer is a no-op: WebGPU has no renderbuffer binding point.
func (d *Device) BindRenderbuffer(gpu.Renderbuffer) {}

// BindFramebuffer selects the target of later transfers.
func (d *Device) BindFramebuffer(fb gpu.Framebuffer) { d.boundFB = fb }

// DeleteRenderbuffer destroys the texture behind rb.
func (d *Device) DeleteRenderbuffer(rb gpu.Renderbuffer) {
	r, ok := d.renderbuffers[rb]
	if !ok {
		return
	}
	d.device.DestroyTexture(r.tex)
	delete(d.renderbuffers, rb)
}

// DeleteFramebuffer drops the binding.
func (d *Device) DeleteFramebuffer(fb gpu.Framebuffer) {
	if _, ok := d.framebuffers[fb]; !ok {
		return
	}
	delete(d.framebuffers, fb)
	if d.boundFB == fb {
		d.boundFB = gpu.None
	}
}

// Finish blocks until every submitted command has completed.
func (d *Device) Finish() error {
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	return nil
}

func (d *Device) boundColor() (*renderbuffer, error) {
	if d.boundFB == gpu.None {
		return nil, gpu.ErrNoFramebuffer
	}
	rb, ok := d.framebuffers[d.boundFB]
	if !ok {
		return nil, fmt.Errorf("%w: framebuffer %d", gpu.ErrUnknownHandle, d.boundFB)
	}
	r, ok := d.renderbuffers[rb]
	if !ok {
		return nil, gpu.ErrIncomplete
	}
	return r, nil
}

// WritePixels uploads a full-surface image. Partial regions are rejected.
func (d *Device) WritePixels(x, y, width, height int, layout gpu.Layout, src []byte) error {
	r, err := d.boundColor()
	if err != nil {
		return err
	}
	if err := gpu.CheckTransfer(x, y, width, height, r.width, r.height, layout, len(src)); err != nil {
		return err
	}
	if x != 0 || y != 0 || width != r.width || height != r.height {
		return fmt.Errorf("%w: wgpu uploads cover the whole surface", gpu.ErrBadRegion)
	}

	// Expand to RGBA and reverse rows: transfer row 0 is the bottom,
	// texture row 0 is the top.
	bpp := layout.BytesPerPixel()
	rgba := make([]byte, 4*width*height)
	for row := range height {
		s := src[row*width*bpp:]
		t := rgba[(height-1-row)*width*4:]
		for col := range width {
			copy(t[col*4:col*4+bpp], s[col*bpp:col*bpp+bpp])
			if bpp == 3 {
				t[col*4+3] = 0xff
			}
		}
	}
	return d.writeRows(r, rgba)
}

func (d *Device) writeRows(r *renderbuffer, rgba []byte) error {
	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: r.tex, MipLevel: 0},
		rgba,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(4 * r.width), RowsPerImage: uint32(r.height)},
		&hal.Extent3D{Width: uint32(r.width), Height: uint32(r.height), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: write texture: %w", err)
	}
	return nil
}

// ReadPixels copies the bound texture to a staging buffer, waits, and
// crops the requested region in lower-left order.
func (d *Device) ReadPixels(x, y, width, height int, layout gpu.Layout, dst []byte) (int, error) {
	r, err := d.boundColor()
	if err != nil {
		return 0, err
	}
	if err := gpu.CheckTransfer(x, y, width, height, r.width, r.height, layout, len(dst)); err != nil {
		return 0, err
	}

	full, stride, err := d.readTexture(r)
	if err != nil {
		return 0, err
	}

	bpp := layout.BytesPerPixel()
	n := 0
	for row := range height {
		// Transfer row (y+row) from the bottom is texture row h-1-(y+row).
		src := full[(r.height-1-(y+row))*stride+x*4:]
		for col := range width {
			copy(dst[n:n+bpp], src[col*4:col*4+bpp])
			n += bpp
		}
	}
	return n, nil
}

// readTexture returns the whole texture in top-down rows of the returned
// stride.
func (d *Device) readTexture(r *renderbuffer) ([]byte, int, error) {
	w, h := uint32(r.width), uint32(r.height)
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(alignedBytesPerRow) * uint64(h)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "fluxcap_readback"})
	if err != nil {
		return nil, 0, fmt.Errorf("wgpu: create encoder: %w", err)
	}
	if err := encoder.BeginEncoding("fluxcap_readback"); err != nil {
		return nil, 0, fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "fluxcap_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, 0, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopyDst,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(r.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: r.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageCopyDst,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, 0, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if _, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return nil, 0, fmt.Errorf("wgpu: submit: %w", err)
	}
	// The queue is FIFO: once idle, the copy has landed in the staging buffer.
	if err := d.device.WaitIdle(); err != nil {
		return nil, 0, fmt.Errorf("wgpu: wait for GPU: %w", err)
	}

	mapping, err := d.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, 0, fmt.Errorf("wgpu: map staging buffer: %w", err)
	}
	readback := make([]byte, size)
	copy(readback, unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := d.device.UnmapBuffer(staging); err != nil {
		return nil, 0, fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}
	return readback, int(alignedBytesPerRow), nil
}

// release destroys every live texture.
func (d *Device) release() {
	for rb, r := range d.renderbuffers {
		d.device.DestroyTexture(r.tex)
		delete(d.renderbuffers, rb)
	}
	clear(d.framebuffers)
	d.boundFB = gpu.None
}
