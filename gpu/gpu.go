// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu defines the narrow command interface that the capture pipeline
// uses to talk to a GPU.
//
// Every raw GPU call made by fluxcap goes through a [Device]. Backends
// (gpu/gl, gpu/wgpu, gpu/software) translate these calls into their native
// API, so resource-lifetime discipline only has to be checked in one place.
//
// The interface mirrors the classic renderbuffer/framebuffer model:
//
//	rb, _ := dev.CreateRenderbuffer(gpu.FormatSRGB8Alpha8, w, h)
//	fb, _ := dev.CreateFramebuffer()
//	_ = dev.FramebufferRenderbuffer(fb, rb)
//	dev.BindFramebuffer(fb)
//	n, _ := dev.ReadPixels(0, 0, w, h, gpu.LayoutRGB, buf)
//
// # Coordinate System
//
// Pixel transfers (ReadPixels, WritePixels) use a lower-left origin on every
// backend: row 0 of a transfer buffer is the bottom row of the surface. Image
// files use the opposite convention, which is why captured frames need a row
// flip before encoding.
//
// # Threading
//
// A Device is bound to the goroutine (and OS thread) that provisioned it and
// is not safe for concurrent use.
package gpu

// Device issues GPU commands against the current context.
//
// Bind calls never fail; they mirror GL state changes. Handle 0 of either
// type refers to "nothing bound" (the default surface).
type Device interface {
	// CreateRenderbuffer allocates pixel storage of the given format and size.
	CreateRenderbuffer(format Format, width, height int) (Renderbuffer, error)

	// CreateFramebuffer allocates a render target with no attachments.
	CreateFramebuffer() (Framebuffer, error)

	// FramebufferRenderbuffer attaches rb as color attachment 0 of fb.
	// It returns an error if the driver reports the framebuffer incomplete.
	FramebufferRenderbuffer(fb Framebuffer, rb Renderbuffer) error

	// BindRenderbuffer makes rb the current renderbuffer. 0 unbinds.
	BindRenderbuffer(rb Renderbuffer)

	// BindFramebuffer makes fb the current draw and read target. 0 unbinds.
	BindFramebuffer(fb Framebuffer)

	// DeleteRenderbuffer releases rb. Deleting an unknown handle is ignored.
	DeleteRenderbuffer(rb Renderbuffer)

	// DeleteFramebuffer releases fb. Deleting an unknown handle is ignored.
	DeleteFramebuffer(fb Framebuffer)

	// Finish blocks until every previously issued command has completed.
	Finish() error

	// ReadPixels copies the region (x, y, width, height) of the bound
	// framebuffer into dst and returns the number of bytes written.
	// The call blocks until rendering into the framebuffer has completed.
	ReadPixels(x, y, width, height int, layout Layout, dst []byte) (int, error)

	// WritePixels replaces the region (x, y, width, height) of the bound
	// framebuffer with src.
	WritePixels(x, y, width, height int, layout Layout, src []byte) error
}
