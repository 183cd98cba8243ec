// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"github.com/gogpu/fluxcap/gpu"
	"github.com/gogpu/fluxcap/surface"
)

// BackendName is the registry name of this backend.
const BackendName = "software"

func init() {
	surface.Register(BackendName, 10, func(opts surface.Options) (surface.Context, error) {
		return NewContext(opts), nil
	}, nil)
}

// Context is a headless software context.
type Context struct {
	dev    *Device
	opts   surface.Options
	closed bool
}

var _ surface.Context = (*Context)(nil)

// NewContext creates a software context. It never fails.
func NewContext(opts surface.Options) *Context {
	return &Context{dev: NewDevice(), opts: opts}
}

// Device returns the software device.
func (c *Context) Device() gpu.Device { return c.dev }

// SoftwareDevice returns the concrete device, for inspecting Stats.
func (c *Context) SoftwareDevice() *Device { return c.dev }

// Info describes the context.
func (c *Context) Info() surface.Info {
	return surface.Info{Backend: BackendName, Renderer: "cpu"}
}

// Close releases the context. Close is idempotent.
func (c *Context) Close() error {
	c.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (c *Context) Closed() bool { return c.closed }
