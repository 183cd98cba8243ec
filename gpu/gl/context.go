// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/fluxcap/gpu"
	"github.com/gogpu/fluxcap/surface"
)

// BackendName is the registry name of this backend.
const BackendName = "gl"

func init() {
	surface.Register(BackendName, 100, func(opts surface.Options) (surface.Context, error) {
		return NewContext(opts)
	}, nil)
}

// Context owns a hidden GLFW window whose GL context is current on the
// calling thread.
type Context struct {
	win      *glfw.Window
	dev      *Device
	renderer string
}

var _ surface.Context = (*Context)(nil)

// NewContext creates an OpenGL 4.1 core context without a visible window
// and makes it current.
func NewContext(opts surface.Options) (*Context, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("gl: glfw init: %w", err)
	}

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Label, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("gl: create window: %w", err)
	}
	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("gl: load functions: %w", err)
	}

	c := &Context{
		win:      win,
		dev:      newDevice(),
		renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
	}
	surface.Logger().Info("gl: context ready",
		"renderer", c.renderer,
		"version", gl.GoStr(gl.GetString(gl.VERSION)))
	return c, nil
}

// Device returns the GL device.
func (c *Context) Device() gpu.Device { return c.dev }

// Info describes the context.
func (c *Context) Info() surface.Info {
	return surface.Info{Backend: BackendName, Renderer: c.renderer}
}

// Close destroys the window and terminates GLFW. Close is idempotent.
func (c *Context) Close() error {
	if c.win == nil {
		return nil
	}
	glfw.DetachCurrentContext()
	c.win.Destroy()
	c.win = nil
	glfw.Terminate()
	return nil
}
