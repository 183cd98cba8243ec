// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/fluxcap/gpu"
	"github.com/gogpu/fluxcap/surface"
)

// BackendName is the registry name of this backend.
const BackendName = "wgpu"

func init() {
	surface.Register(BackendName, 50, func(opts surface.Options) (surface.Context, error) {
		return NewContext(opts)
	}, func() bool {
		_, ok := hal.GetBackend(gputypes.BackendVulkan)
		return ok
	})
}

// Context owns a Vulkan instance and device.
type Context struct {
	instance hal.Instance
	device   hal.Device
	dev      *Device
	adapter  string
}

var _ surface.Context = (*Context)(nil)

// NewContext opens the first discrete or integrated GPU, falling back to
// whatever adapter is exposed first. The size in opts is not used: targets
// are allocated through the device.
func NewContext(opts surface.Options) (*Context, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, errors.New("wgpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("wgpu: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	surface.Logger().Info("wgpu: device ready", "adapter", selected.Info.Name, "label", opts.Label)
	return &Context{
		instance: instance,
		device:   openDev.Device,
		dev:      newDevice(openDev.Device, openDev.Queue),
		adapter:  selected.Info.Name,
	}, nil
}

// Device returns the wgpu device.
func (c *Context) Device() gpu.Device { return c.dev }

// Info describes the context.
func (c *Context) Info() surface.Info {
	return surface.Info{Backend: BackendName, Renderer: c.adapter}
}

// Close releases remaining textures, the device and the instance.
// Close is idempotent.
func (c *Context) Close() error {
	if c.device == nil {
		return nil
	}
	c.dev.release()
	c.device.Destroy()
	c.instance.Destroy()
	c.device = nil
	c.instance = nil
	return nil
}
