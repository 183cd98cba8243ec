// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu implements gpu.Device on the gogpu/wgpu hardware
// abstraction layer (Vulkan).
//
// Renderbuffers are RGBA8 textures usable as copy source and destination;
// framebuffers are bindings to them. WebGPU textures have a top-left origin,
// so uploads and readbacks reverse row order to keep the lower-left
// transfer contract of package gpu.
//
// Importing the package registers the "wgpu" backend. Builds with the
// nogpu tag compile the package without it.
package wgpu
