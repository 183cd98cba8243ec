// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface provisions headless GPU contexts.
//
// A [Context] is a GPU command channel that is never attached to a visible
// window. It is created at a fixed physical size, uses a core (non-legacy)
// profile, has double buffering disabled because nothing is ever presented,
// and is current on the calling thread when Provision returns.
//
// # Registry
//
// Backends register themselves from init functions with a priority:
//
//	func init() {
//	    surface.Register("gl", 100, newContext, available)
//	}
//
// Standard priorities:
//   - 100: native GL contexts
//   - 50: WebGPU HAL devices
//   - 10: CPU software devices
//
// Provision picks the best available backend and falls back in priority
// order; ProvisionByName requests one explicitly:
//
//	ctx, err := surface.ProvisionByName("software", surface.DefaultOptions(640, 400))
//	if err != nil {
//	    return err
//	}
//	defer ctx.Close()
//	dev := ctx.Device()
package surface
