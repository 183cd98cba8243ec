// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package fluxcap captures a single frame of a GPU-rendered simulation
// without a window.
//
// # Overview
//
// fluxcap provisions a headless GPU context, allocates an offscreen target,
// advances a time-stepped simulation in fixed steps to a chosen point in
// simulated time, reads the frame back into memory, corrects its row order
// and writes it as an image file. Every run with the same settings produces
// the same image.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/fluxcap"
//	    "github.com/gogpu/fluxcap/sim"
//	    _ "github.com/gogpu/fluxcap/gpu/software"
//	)
//
//	c, err := fluxcap.New(fluxcap.WithOutput("output/headless.png"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := c.Run(sim.Factory(sim.DefaultSettings()))
//
// # Surfaces
//
// Surface backends register themselves on import (see package surface).
// The gl backend is preferred, then wgpu, then the software fallback.
//
// # Coordinate System
//
// GPU readback delivers rows bottom-up. PixelBuffer tracks its Origin and
// Save flips rows before encoding, so files are always top-down.
//
// # Errors
//
// Capture.Run returns a *StageError. Use errors.Is with ErrContextCreation,
// ErrAllocation, ErrSimulationConstruction, ErrSimulationStep, ErrRender,
// ErrReadback or ErrOutputWrite to find out which stage failed.
package fluxcap

// Version is the current version of the library.
const Version = "0.1.0"
