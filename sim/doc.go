// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package sim implements Flux, a noise-driven fluid drawn as a field of
// lines, as a fluxcap.Simulation.
//
// A stable-fluids solver runs at a fixed frame rate on a small grid. Layered
// gradient noise pushes the fluid; a grid of lines eases toward the local
// velocity and is stroked with gogpu/gg in one of four color schemes. The
// finished frame is uploaded to the bound framebuffer.
//
// All randomness comes from fixed seeds: the same Settings and the same
// sequence of Step calls always produce the same frame.
package sim
