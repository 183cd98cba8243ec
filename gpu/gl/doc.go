// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gl implements gpu.Device on OpenGL 4.1 core.
//
// The context comes from a hidden, single-buffered GLFW window. Renderbuffer
// and framebuffer handles are GL object names, and pixel transfers use GL's
// native lower-left origin.
//
// Importing the package registers the "gl" backend with the highest
// priority. Builds with the nogpu tag compile the package without it.
//
// GLFW and OpenGL calls must come from the main OS thread: call
// runtime.LockOSThread in an init function of package main.
package gl
