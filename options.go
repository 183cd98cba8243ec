// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package fluxcap

import (
	"time"

	"github.com/gogpu/fluxcap/surface"
)

// DefaultOutput is the path written when WithOutput is not given.
const DefaultOutput = "output/headless.png"

// Option configures a Capture during creation.
//
// Example:
//
//	res, _ := fluxcap.NewResolution(fluxcap.Size{Width: 1280, Height: 800}, 2.625)
//	c, _ := fluxcap.New(
//	    fluxcap.WithResolution(res),
//	    fluxcap.WithOutput("out/frame.png"),
//	)
type Option func(*options)

// Provisioner creates the headless GPU context for a run.
type Provisioner func(opts surface.Options) (surface.Context, error)

type options struct {
	resolution  Resolution
	step        time.Duration
	horizon     time.Duration
	output      string
	surface     string
	provisioner Provisioner
}

// defaultOptions returns 1280x800 logical at scale 2.625, 60 steps per
// second for 4.5 simulated seconds.
func defaultOptions() options {
	res, _ := NewResolution(Size{Width: 1280, Height: 800}, 2.625)
	return options{
		resolution: res,
		step:       DefaultStep,
		horizon:    DefaultHorizon,
		output:     DefaultOutput,
	}
}

// WithResolution sets the logical size and scale of the capture.
func WithResolution(r Resolution) Option {
	return func(o *options) {
		o.resolution = r
	}
}

// WithStep sets the fixed simulated time step.
func WithStep(step time.Duration) Option {
	return func(o *options) {
		o.step = step
	}
}

// WithHorizon sets the simulated time at which the frame is captured.
func WithHorizon(horizon time.Duration) Option {
	return func(o *options) {
		o.horizon = horizon
	}
}

// WithOutput sets the output file path. The extension selects the format.
func WithOutput(path string) Option {
	return func(o *options) {
		o.output = path
	}
}

// WithSurface selects a registered surface backend by name.
// An empty name picks the best available backend.
func WithSurface(name string) Option {
	return func(o *options) {
		o.surface = name
	}
}

// WithProvisioner replaces surface provisioning entirely.
// It takes precedence over WithSurface.
func WithProvisioner(p Provisioner) Option {
	return func(o *options) {
		o.provisioner = p
	}
}
