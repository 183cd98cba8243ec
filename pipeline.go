// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package fluxcap

import (
	"fmt"
	"io"
	"time"

	"github.com/gogpu/fluxcap/gpu"
	"github.com/gogpu/fluxcap/surface"
)

// Simulation is a time-stepped visual simulation that renders into the
// currently bound framebuffer.
type Simulation interface {
	Stepper
	Renderer
}

// SimulationFactory constructs a simulation on dev. The simulation works in
// res.Logical() coordinates and renders res.Physical() pixels.
type SimulationFactory func(dev gpu.Device, res Resolution) (Simulation, error)

// Result describes a completed capture.
type Result struct {
	Steps       int
	LastElapsed time.Duration
	Path        string
	Width       int
	Height      int
	Backend     string
}

// Capture runs one headless capture: provision a surface, build the
// simulation, drive it to the horizon, read back one frame and write it.
//
// A Capture is single-use and must run on the goroutine whose OS thread
// owns the GPU context (call runtime.LockOSThread from main for the gl
// backend).
type Capture struct {
	opts options
	used bool
}

// New validates the options and returns a Capture.
func New(opts ...Option) (*Capture, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !o.resolution.Physical().Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResolution, o.resolution)
	}
	if _, err := NewClock(o.step, o.horizon); err != nil {
		return nil, err
	}
	if o.output == "" {
		return nil, fmt.Errorf("%w: empty output path", ErrOutputWrite)
	}
	return &Capture{opts: o}, nil
}

// Resolution returns the configured resolution.
func (c *Capture) Resolution() Resolution { return c.opts.resolution }

// Output returns the configured output path.
func (c *Capture) Output() string { return c.opts.output }

// Run executes the capture. Run may be called once; later calls return
// ErrAlreadyRun. Every other error is a *StageError whose cause matches
// exactly one of the stage sentinels. Resources are released in
// reverse order of acquisition on every path; release failures are logged
// and never replace the run's result.
func (c *Capture) Run(factory SimulationFactory) (*Result, error) {
	if c.used {
		return nil, ErrAlreadyRun
	}
	c.used = true

	log := Logger()
	res := c.opts.resolution
	phys := res.Physical()
	log.Info("fluxcap: starting capture", "logical", res.Logical(), "scale", res.Scale(), "physical", phys)

	ctx, err := c.provision(phys)
	if err != nil {
		return nil, &StageError{Stage: StageProvision, Err: fmt.Errorf("%w: %w", ErrContextCreation, err)}
	}
	defer func() {
		if cerr := ctx.Close(); cerr != nil {
			log.Warn("fluxcap: context close failed", "err", cerr)
		}
	}()
	info := ctx.Info()
	log.Info("fluxcap: surface ready", "backend", info.Backend, "renderer", info.Renderer)
	dev := ctx.Device()

	sim, err := factory(dev, res)
	if err != nil {
		return nil, &StageError{Stage: StageSimulation, Err: fmt.Errorf("%w: %w", ErrSimulationConstruction, err)}
	}
	if closer, ok := sim.(io.Closer); ok {
		defer func() {
			if cerr := closer.Close(); cerr != nil {
				log.Warn("fluxcap: simulation close failed", "err", cerr)
			}
		}()
	}

	target, err := NewTarget(dev, phys.Width, phys.Height)
	if err != nil {
		return nil, &StageError{Stage: StageAllocate, Err: err}
	}
	defer func() {
		if target.Released() {
			return
		}
		if derr := target.Destroy(); derr != nil {
			log.Warn("fluxcap: target cleanup failed", "err", derr)
		}
	}()

	clock, err := NewClock(c.opts.step, c.opts.horizon)
	if err != nil {
		return nil, &StageError{Stage: StageDrive, Err: err}
	}
	steps, err := Drive(sim, dev, clock)
	if err != nil {
		return nil, &StageError{Stage: StageDrive, Err: err}
	}
	log.Debug("fluxcap: horizon reached", "steps", steps, "now", clock.Now())

	frame, err := CaptureFrame(target, sim)
	if err != nil {
		return nil, &StageError{Stage: StageCapture, Err: err}
	}

	if err := frame.Save(c.opts.output); err != nil {
		return nil, &StageError{Stage: StageOutput, Err: err}
	}

	if err := target.Destroy(); err != nil {
		log.Warn("fluxcap: target cleanup failed", "err", err)
	}
	log.Info("fluxcap: cleanup complete")

	var last time.Duration
	if steps > 0 {
		last = time.Duration(steps-1) * clock.Step()
	}
	return &Result{
		Steps:       steps,
		LastElapsed: last,
		Path:        c.opts.output,
		Width:       phys.Width,
		Height:      phys.Height,
		Backend:     info.Backend,
	}, nil
}

func (c *Capture) provision(phys Size) (surface.Context, error) {
	opts := surface.DefaultOptions(phys.Width, phys.Height)
	switch {
	case c.opts.provisioner != nil:
		return c.opts.provisioner(opts)
	case c.opts.surface != "":
		return surface.ProvisionByName(c.opts.surface, opts)
	default:
		return surface.Provision(opts)
	}
}
