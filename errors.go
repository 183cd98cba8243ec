// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package fluxcap

import (
	"errors"
	"fmt"
	"time"
)

// Capture errors. Every failure returned by Capture.Run matches exactly one
// of the stage sentinels via errors.Is. None of them is retried.
var (
	// ErrContextCreation is returned when no headless GPU context could be
	// created or made current.
	ErrContextCreation = errors.New("fluxcap: context creation failed")

	// ErrAllocation is returned when the driver rejects the renderbuffer,
	// the framebuffer, or the attachment between them.
	ErrAllocation = errors.New("fluxcap: offscreen target allocation failed")

	// ErrSimulationConstruction is returned when the simulation factory fails.
	ErrSimulationConstruction = errors.New("fluxcap: simulation construction failed")

	// ErrSimulationStep is returned when a simulation step, or the GPU
	// synchronization that follows it, fails.
	ErrSimulationStep = errors.New("fluxcap: simulation step failed")

	// ErrRender is returned when the simulation's render pass fails.
	ErrRender = errors.New("fluxcap: render failed")

	// ErrReadback is returned when the pixel read is rejected or short.
	ErrReadback = errors.New("fluxcap: readback failed")

	// ErrOutputWrite is returned when the output directory or file cannot
	// be written.
	ErrOutputWrite = errors.New("fluxcap: output write failed")
)

// Usage errors.
var (
	// ErrTargetReleased is returned when a destroyed Target is used again.
	ErrTargetReleased = errors.New("fluxcap: target already released")

	// ErrInvalidResolution is returned for non-positive sizes or scale.
	ErrInvalidResolution = errors.New("fluxcap: invalid resolution")

	// ErrInvalidClock is returned for a non-positive step or negative horizon.
	ErrInvalidClock = errors.New("fluxcap: invalid clock")

	// ErrAlreadyRun is returned by a second Run on the same Capture.
	ErrAlreadyRun = errors.New("fluxcap: capture already run")
)

// Stage names a pipeline stage.
type Stage string

// Pipeline stages in execution order.
const (
	StageProvision  Stage = "provision"
	StageSimulation Stage = "simulation"
	StageAllocate   Stage = "allocate"
	StageDrive      Stage = "drive"
	StageCapture    Stage = "capture"
	StageOutput     Stage = "output"
)

// StageError reports the stage at which a capture run aborted.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("fluxcap: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StepError reports a failed simulation step.
type StepError struct {
	// Step is the zero-based index of the failed step.
	Step int

	// Elapsed is the accumulated simulated time passed to the step.
	Elapsed time.Duration

	Err error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d at %v: %v", e.Step, e.Elapsed, e.Err)
}

// Unwrap returns both the sentinel and the cause so errors.Is matches
// ErrSimulationStep as well as the collaborator's own error.
func (e *StepError) Unwrap() []error { return []error{ErrSimulationStep, e.Err} }
