// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package fluxcap

import (
	"fmt"
	"time"

	"github.com/gogpu/fluxcap/gpu"
)

// Default timing: 60 steps per simulated second, captured at 4.5 s.
const (
	DefaultStep    = 16666667 * time.Nanosecond
	DefaultHorizon = 4500 * time.Millisecond
)

// Clock is a simulated clock that only moves forward, in fixed steps.
// It never consults wall time.
type Clock struct {
	now     time.Duration
	step    time.Duration
	horizon time.Duration
}

// NewClock returns a clock at zero. step must be positive and horizon
// non-negative.
func NewClock(step, horizon time.Duration) (*Clock, error) {
	if step <= 0 || horizon < 0 {
		return nil, fmt.Errorf("%w: step %v horizon %v", ErrInvalidClock, step, horizon)
	}
	return &Clock{step: step, horizon: horizon}, nil
}

// Now returns the accumulated simulated time.
func (c *Clock) Now() time.Duration { return c.now }

// Millis returns the accumulated simulated time in milliseconds.
func (c *Clock) Millis() float64 { return c.now.Seconds() * 1000 }

// Step returns the fixed increment.
func (c *Clock) Step() time.Duration { return c.step }

// Horizon returns the target simulated time.
func (c *Clock) Horizon() time.Duration { return c.horizon }

// Done reports whether the clock has reached the horizon.
func (c *Clock) Done() bool { return c.now >= c.horizon }

// Advance adds one step.
func (c *Clock) Advance() { c.now += c.step }

// Steps returns how many steps a full drive executes: ceil(horizon/step).
func (c *Clock) Steps() int {
	return int((c.horizon + c.step - 1) / c.step)
}

// Stepper advances a simulation to an accumulated time in milliseconds.
type Stepper interface {
	Step(elapsedMs float64) error
}

const progressEvery = 60

// Drive steps sim until clock reaches its horizon, waiting for the GPU to
// finish after every step so each step sees the previous one's results.
// It returns the number of steps executed.
//
// A failed step, or a failed Finish after it, stops the drive with a
// *StepError; the clock is not advanced past the failing step.
func Drive(sim Stepper, dev gpu.Device, clock *Clock) (int, error) {
	log := Logger()
	n := 0
	for !clock.Done() {
		elapsed := clock.Now()
		if err := sim.Step(clock.Millis()); err != nil {
			return n, &StepError{Step: n, Elapsed: elapsed, Err: err}
		}
		if err := dev.Finish(); err != nil {
			return n, &StepError{Step: n, Elapsed: elapsed, Err: fmt.Errorf("finish: %w", err)}
		}
		clock.Advance()
		n++
		if n%progressEvery == 0 {
			log.Debug("fluxcap: stepping", "steps", n, "elapsed", elapsed)
		}
	}
	return n, nil
}
