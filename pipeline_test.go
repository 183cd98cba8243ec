// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package fluxcap

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/fluxcap/gpu"
	"github.com/gogpu/fluxcap/internal/imageio"
	"github.com/gogpu/fluxcap/surface"
)

// fakeContext is a surface.Context around a recordingDevice.
type fakeContext struct {
	dev    *recordingDevice
	closed int
}

func (c *fakeContext) Device() gpu.Device { return c.dev }
func (c *fakeContext) Info() surface.Info { return surface.Info{Backend: "fake", Renderer: "test"} }
func (c *fakeContext) Close() error       { c.closed++; return nil }

type harness struct {
	ctx    *fakeContext
	sim    *fakeSim
	output string
	opts   surface.Options
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		ctx:    &fakeContext{dev: newRecordingDevice()},
		output: filepath.Join(t.TempDir(), "output", "headless.png"),
	}
}

func (h *harness) capture(t *testing.T, opts ...Option) *Capture {
	t.Helper()
	res, err := NewResolution(Size{Width: 4, Height: 3}, 2)
	require.NoError(t, err)
	all := append([]Option{
		WithResolution(res),
		WithOutput(h.output),
		WithProvisioner(func(o surface.Options) (surface.Context, error) {
			h.opts = o
			return h.ctx, nil
		}),
	}, opts...)
	c, err := New(all...)
	require.NoError(t, err)
	return c
}

func (h *harness) factory(dev gpu.Device, res Resolution) (Simulation, error) {
	p := res.Physical()
	h.sim = newFakeSim(dev, p.Width, p.Height)
	return h.sim, nil
}

func TestRunEndToEnd(t *testing.T) {
	h := newHarness(t)
	result, err := h.capture(t).Run(h.factory)
	require.NoError(t, err)

	assert.Equal(t, 270, result.Steps)
	assert.Equal(t, 269*DefaultStep, result.LastElapsed)
	assert.Equal(t, 8, result.Width)
	assert.Equal(t, 6, result.Height)
	assert.Equal(t, "fake", result.Backend)
	assert.Equal(t, h.output, result.Path)

	assert.Equal(t, 8, h.opts.Width)
	assert.Equal(t, 6, h.opts.Height)
	assert.Equal(t, surface.ProfileCore, h.opts.Profile)
	assert.False(t, h.opts.DoubleBuffer)

	img, err := imageio.Load(h.output)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())

	// The simulation painted the bottom half red, so the file's top row is blue.
	r, _, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r>>8)
	assert.Equal(t, uint32(255), b>>8)
	r, _, b, _ = img.At(0, 5).RGBA()
	assert.Equal(t, uint32(255), r>>8)
	assert.Equal(t, uint32(0), b>>8)

	assert.Equal(t, 1, h.ctx.dev.count("ReadPixels"))
	assert.Equal(t, 1, h.ctx.dev.count("DeleteFramebuffer"))
	assert.Equal(t, 1, h.ctx.dev.count("DeleteRenderbuffer"))
	assert.True(t, h.sim.closed)
	assert.Equal(t, 1, h.ctx.closed)
}

func TestRunIsDeterministic(t *testing.T) {
	var outputs [][]byte
	for range 2 {
		h := newHarness(t)
		_, err := h.capture(t).Run(h.factory)
		require.NoError(t, err)
		data, err := os.ReadFile(h.output)
		require.NoError(t, err)
		outputs = append(outputs, data)
	}
	assert.Equal(t, outputs[0], outputs[1])
}

func TestRunStepFailureWritesNothing(t *testing.T) {
	h := newHarness(t)
	cause := errors.New("diverged")
	factory := func(dev gpu.Device, res Resolution) (Simulation, error) {
		s, _ := h.factory(dev, res)
		h.sim.failAt = 50
		h.sim.stepErr = cause
		return s, nil
	}

	_, err := h.capture(t).Run(factory)
	assert.ErrorIs(t, err, ErrSimulationStep)
	assert.ErrorIs(t, err, cause)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageDrive, stageErr.Stage)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 50, stepErr.Step)

	assert.Zero(t, h.sim.renders)
	assert.Zero(t, h.ctx.dev.count("ReadPixels"))
	_, statErr := os.Stat(h.output)
	assert.True(t, os.IsNotExist(statErr))

	// Teardown still released everything.
	assert.Equal(t, 1, h.ctx.dev.count("DeleteFramebuffer"))
	assert.Equal(t, 1, h.ctx.dev.count("DeleteRenderbuffer"))
	assert.True(t, h.sim.closed)
	assert.Equal(t, 1, h.ctx.closed)
}

func TestRunStageErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness) (SimulationFactory, []Option)
		stage Stage
		want  error
	}{
		{
			name: "provision",
			setup: func(h *harness) (SimulationFactory, []Option) {
				return h.factory, []Option{WithProvisioner(func(surface.Options) (surface.Context, error) {
					return nil, errors.New("no display")
				})}
			},
			stage: StageProvision,
			want:  ErrContextCreation,
		},
		{
			name: "simulation",
			setup: func(h *harness) (SimulationFactory, []Option) {
				return func(gpu.Device, Resolution) (Simulation, error) {
					return nil, errors.New("bad settings")
				}, nil
			},
			stage: StageSimulation,
			want:  ErrSimulationConstruction,
		},
		{
			name: "allocate",
			setup: func(h *harness) (SimulationFactory, []Option) {
				h.ctx.dev.fail["FramebufferRenderbuffer"] = errors.New("incomplete")
				return h.factory, nil
			},
			stage: StageAllocate,
			want:  ErrAllocation,
		},
		{
			name: "render",
			setup: func(h *harness) (SimulationFactory, []Option) {
				return func(dev gpu.Device, res Resolution) (Simulation, error) {
					s, _ := h.factory(dev, res)
					h.sim.rendErr = errors.New("draw failed")
					return s, nil
				}, nil
			},
			stage: StageCapture,
			want:  ErrRender,
		},
		{
			name: "readback",
			setup: func(h *harness) (SimulationFactory, []Option) {
				h.ctx.dev.short = true
				return h.factory, nil
			},
			stage: StageCapture,
			want:  ErrReadback,
		},
		{
			name: "output",
			setup: func(h *harness) (SimulationFactory, []Option) {
				return h.factory, []Option{WithOutput(filepath.Join(filepath.Dir(h.output), "frame.webp"))}
			},
			stage: StageOutput,
			want:  ErrOutputWrite,
		},
	}

	sentinels := []error{
		ErrContextCreation, ErrAllocation, ErrSimulationConstruction,
		ErrSimulationStep, ErrRender, ErrReadback, ErrOutputWrite,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			factory, opts := tt.setup(h)
			_, err := h.capture(t, opts...).Run(factory)

			var stageErr *StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tt.stage, stageErr.Stage)

			matched := 0
			for _, s := range sentinels {
				if errors.Is(err, s) {
					matched++
				}
			}
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, matched, "exactly one stage sentinel must match")

			// Whatever was allocated has been released.
			assert.Equal(t, 0, h.ctx.dev.Stats().Renderbuffers)
			assert.Equal(t, 0, h.ctx.dev.Stats().Framebuffers)
		})
	}
}

func TestRunOnce(t *testing.T) {
	h := newHarness(t)
	c := h.capture(t, WithHorizon(0))
	_, err := c.Run(h.factory)
	require.NoError(t, err)
	_, err = c.Run(h.factory)
	assert.ErrorIs(t, err, ErrAlreadyRun)
	var stageErr *StageError
	assert.False(t, errors.As(err, &stageErr))
}

func TestRunZeroHorizon(t *testing.T) {
	h := newHarness(t)
	result, err := h.capture(t, WithHorizon(0)).Run(h.factory)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Steps)
	assert.Equal(t, time.Duration(0), result.LastElapsed)
	assert.Empty(t, h.sim.steps)
}

func TestNewValidation(t *testing.T) {
	_, err := New(WithStep(0))
	assert.ErrorIs(t, err, ErrInvalidClock)
	_, err = New(WithHorizon(-time.Second))
	assert.ErrorIs(t, err, ErrInvalidClock)
	_, err = New(WithResolution(Resolution{}))
	assert.ErrorIs(t, err, ErrInvalidResolution)
	_, err = New(WithOutput(""))
	assert.ErrorIs(t, err, ErrOutputWrite)
}

func TestNewDefaults(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, c.Output())
	assert.Equal(t, Size{Width: 3360, Height: 2100}, c.Resolution().Physical())
}

func TestRunSoftwareSurface(t *testing.T) {
	output := filepath.Join(t.TempDir(), "frame.bmp")
	res, err := NewResolution(Size{Width: 5, Height: 4}, 1)
	require.NoError(t, err)
	c, err := New(
		WithResolution(res),
		WithOutput(output),
		WithSurface("software"),
		WithHorizon(10*DefaultStep),
	)
	require.NoError(t, err)

	result, err := c.Run(func(dev gpu.Device, res Resolution) (Simulation, error) {
		p := res.Physical()
		return newFakeSim(dev, p.Width, p.Height), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "software", result.Backend)
	assert.Equal(t, 10, result.Steps)

	img, err := imageio.Load(output)
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
}
