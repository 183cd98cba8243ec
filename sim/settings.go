// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sim

import (
	"errors"
	"fmt"
)

// Mode selects what Render draws.
type Mode uint8

const (
	// ModeNormal draws the line field.
	ModeNormal Mode = iota
	// ModeDebugNoise draws the noise force field.
	ModeDebugNoise
	// ModeDebugFluid draws the velocity field.
	ModeDebugFluid
	// ModeDebugPressure draws the pressure field.
	ModeDebugPressure
	// ModeDebugDivergence draws the velocity divergence.
	ModeDebugDivergence
)

var modeNames = [...]string{"normal", "debug-noise", "debug-fluid", "debug-pressure", "debug-divergence"}

// String returns the mode name.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode parses a mode name as returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("sim: unknown mode %q", s)
}

// ClearPressure selects whether the pressure solve starts from zero or from
// the previous step's solution.
type ClearPressure uint8

const (
	// KeepPressure warm-starts the pressure solve.
	KeepPressure ClearPressure = iota
	// ClearPressureEachStep zeroes pressure before every solve.
	ClearPressureEachStep
)

// String returns "keep" or "clear".
func (c ClearPressure) String() string {
	if c == ClearPressureEachStep {
		return "clear"
	}
	return "keep"
}

// Noise is one octave of the driving noise.
type Noise struct {
	Scale           float32
	Multiplier      float32
	OffsetIncrement float32
}

// Settings configures a Flux simulation. Settings are immutable: build
// them with a Builder.
type Settings struct {
	mode                Mode
	fluidSize           int
	fluidFrameRate      float32
	fluidTimestep       float32
	viscosity           float32
	velocityDissipation float32
	clearPressure       ClearPressure
	diffusionIterations int
	pressureIterations  int
	colorScheme         ColorScheme
	lineLength          float32
	lineWidth           float32
	lineBeginOffset     float32
	lineVariance        float32
	gridSpacing         int
	viewScale           float32
	noiseChannels       []Noise
}

// Mode returns what Render draws.
func (s *Settings) Mode() Mode { return s.mode }

// FluidSize returns the fluid grid height in cells; the width follows the aspect ratio.
func (s *Settings) FluidSize() int { return s.fluidSize }

// FluidFrameRate returns the fluid updates per simulated second.
func (s *Settings) FluidFrameRate() float32 { return s.fluidFrameRate }

// FluidTimestep returns the solver time step of one fluid update.
func (s *Settings) FluidTimestep() float32 { return s.fluidTimestep }

// Viscosity returns the velocity diffusion coefficient.
func (s *Settings) Viscosity() float32 { return s.viscosity }

// VelocityDissipation returns the per-update velocity decay.
func (s *Settings) VelocityDissipation() float32 { return s.velocityDissipation }

// ClearPressure returns how pressure carries over between projections.
func (s *Settings) ClearPressure() ClearPressure { return s.clearPressure }

// DiffusionIterations returns the Jacobi iterations of the diffusion solve.
func (s *Settings) DiffusionIterations() int { return s.diffusionIterations }

// PressureIterations returns the Jacobi iterations of the pressure solve.
func (s *Settings) PressureIterations() int { return s.pressureIterations }

// ColorScheme returns the line palette.
func (s *Settings) ColorScheme() ColorScheme { return s.colorScheme }

// LineLength returns the factor turning fluid velocity into line length.
func (s *Settings) LineLength() float32 { return s.lineLength }

// LineWidth returns the line width in logical pixels.
func (s *Settings) LineWidth() float32 { return s.lineWidth }

// LineBeginOffset returns the fraction of each line skipped before drawing starts.
func (s *Settings) LineBeginOffset() float32 { return s.lineBeginOffset }

// LineVariance returns the random per-line variation.
func (s *Settings) LineVariance() float32 { return s.lineVariance }

// GridSpacing returns the distance between line origins in logical pixels.
func (s *Settings) GridSpacing() int { return s.gridSpacing }

// ViewScale returns the zoom between the line grid and the fluid field.
func (s *Settings) ViewScale() float32 { return s.viewScale }

// NoiseChannels returns a copy of the noise octaves.
func (s *Settings) NoiseChannels() []Noise {
	return append([]Noise(nil), s.noiseChannels...)
}

// DefaultSettings returns the peacock preset.
func DefaultSettings() *Settings {
	s, _ := NewBuilder().Build()
	return s
}

// Builder assembles Settings. The zero Builder is not usable; start from
// NewBuilder, which holds the defaults.
type Builder struct {
	s Settings
}

// NewBuilder returns a builder preloaded with the default settings.
func NewBuilder() *Builder {
	return &Builder{s: Settings{
		mode:                ModeNormal,
		fluidSize:           128,
		fluidFrameRate:      60,
		fluidTimestep:       1.0 / 60.0,
		viscosity:           5,
		velocityDissipation: 0,
		clearPressure:       KeepPressure,
		diffusionIterations: 3,
		pressureIterations:  19,
		colorScheme:         Peacock,
		lineLength:          550,
		lineWidth:           10,
		lineBeginOffset:     0.4,
		lineVariance:        0.45,
		gridSpacing:         15,
		viewScale:           1.6,
		noiseChannels: []Noise{
			{Scale: 2.5, Multiplier: 1.0, OffsetIncrement: 0.0015},
			{Scale: 15.0, Multiplier: 0.7, OffsetIncrement: 0.0015 * 6},
			{Scale: 30.0, Multiplier: 0.5, OffsetIncrement: 0.0015 * 12},
		},
	}}
}

// BuilderFrom returns a builder preloaded with s.
func BuilderFrom(s *Settings) *Builder {
	b := &Builder{s: *s}
	b.s.noiseChannels = s.NoiseChannels()
	return b
}

// Mode sets the value returned by Settings.Mode.
func (b *Builder) Mode(m Mode) *Builder { b.s.mode = m; return b }

// FluidSize sets the value returned by Settings.FluidSize.
func (b *Builder) FluidSize(n int) *Builder { b.s.fluidSize = n; return b }

// FluidFrameRate sets the value returned by Settings.FluidFrameRate.
func (b *Builder) FluidFrameRate(v float32) *Builder { b.s.fluidFrameRate = v; return b }

// FluidTimestep sets the value returned by Settings.FluidTimestep.
func (b *Builder) FluidTimestep(v float32) *Builder { b.s.fluidTimestep = v; return b }

// Viscosity sets the value returned by Settings.Viscosity.
func (b *Builder) Viscosity(v float32) *Builder { b.s.viscosity = v; return b }

// VelocityDissipation sets the value returned by Settings.VelocityDissipation.
func (b *Builder) VelocityDissipation(v float32) *Builder {
	b.s.velocityDissipation = v
	return b
}

// ClearPressure sets the value returned by Settings.ClearPressure.
func (b *Builder) ClearPressure(c ClearPressure) *Builder { b.s.clearPressure = c; return b }

// DiffusionIterations sets the value returned by Settings.DiffusionIterations.
func (b *Builder) DiffusionIterations(n int) *Builder { b.s.diffusionIterations = n; return b }

// PressureIterations sets the value returned by Settings.PressureIterations.
func (b *Builder) PressureIterations(n int) *Builder { b.s.pressureIterations = n; return b }

// ColorScheme sets the value returned by Settings.ColorScheme.
func (b *Builder) ColorScheme(c ColorScheme) *Builder { b.s.colorScheme = c; return b }

// LineLength sets the value returned by Settings.LineLength.
func (b *Builder) LineLength(v float32) *Builder { b.s.lineLength = v; return b }

// LineWidth sets the value returned by Settings.LineWidth.
func (b *Builder) LineWidth(v float32) *Builder { b.s.lineWidth = v; return b }

// LineBeginOffset sets the value returned by Settings.LineBeginOffset.
func (b *Builder) LineBeginOffset(v float32) *Builder { b.s.lineBeginOffset = v; return b }

// LineVariance sets the value returned by Settings.LineVariance.
func (b *Builder) LineVariance(v float32) *Builder { b.s.lineVariance = v; return b }

// GridSpacing sets the value returned by Settings.GridSpacing.
func (b *Builder) GridSpacing(n int) *Builder { b.s.gridSpacing = n; return b }

// ViewScale sets the value returned by Settings.ViewScale.
func (b *Builder) ViewScale(v float32) *Builder { b.s.viewScale = v; return b }

// NoiseChannels replaces the noise octaves. The slice is copied.
func (b *Builder) NoiseChannels(ch ...Noise) *Builder {
	b.s.noiseChannels = append([]Noise(nil), ch...)
	return b
}

// ErrInvalidSettings is returned by Build for out-of-range values.
var ErrInvalidSettings = errors.New("sim: invalid settings")

// Build validates and returns an immutable copy of the settings.
func (b *Builder) Build() (*Settings, error) {
	s := b.s
	s.noiseChannels = append([]Noise(nil), b.s.noiseChannels...)

	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(int(s.mode) < len(modeNames), "mode %v", s.mode)
	check(s.fluidSize >= 8, "fluid size %d < 8", s.fluidSize)
	check(s.fluidFrameRate > 0, "fluid frame rate %v", s.fluidFrameRate)
	check(s.fluidTimestep > 0, "fluid timestep %v", s.fluidTimestep)
	check(s.viscosity >= 0, "viscosity %v", s.viscosity)
	check(s.velocityDissipation >= 0, "velocity dissipation %v", s.velocityDissipation)
	check(s.diffusionIterations >= 0, "diffusion iterations %d", s.diffusionIterations)
	check(s.pressureIterations >= 0, "pressure iterations %d", s.pressureIterations)
	check(s.colorScheme.valid(), "color scheme %v", s.colorScheme)
	check(s.lineLength > 0, "line length %v", s.lineLength)
	check(s.lineWidth > 0, "line width %v", s.lineWidth)
	check(s.lineBeginOffset >= 0 && s.lineBeginOffset < 1, "line begin offset %v", s.lineBeginOffset)
	check(s.lineVariance >= 0 && s.lineVariance <= 1, "line variance %v", s.lineVariance)
	check(s.gridSpacing > 0, "grid spacing %d", s.gridSpacing)
	check(s.viewScale > 0, "view scale %v", s.viewScale)
	for i, n := range s.noiseChannels {
		check(n.Scale > 0, "noise channel %d scale %v", i, n.Scale)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return &s, nil
}
