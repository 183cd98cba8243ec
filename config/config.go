// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads capture settings from a TOML or YAML file.
//
// Values not present in the file keep their defaults, so a file only needs
// to name what it changes:
//
//	[capture]
//	output = "out/wall.png"
//	horizon = "10s"
//
//	[simulation]
//	color_scheme = "pollen"
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/fluxcap"
	"github.com/gogpu/fluxcap/sim"
)

// ErrUnknownFormat is returned for files that are neither TOML nor YAML.
var ErrUnknownFormat = errors.New("config: unknown file format")

// Duration is a time.Duration written as a string such as "4.5s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a time.ParseDuration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("config: duration: %w", err)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a scalar node as a duration string.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("config: duration: line %d: expected a string", n.Line)
	}
	return d.UnmarshalText([]byte(n.Value))
}

// Capture holds the pipeline settings.
type Capture struct {
	// Width and Height are the logical size, unless Physical is set.
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`

	// Scale is the logical-to-physical factor.
	Scale float64 `toml:"scale" yaml:"scale"`

	// Physical makes Width and Height pixel sizes; the logical size is
	// derived by dividing by Scale.
	Physical bool `toml:"physical" yaml:"physical"`

	Step    Duration `toml:"step" yaml:"step"`
	Horizon Duration `toml:"horizon" yaml:"horizon"`
	Output  string   `toml:"output" yaml:"output"`
	Surface string   `toml:"surface" yaml:"surface"`
}

// Noise is one noise octave.
type Noise struct {
	Scale           float32 `toml:"scale" yaml:"scale"`
	Multiplier      float32 `toml:"multiplier" yaml:"multiplier"`
	OffsetIncrement float32 `toml:"offset_increment" yaml:"offset_increment"`
}

// Simulation mirrors sim.Settings with names suitable for files.
type Simulation struct {
	Mode                string  `toml:"mode" yaml:"mode"`
	FluidSize           int     `toml:"fluid_size" yaml:"fluid_size"`
	FluidFrameRate      float32 `toml:"fluid_frame_rate" yaml:"fluid_frame_rate"`
	FluidTimestep       float32 `toml:"fluid_timestep" yaml:"fluid_timestep"`
	Viscosity           float32 `toml:"viscosity" yaml:"viscosity"`
	VelocityDissipation float32 `toml:"velocity_dissipation" yaml:"velocity_dissipation"`
	ClearPressure       bool    `toml:"clear_pressure" yaml:"clear_pressure"`
	DiffusionIterations int     `toml:"diffusion_iterations" yaml:"diffusion_iterations"`
	PressureIterations  int     `toml:"pressure_iterations" yaml:"pressure_iterations"`
	ColorScheme         string  `toml:"color_scheme" yaml:"color_scheme"`
	LineLength          float32 `toml:"line_length" yaml:"line_length"`
	LineWidth           float32 `toml:"line_width" yaml:"line_width"`
	LineBeginOffset     float32 `toml:"line_begin_offset" yaml:"line_begin_offset"`
	LineVariance        float32 `toml:"line_variance" yaml:"line_variance"`
	GridSpacing         int     `toml:"grid_spacing" yaml:"grid_spacing"`
	ViewScale           float32 `toml:"view_scale" yaml:"view_scale"`
	NoiseChannels       []Noise `toml:"noise_channels" yaml:"noise_channels"`
}

// File is a complete run configuration.
type File struct {
	Capture    Capture    `toml:"capture" yaml:"capture"`
	Simulation Simulation `toml:"simulation" yaml:"simulation"`
}

// Default returns the built-in configuration: 1280x800 at scale 2.625,
// captured at 4.5 s into output/headless.png with the peacock preset.
func Default() *File {
	s := sim.DefaultSettings()
	f := &File{
		Capture: Capture{
			Width:   1280,
			Height:  800,
			Scale:   2.625,
			Step:    Duration{fluxcap.DefaultStep},
			Horizon: Duration{fluxcap.DefaultHorizon},
			Output:  fluxcap.DefaultOutput,
		},
		Simulation: Simulation{
			Mode:                s.Mode().String(),
			FluidSize:           s.FluidSize(),
			FluidFrameRate:      s.FluidFrameRate(),
			FluidTimestep:       s.FluidTimestep(),
			Viscosity:           s.Viscosity(),
			VelocityDissipation: s.VelocityDissipation(),
			ClearPressure:       s.ClearPressure() == sim.ClearPressureEachStep,
			DiffusionIterations: s.DiffusionIterations(),
			PressureIterations:  s.PressureIterations(),
			ColorScheme:         s.ColorScheme().String(),
			LineLength:          s.LineLength(),
			LineWidth:           s.LineWidth(),
			LineBeginOffset:     s.LineBeginOffset(),
			LineVariance:        s.LineVariance(),
			GridSpacing:         s.GridSpacing(),
			ViewScale:           s.ViewScale(),
		},
	}
	for _, n := range s.NoiseChannels() {
		f.Simulation.NoiseChannels = append(f.Simulation.NoiseChannels, Noise(n))
	}
	return f
}

// Load reads path on top of Default. The format is chosen by extension:
// .toml, or .yaml/.yml. Unknown keys are rejected.
func Load(path string) (*File, error) {
	r, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer func() { _ = r.Close() }()

	f, err := Decode(r, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return f, nil
}

// Decode reads a configuration in the format named by ext (".toml",
// ".yaml" or ".yml") on top of Default.
func Decode(r io.Reader, ext string) (*File, error) {
	f := Default()

	// Decoders may append to a preset slice; start empty and restore the
	// defaults if the file names no channels.
	channels := f.Simulation.NoiseChannels
	f.Simulation.NoiseChannels = nil
	defer func() {
		if f.Simulation.NoiseChannels == nil {
			f.Simulation.NoiseChannels = channels
		}
	}()

	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(f); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	return f, nil
}

// Resolution returns the capture resolution.
func (f *File) Resolution() (fluxcap.Resolution, error) {
	size := fluxcap.Size{Width: f.Capture.Width, Height: f.Capture.Height}
	if f.Capture.Physical {
		return fluxcap.ResolutionFromPhysical(size, f.Capture.Scale)
	}
	return fluxcap.NewResolution(size, f.Capture.Scale)
}

// Settings builds the simulation settings.
func (f *File) Settings() (*sim.Settings, error) {
	s := f.Simulation
	mode, err := sim.ParseMode(s.Mode)
	if err != nil {
		return nil, err
	}
	scheme, err := sim.ParseColorScheme(s.ColorScheme)
	if err != nil {
		return nil, err
	}
	clearPressure := sim.KeepPressure
	if s.ClearPressure {
		clearPressure = sim.ClearPressureEachStep
	}
	channels := make([]sim.Noise, len(s.NoiseChannels))
	for i, n := range s.NoiseChannels {
		channels[i] = sim.Noise(n)
	}

	return sim.NewBuilder().
		Mode(mode).
		FluidSize(s.FluidSize).
		FluidFrameRate(s.FluidFrameRate).
		FluidTimestep(s.FluidTimestep).
		Viscosity(s.Viscosity).
		VelocityDissipation(s.VelocityDissipation).
		ClearPressure(clearPressure).
		DiffusionIterations(s.DiffusionIterations).
		PressureIterations(s.PressureIterations).
		ColorScheme(scheme).
		LineLength(s.LineLength).
		LineWidth(s.LineWidth).
		LineBeginOffset(s.LineBeginOffset).
		LineVariance(s.LineVariance).
		GridSpacing(s.GridSpacing).
		ViewScale(s.ViewScale).
		NoiseChannels(channels...).
		Build()
}

// Options returns the capture options described by the file.
func (f *File) Options() ([]fluxcap.Option, error) {
	res, err := f.Resolution()
	if err != nil {
		return nil, err
	}
	return []fluxcap.Option{
		fluxcap.WithResolution(res),
		fluxcap.WithStep(f.Capture.Step.Duration),
		fluxcap.WithHorizon(f.Capture.Horizon.Duration),
		fluxcap.WithOutput(f.Capture.Output),
		fluxcap.WithSurface(f.Capture.Surface),
	}, nil
}
