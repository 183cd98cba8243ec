// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package fluxcap

import (
	"fmt"
	"math"
)

// Size is a width and height pair.
type Size struct {
	Width  int
	Height int
}

// String returns "WxH".
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Resolution pairs the logical size that drives the simulation's coordinate
// space with the physical size that drives GPU allocation and the output
// image. Physical = round(Logical * Scale) per axis.
//
// The zero value is invalid; use NewResolution or ResolutionFromPhysical.
type Resolution struct {
	logical  Size
	physical Size
	scale    float64
}

// NewResolution derives the physical size from a logical size and scale.
func NewResolution(logical Size, scale float64) (Resolution, error) {
	if !logical.Valid() || !(scale > 0) || math.IsInf(scale, 0) {
		return Resolution{}, fmt.Errorf("%w: logical %v scale %v", ErrInvalidResolution, logical, scale)
	}
	physical := Size{
		Width:  int(math.Round(float64(logical.Width) * scale)),
		Height: int(math.Round(float64(logical.Height) * scale)),
	}
	if !physical.Valid() {
		return Resolution{}, fmt.Errorf("%w: physical %v", ErrInvalidResolution, physical)
	}
	return Resolution{logical: logical, physical: physical, scale: scale}, nil
}

// ResolutionFromPhysical derives the logical size from a physical size,
// for targets specified in pixels (a triple 1440p wall, say).
func ResolutionFromPhysical(physical Size, scale float64) (Resolution, error) {
	if !physical.Valid() || !(scale > 0) || math.IsInf(scale, 0) {
		return Resolution{}, fmt.Errorf("%w: physical %v scale %v", ErrInvalidResolution, physical, scale)
	}
	logical := Size{
		Width:  int(math.Round(float64(physical.Width) / scale)),
		Height: int(math.Round(float64(physical.Height) / scale)),
	}
	if !logical.Valid() {
		return Resolution{}, fmt.Errorf("%w: logical %v", ErrInvalidResolution, logical)
	}
	return Resolution{logical: logical, physical: physical, scale: scale}, nil
}

// Logical returns the size in device-independent units.
func (r Resolution) Logical() Size { return r.logical }

// Physical returns the size in pixels.
func (r Resolution) Physical() Size { return r.physical }

// Scale returns the logical-to-physical factor.
func (r Resolution) Scale() float64 { return r.scale }

// String returns "logical@scale=physical".
func (r Resolution) String() string {
	return fmt.Sprintf("%v@%g=%v", r.logical, r.scale, r.physical)
}
