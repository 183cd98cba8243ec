// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package fluxcap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolution(t *testing.T) {
	tests := []struct {
		name    string
		logical Size
		scale   float64
		want    Size
	}{
		{"default", Size{1280, 800}, 2.625, Size{3360, 2100}},
		{"unit", Size{640, 480}, 1, Size{640, 480}},
		{"rounds half up", Size{3, 3}, 1.5, Size{5, 5}},
		{"downscale", Size{100, 50}, 0.5, Size{50, 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResolution(tt.logical, tt.scale)
			require.NoError(t, err)
			assert.Equal(t, tt.logical, r.Logical())
			assert.Equal(t, tt.want, r.Physical())
			assert.Equal(t, tt.scale, r.Scale())
		})
	}
}

func TestNewResolutionInvalid(t *testing.T) {
	tests := []struct {
		name    string
		logical Size
		scale   float64
	}{
		{"zero width", Size{0, 10}, 1},
		{"negative height", Size{10, -1}, 1},
		{"zero scale", Size{10, 10}, 0},
		{"negative scale", Size{10, 10}, -2},
		{"nan scale", Size{10, 10}, math.NaN()},
		{"inf scale", Size{10, 10}, math.Inf(1)},
		{"collapses to zero", Size{1, 1}, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolution(tt.logical, tt.scale)
			assert.ErrorIs(t, err, ErrInvalidResolution)
		})
	}
}

func TestResolutionFromPhysical(t *testing.T) {
	r, err := ResolutionFromPhysical(Size{7680, 1440}, 2)
	require.NoError(t, err)
	assert.Equal(t, Size{3840, 720}, r.Logical())
	assert.Equal(t, Size{7680, 1440}, r.Physical())

	_, err = ResolutionFromPhysical(Size{0, 1440}, 2)
	assert.ErrorIs(t, err, ErrInvalidResolution)
}

func TestResolutionString(t *testing.T) {
	r, err := NewResolution(Size{1280, 800}, 2.625)
	require.NoError(t, err)
	assert.Equal(t, "1280x800@2.625=3360x2100", r.String())
}
