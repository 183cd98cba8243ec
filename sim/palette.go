// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sim

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gogpu/gg"
)

// ColorScheme names a line palette.
type ColorScheme uint8

const (
	Plasma ColorScheme = iota
	Peacock
	Poolside
	Pollen
)

type palette struct {
	background gg.RGBA
	stops      []gg.RGBA
}

var palettes = [...]palette{
	Plasma: {
		background: gg.Hex("#0d0221"),
		stops: []gg.RGBA{
			gg.Hex("#3c0a7a"), gg.Hex("#8b1a8c"), gg.Hex("#d84b5c"),
			gg.Hex("#fca636"), gg.Hex("#f0f921"),
		},
	},
	Peacock: {
		background: gg.Hex("#0b1d26"),
		stops: []gg.RGBA{
			gg.Hex("#00374a"), gg.Hex("#006d77"), gg.Hex("#2a9d8f"),
			gg.Hex("#83c5be"), gg.Hex("#e9d8a6"),
		},
	},
	Poolside: {
		background: gg.Hex("#0a2540"),
		stops: []gg.RGBA{
			gg.Hex("#1f4e79"), gg.Hex("#2e86c1"), gg.Hex("#5dade2"),
			gg.Hex("#aed6f1"), gg.Hex("#fdfefe"),
		},
	},
	Pollen: {
		background: gg.Hex("#2b1b0e"),
		stops: []gg.RGBA{
			gg.Hex("#7f4f24"), gg.Hex("#b6862c"), gg.Hex("#e9b949"),
			gg.Hex("#f6d776"), gg.Hex("#fff3c4"),
		},
	},
}

var schemeNames = [...]string{"plasma", "peacock", "poolside", "pollen"}

func (c ColorScheme) valid() bool { return int(c) < len(palettes) }

// String returns the scheme name.
func (c ColorScheme) String() string {
	if c.valid() {
		return schemeNames[c]
	}
	return fmt.Sprintf("ColorScheme(%d)", uint8(c))
}

// ParseColorScheme parses a scheme name.
func ParseColorScheme(s string) (ColorScheme, error) {
	for i, name := range schemeNames {
		if name == s {
			return ColorScheme(i), nil
		}
	}
	return 0, fmt.Errorf("sim: unknown color scheme %q", s)
}

// Background returns the clear color of the scheme.
func (c ColorScheme) Background() gg.RGBA {
	return palettes[c].background
}

// At returns the palette color at t in [0, 1], linearly interpolated
// between stops. t is clamped.
func (c ColorScheme) At(t float32) gg.RGBA {
	stops := palettes[c].stops
	t = math32.Max(0, math32.Min(1, t))
	pos := t * float32(len(stops)-1)
	i := int(math32.Floor(pos))
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	return stops[i].Lerp(stops[i+1], float64(pos-float32(i)))
}
