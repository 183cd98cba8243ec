// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sim

import (
	"math/rand/v2"

	"github.com/chewxy/math32"
)

// gradientNoise is 3D improved gradient noise over a fixed permutation.
// Output lies roughly in [-1, 1].
type gradientNoise struct {
	perm [512]uint8
}

func newGradientNoise(seed uint64) *gradientNoise {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	var n gradientNoise
	for i := range 256 {
		n.perm[i] = uint8(i)
	}
	rng.Shuffle(256, func(i, j int) {
		n.perm[i], n.perm[j] = n.perm[j], n.perm[i]
	})
	copy(n.perm[256:], n.perm[:256])
	return &n
}

func fade(t float32) float32 { return t * t * t * (t*(t*6-15) + 10) }

func lerp(a, b, t float32) float32 { return a + t*(b-a) }

func grad(hash uint8, x, y, z float32) float32 {
	h := hash & 15
	u := x
	if h >= 8 {
		u = y
	}
	var v float32
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	default:
		v = z
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

func (n *gradientNoise) at(x, y, z float32) float32 {
	fx, fy, fz := math32.Floor(x), math32.Floor(y), math32.Floor(z)
	xi, yi, zi := int(fx)&255, int(fy)&255, int(fz)&255
	x, y, z = x-fx, y-fy, z-fz
	u, v, w := fade(x), fade(y), fade(z)

	p := &n.perm
	a := int(p[xi]) + yi
	aa, ab := int(p[a])+zi, int(p[a+1])+zi
	b := int(p[xi+1]) + yi
	ba, bb := int(p[b])+zi, int(p[b+1])+zi

	return lerp(
		lerp(
			lerp(grad(p[aa], x, y, z), grad(p[ba], x-1, y, z), u),
			lerp(grad(p[ab], x, y-1, z), grad(p[bb], x-1, y-1, z), u),
			v),
		lerp(
			lerp(grad(p[aa+1], x, y, z-1), grad(p[ba+1], x-1, y, z-1), u),
			lerp(grad(p[ab+1], x, y-1, z-1), grad(p[bb+1], x-1, y-1, z-1), u),
			v),
		w)
}

// noiseField produces the per-cell driving force from the configured
// octaves. Each octave's third coordinate drifts by its offset increment
// every fluid step, animating the field.
type noiseField struct {
	channels []Noise
	offsets  []float32
	noise    *gradientNoise
}

func newNoiseField(channels []Noise, seed uint64) *noiseField {
	return &noiseField{
		channels: channels,
		offsets:  make([]float32, len(channels)),
		noise:    newGradientNoise(seed),
	}
}

// advance moves every octave forward one fluid step.
func (f *noiseField) advance() {
	for i, ch := range f.channels {
		f.offsets[i] += ch.OffsetIncrement
	}
}

// force returns the force at normalized position (u, v) in [0, 1].
// The x and y components sample decorrelated slices of the same noise.
func (f *noiseField) force(u, v float32) (fx, fy float32) {
	for i, ch := range f.channels {
		z := f.offsets[i]
		fx += ch.Multiplier * f.noise.at(u*ch.Scale, v*ch.Scale, z)
		fy += ch.Multiplier * f.noise.at(u*ch.Scale+31.416, v*ch.Scale+17.32, z+7.77)
	}
	return fx, fy
}
