// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sim

import (
	"github.com/chewxy/math32"
)

// field is a scalar grid with clamp-to-edge sampling.
type field struct {
	w, h int
	v    []float32
}

func newField(w, h int) field {
	return field{w: w, h: h, v: make([]float32, w*h)}
}

func (f *field) at(x, y int) float32 {
	x = min(max(x, 0), f.w-1)
	y = min(max(y, 0), f.h-1)
	return f.v[y*f.w+x]
}

// sample bilinearly interpolates at cell coordinates (x, y), where cell
// centers lie on integers.
func (f *field) sample(x, y float32) float32 {
	x0, y0 := math32.Floor(x), math32.Floor(y)
	tx, ty := x-x0, y-y0
	ix, iy := int(x0), int(y0)
	return lerp(
		lerp(f.at(ix, iy), f.at(ix+1, iy), tx),
		lerp(f.at(ix, iy+1), f.at(ix+1, iy+1), tx),
		ty)
}

func (f *field) clear() {
	clear(f.v)
}

// fluid is a stable-fluids velocity solver on a w x h grid in cell units.
type fluid struct {
	w, h int

	vx, vy     field
	tmpX, tmpY field
	pressure   field
	tmpP       field
	divergence field

	settings *Settings
	noise    *noiseField
}

func newFluid(w, h int, s *Settings, seed uint64) *fluid {
	return &fluid{
		w: w, h: h,
		vx: newField(w, h), vy: newField(w, h),
		tmpX: newField(w, h), tmpY: newField(w, h),
		pressure: newField(w, h), tmpP: newField(w, h),
		divergence: newField(w, h),
		settings:   s,
		noise:      newNoiseField(s.NoiseChannels(), seed),
	}
}

// step advances the velocity field by one fixed timestep.
func (f *fluid) step() {
	dt := f.settings.FluidTimestep()

	f.applyNoise(dt)
	f.advect(dt)
	f.dissipate(dt)
	f.diffuse(dt)
	f.project()
	f.noise.advance()
}

func (f *fluid) applyNoise(dt float32) {
	su, sv := 1/float32(f.w), 1/float32(f.h)
	for y := range f.h {
		for x := range f.w {
			fx, fy := f.noise.force((float32(x)+0.5)*su, (float32(y)+0.5)*sv)
			i := y*f.w + x
			f.vx.v[i] += fx * dt * float32(f.w)
			f.vy.v[i] += fy * dt * float32(f.w)
		}
	}
}

// advect moves velocity along itself (semi-Lagrangian backtrace).
func (f *fluid) advect(dt float32) {
	for y := range f.h {
		for x := range f.w {
			i := y*f.w + x
			px := float32(x) - dt*f.vx.v[i]
			py := float32(y) - dt*f.vy.v[i]
			f.tmpX.v[i] = f.vx.sample(px, py)
			f.tmpY.v[i] = f.vy.sample(px, py)
		}
	}
	f.vx, f.tmpX = f.tmpX, f.vx
	f.vy, f.tmpY = f.tmpY, f.vy
}

func (f *fluid) dissipate(dt float32) {
	d := f.settings.VelocityDissipation()
	if d == 0 {
		return
	}
	k := 1 / (1 + d*dt)
	for i := range f.vx.v {
		f.vx.v[i] *= k
		f.vy.v[i] *= k
	}
}

// diffuse applies viscosity with Jacobi iterations of the implicit step.
func (f *fluid) diffuse(dt float32) {
	a := dt * f.settings.Viscosity()
	if a == 0 {
		return
	}
	for range f.settings.DiffusionIterations() {
		f.jacobiDiffuse(&f.vx, &f.tmpX, a)
		f.jacobiDiffuse(&f.vy, &f.tmpY, a)
	}
}

func (f *fluid) jacobiDiffuse(v, tmp *field, a float32) {
	inv := 1 / (1 + 4*a)
	for y := range f.h {
		for x := range f.w {
			n := v.at(x-1, y) + v.at(x+1, y) + v.at(x, y-1) + v.at(x, y+1)
			tmp.v[y*f.w+x] = (v.v[y*f.w+x] + a*n) * inv
		}
	}
	*v, *tmp = *tmp, *v
}

// project removes the divergent part of the velocity field.
func (f *fluid) project() {
	f.computeDivergence()

	if f.settings.ClearPressure() == ClearPressureEachStep {
		f.pressure.clear()
	}
	for range f.settings.PressureIterations() {
		for y := range f.h {
			for x := range f.w {
				n := f.pressure.at(x-1, y) + f.pressure.at(x+1, y) +
					f.pressure.at(x, y-1) + f.pressure.at(x, y+1)
				f.tmpP.v[y*f.w+x] = (n - f.divergence.v[y*f.w+x]) * 0.25
			}
		}
		f.pressure, f.tmpP = f.tmpP, f.pressure
	}

	for y := range f.h {
		for x := range f.w {
			i := y*f.w + x
			f.vx.v[i] -= 0.5 * (f.pressure.at(x+1, y) - f.pressure.at(x-1, y))
			f.vy.v[i] -= 0.5 * (f.pressure.at(x, y+1) - f.pressure.at(x, y-1))
		}
	}
}

func (f *fluid) computeDivergence() {
	for y := range f.h {
		for x := range f.w {
			f.divergence.v[y*f.w+x] = 0.5 * (f.vx.at(x+1, y) - f.vx.at(x-1, y) +
				f.vy.at(x, y+1) - f.vy.at(x, y-1))
		}
	}
}

// velocity samples the field at normalized position (u, v) in [0, 1],
// returning cells per second.
func (f *fluid) velocity(u, v float32) (float32, float32) {
	x := u*float32(f.w) - 0.5
	y := v*float32(f.h) - 0.5
	return f.vx.sample(x, y), f.vy.sample(x, y)
}

// finite reports whether every velocity component is a finite number.
func (f *fluid) finite() bool {
	for i := range f.vx.v {
		if math32.IsNaN(f.vx.v[i]) || math32.IsInf(f.vx.v[i], 0) ||
			math32.IsNaN(f.vy.v[i]) || math32.IsInf(f.vy.v[i], 0) {
			return false
		}
	}
	return true
}
