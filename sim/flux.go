// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/gogpu/gg"

	"github.com/gogpu/fluxcap"
	"github.com/gogpu/fluxcap/gpu"
)

// Simulation errors.
var (
	// ErrTimeReversed is returned by Step when elapsed time decreases.
	ErrTimeReversed = errors.New("sim: elapsed time went backwards")

	// ErrDiverged is returned by Step when the solver produces non-finite values.
	ErrDiverged = errors.New("sim: fluid solver diverged")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("sim: closed")
)

// Seed fixes the noise permutation and line variance so that runs are
// reproducible.
const Seed uint64 = 0x666c7578

// Line easing rate toward the fluid velocity, per second.
const lineResponse = 8

// line is one stroke of the field, anchored on the grid.
type line struct {
	x, y       float32 // anchor, logical px, y up
	u, v       float32 // anchor in fluid space
	ex, ey     float32 // endpoint offset from anchor, logical px
	widthScale float32
	colorShift float32
}

// Flux is a noise-driven fluid rendered as a field of lines.
//
// Flux works in logical coordinates with y pointing up and renders at the
// physical size. The rendered frame is uploaded to the bound framebuffer
// with dev.WritePixels.
type Flux struct {
	dev      gpu.Device
	settings *Settings

	logicalW, logicalH   int
	physicalW, physicalH int

	fluid *fluid
	lines []line
	reach float32 // max endpoint length, logical px

	started     bool
	lastMs      float64
	accumMs     float64
	intervalMs  float64
	fluidFrames int

	pixmap *gg.Pixmap
	dc     *gg.Context
	closed bool
}

var _ fluxcap.Simulation = (*Flux)(nil)

// New creates a simulation drawing into dev.
func New(dev gpu.Device, logicalW, logicalH, physicalW, physicalH int, s *Settings) (*Flux, error) {
	if dev == nil {
		return nil, errors.New("sim: nil device")
	}
	if s == nil {
		return nil, fmt.Errorf("%w: nil settings", ErrInvalidSettings)
	}
	if _, err := BuilderFrom(s).Build(); err != nil {
		return nil, err
	}
	if logicalW <= 0 || logicalH <= 0 || physicalW <= 0 || physicalH <= 0 {
		return nil, fmt.Errorf("sim: invalid size %dx%d (physical %dx%d)", logicalW, logicalH, physicalW, physicalH)
	}

	fh := s.FluidSize()
	fw := max(1, int(math.Round(float64(fh)*float64(logicalW)/float64(logicalH))))

	f := &Flux{
		dev:        dev,
		settings:   s,
		logicalW:   logicalW,
		logicalH:   logicalH,
		physicalW:  physicalW,
		physicalH:  physicalH,
		fluid:      newFluid(fw, fh, s, Seed),
		reach:      3 * float32(s.GridSpacing()),
		intervalMs: 1000 / float64(s.FluidFrameRate()),
	}
	f.lines = f.layoutLines()

	f.pixmap = gg.NewPixmap(physicalW, physicalH)
	f.dc = gg.NewContext(physicalW, physicalH, gg.WithPixmap(f.pixmap))

	fluxcap.Logger().Debug("sim: created",
		"fluid", fmt.Sprintf("%dx%d", fw, fh),
		"lines", len(f.lines),
		"scheme", s.ColorScheme(),
		"mode", s.Mode())
	return f, nil
}

// Factory returns a SimulationFactory building a Flux with s.
func Factory(s *Settings) fluxcap.SimulationFactory {
	return func(dev gpu.Device, res fluxcap.Resolution) (fluxcap.Simulation, error) {
		l, p := res.Logical(), res.Physical()
		return New(dev, l.Width, l.Height, p.Width, p.Height, s)
	}
}

func (f *Flux) layoutLines() []line {
	s := f.settings
	spacing := float32(s.GridSpacing())
	cols := f.logicalW/s.GridSpacing() + 1
	rows := f.logicalH/s.GridSpacing() + 1
	marginX := (float32(f.logicalW) - float32(cols-1)*spacing) / 2
	marginY := (float32(f.logicalH) - float32(rows-1)*spacing) / 2

	rng := rand.New(rand.NewPCG(Seed, Seed+1))
	variance := s.LineVariance()
	view := s.ViewScale()

	lines := make([]line, 0, cols*rows)
	for r := range rows {
		for c := range cols {
			x := marginX + float32(c)*spacing
			y := marginY + float32(r)*spacing
			lines = append(lines, line{
				x:          x,
				y:          y,
				u:          0.5 + (x/float32(f.logicalW)-0.5)/view,
				v:          0.5 + (y/float32(f.logicalH)-0.5)/view,
				widthScale: 1 - variance*rng.Float32(),
				colorShift: variance * (rng.Float32() - 0.5),
			})
		}
	}
	return lines
}

// Step advances the simulation to elapsedMs, the accumulated simulated
// time in milliseconds. The fluid runs at its own fixed frame rate; lines
// ease toward the current velocity field.
func (f *Flux) Step(elapsedMs float64) error {
	if f.closed {
		return ErrClosed
	}
	if math.IsNaN(elapsedMs) || math.IsInf(elapsedMs, 0) || (f.started && elapsedMs < f.lastMs) {
		return fmt.Errorf("%w: %v after %v", ErrTimeReversed, elapsedMs, f.lastMs)
	}

	var deltaMs float64
	if f.started {
		deltaMs = elapsedMs - f.lastMs
	}
	f.started = true
	f.lastMs = elapsedMs

	// Tolerate the rounding of a fixed nanosecond step against 1000/rate.
	const epsilon = 1e-6
	f.accumMs += deltaMs
	for f.accumMs+epsilon >= f.intervalMs {
		f.fluid.step()
		f.accumMs -= f.intervalMs
		f.fluidFrames++
	}
	if !f.fluid.finite() {
		return fmt.Errorf("%w at %.3f ms", ErrDiverged, elapsedMs)
	}

	f.updateLines(float32(deltaMs / 1000))
	return nil
}

func (f *Flux) updateLines(dt float32) {
	ease := 1 - math32.Exp(-lineResponse*dt)
	if ease == 0 {
		return
	}
	length := f.settings.LineLength()
	cellsToField := 1 / float32(f.fluid.h)
	for i := range f.lines {
		ln := &f.lines[i]
		vx, vy := f.fluid.velocity(ln.u, ln.v)
		tx := vx * cellsToField * length
		ty := vy * cellsToField * length
		if m := math32.Hypot(tx, ty); m > f.reach {
			tx, ty = tx*f.reach/m, ty*f.reach/m
		}
		ln.ex += (tx - ln.ex) * ease
		ln.ey += (ty - ln.ey) * ease
	}
}

// Render draws the current state and uploads it to the bound framebuffer.
func (f *Flux) Render() error {
	if f.closed {
		return ErrClosed
	}
	scheme := f.settings.ColorScheme()
	f.dc.ClearWithColor(scheme.Background())

	var err error
	if f.settings.Mode() == ModeNormal {
		err = f.drawLines(scheme)
	} else {
		f.drawDebug()
	}
	if err != nil {
		return fmt.Errorf("sim: draw: %w", err)
	}

	// Pixmap row 0 holds logical y = 0, the bottom, which is the
	// framebuffer's transfer order.
	if err := f.dev.WritePixels(0, 0, f.physicalW, f.physicalH, gpu.LayoutRGBA, f.pixmap.Data()); err != nil {
		return fmt.Errorf("sim: upload: %w", err)
	}
	return nil
}

func (f *Flux) drawLines(scheme ColorScheme) error {
	s := f.settings
	begin := s.LineBeginOffset()
	width := s.LineWidth()

	f.dc.Push()
	defer f.dc.Pop()
	f.dc.Scale(float64(f.physicalW)/float64(f.logicalW), float64(f.physicalH)/float64(f.logicalH))
	f.dc.SetLineCap(gg.LineCapRound)

	for i := range f.lines {
		ln := &f.lines[i]
		m := math32.Hypot(ln.ex, ln.ey)
		if m < 1e-3 {
			continue
		}
		t := m / f.reach
		f.dc.SetColor(scheme.At(t + ln.colorShift).Color())
		f.dc.SetLineWidth(float64(width * ln.widthScale * (0.3 + 0.7*t)))
		f.dc.DrawLine(
			float64(ln.x+ln.ex*begin), float64(ln.y+ln.ey*begin),
			float64(ln.x+ln.ex), float64(ln.y+ln.ey),
		)
		if err := f.dc.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

// drawDebug writes one of the solver's internal fields straight into the
// pixmap, nearest-sampled from fluid cells.
func (f *Flux) drawDebug() {
	fl := f.fluid
	value := func(x, y int) (r, g, b float32) {
		switch f.settings.Mode() {
		case ModeDebugNoise:
			fx, fy := fl.noise.force((float32(x)+0.5)/float32(fl.w), (float32(y)+0.5)/float32(fl.h))
			return 0.5 + 0.25*fx, 0.5 + 0.25*fy, 0.5
		case ModeDebugFluid:
			return 0.5 + 0.01*fl.vx.at(x, y), 0.5 + 0.01*fl.vy.at(x, y), 0.5
		case ModeDebugPressure:
			p := fl.pressure.at(x, y)
			return 0.5 + 0.05*p, 0.5, 0.5 - 0.05*p
		default:
			d := fl.divergence.at(x, y)
			return 0.5 + 0.5*d, 0.5 - 0.5*d, 0.5
		}
	}

	pix := f.pixmap.Data()
	for py := range f.physicalH {
		cy := py * fl.h / f.physicalH
		for px := range f.physicalW {
			cx := px * fl.w / f.physicalW
			r, g, b := value(cx, cy)
			i := (py*f.physicalW + px) * 4
			pix[i+0] = toByte(r)
			pix[i+1] = toByte(g)
			pix[i+2] = toByte(b)
			pix[i+3] = 0xff
		}
	}
}

func toByte(v float32) uint8 {
	return uint8(math32.Max(0, math32.Min(1, v))*255 + 0.5)
}

// Close releases the drawing context. Close is idempotent.
func (f *Flux) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.dc.Close()
}

// FluidFrames returns how many fixed fluid steps have run.
func (f *Flux) FluidFrames() int { return f.fluidFrames }

// Elapsed returns the last elapsed time passed to Step, in milliseconds.
func (f *Flux) Elapsed() float64 { return f.lastMs }

// Lines returns the number of lines in the field.
func (f *Flux) Lines() int { return len(f.lines) }

// FluidSize returns the solver grid size in cells.
func (f *Flux) FluidSize() (w, h int) { return f.fluid.w, f.fluid.h }
