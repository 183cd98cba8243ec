// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package fluxcap

import (
	"fmt"

	"github.com/gogpu/fluxcap/gpu"
	"github.com/gogpu/fluxcap/gpu/software"
)

// recordingDevice wraps the software device, logging every call and
// failing the ones named in fail.
type recordingDevice struct {
	*software.Device
	calls []string
	fail  map[string]error
	short bool // ReadPixels reports one byte less than requested
}

func newRecordingDevice() *recordingDevice {
	return &recordingDevice{Device: software.NewDevice(), fail: map[string]error{}}
}

func (d *recordingDevice) record(call string) error {
	d.calls = append(d.calls, call)
	return d.fail[call]
}

func (d *recordingDevice) count(call string) int {
	n := 0
	for _, c := range d.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (d *recordingDevice) CreateRenderbuffer(f gpu.Format, w, h int) (gpu.Renderbuffer, error) {
	if err := d.record("CreateRenderbuffer"); err != nil {
		return gpu.None, err
	}
	return d.Device.CreateRenderbuffer(f, w, h)
}

func (d *recordingDevice) CreateFramebuffer() (gpu.Framebuffer, error) {
	if err := d.record("CreateFramebuffer"); err != nil {
		return gpu.None, err
	}
	return d.Device.CreateFramebuffer()
}

func (d *recordingDevice) FramebufferRenderbuffer(fb gpu.Framebuffer, rb gpu.Renderbuffer) error {
	if err := d.record("FramebufferRenderbuffer"); err != nil {
		return err
	}
	return d.Device.FramebufferRenderbuffer(fb, rb)
}

func (d *recordingDevice) BindRenderbuffer(rb gpu.Renderbuffer) {
	d.calls = append(d.calls, fmt.Sprintf("BindRenderbuffer(%d)", rb))
	d.Device.BindRenderbuffer(rb)
}

func (d *recordingDevice) BindFramebuffer(fb gpu.Framebuffer) {
	d.calls = append(d.calls, fmt.Sprintf("BindFramebuffer(%d)", fb))
	d.Device.BindFramebuffer(fb)
}

func (d *recordingDevice) DeleteRenderbuffer(rb gpu.Renderbuffer) {
	d.calls = append(d.calls, "DeleteRenderbuffer")
	d.Device.DeleteRenderbuffer(rb)
}

func (d *recordingDevice) DeleteFramebuffer(fb gpu.Framebuffer) {
	d.calls = append(d.calls, "DeleteFramebuffer")
	d.Device.DeleteFramebuffer(fb)
}

func (d *recordingDevice) Finish() error {
	if err := d.record("Finish"); err != nil {
		return err
	}
	return d.Device.Finish()
}

func (d *recordingDevice) ReadPixels(x, y, w, h int, layout gpu.Layout, dst []byte) (int, error) {
	if err := d.record("ReadPixels"); err != nil {
		return 0, err
	}
	n, err := d.Device.ReadPixels(x, y, w, h, layout, dst)
	if d.short && n > 0 {
		n--
	}
	return n, err
}

// fakeSim records its steps and paints a fixed pattern on Render: the
// bottom half red, the top half blue, in lower-left transfer order.
type fakeSim struct {
	dev     gpu.Device
	w, h    int
	steps   []float64
	failAt  int // step index to fail at, -1 for never
	stepErr error
	rendErr error
	renders int
	closed  bool
}

func newFakeSim(dev gpu.Device, w, h int) *fakeSim {
	return &fakeSim{dev: dev, w: w, h: h, failAt: -1}
}

func (s *fakeSim) Step(elapsedMs float64) error {
	if len(s.steps) == s.failAt {
		return s.stepErr
	}
	s.steps = append(s.steps, elapsedMs)
	return nil
}

func (s *fakeSim) Render() error {
	s.renders++
	if s.rendErr != nil {
		return s.rendErr
	}
	pix := make([]byte, 0, 4*s.w*s.h)
	for y := range s.h {
		for range s.w {
			if y < s.h/2 {
				pix = append(pix, 255, 0, 0, 255)
			} else {
				pix = append(pix, 0, 0, 255, 255)
			}
		}
	}
	return s.dev.WritePixels(0, 0, s.w, s.h, gpu.LayoutRGBA, pix)
}

func (s *fakeSim) Close() error {
	s.closed = true
	return nil
}
