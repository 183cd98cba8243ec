// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/fluxcap/gpu"
	"github.com/gogpu/fluxcap/surface"
)

func newTarget(t *testing.T, d *Device, w, h int) (gpu.Renderbuffer, gpu.Framebuffer) {
	t.Helper()
	rb, err := d.CreateRenderbuffer(gpu.FormatSRGB8Alpha8, w, h)
	require.NoError(t, err)
	fb, err := d.CreateFramebuffer()
	require.NoError(t, err)
	require.NoError(t, d.FramebufferRenderbuffer(fb, rb))
	return rb, fb
}

func TestWriteReadRoundTrip(t *testing.T) {
	d := NewDevice()
	newTarget(t, d, 3, 2)

	src := []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 9,
		10, 11, 12, 13, 14, 15, 16, 17, 18,
	}
	require.NoError(t, d.WritePixels(0, 0, 3, 2, gpu.LayoutRGB, src))

	dst := make([]byte, len(src))
	n, err := d.ReadPixels(0, 0, 3, 2, gpu.LayoutRGB, dst)
	require.NoError(t, err)
	assert.Equal(t, len(src), n)
	assert.Equal(t, src, dst)

	rgba := make([]byte, 4)
	_, err = d.ReadPixels(2, 1, 1, 1, gpu.LayoutRGBA, rgba)
	require.NoError(t, err)
	assert.Equal(t, []byte{16, 17, 18, 0xff}, rgba)
}

func TestReadRequiresBoundFramebuffer(t *testing.T) {
	d := NewDevice()
	newTarget(t, d, 2, 2)
	d.BindFramebuffer(gpu.None)

	_, err := d.ReadPixels(0, 0, 2, 2, gpu.LayoutRGB, make([]byte, 12))
	assert.ErrorIs(t, err, gpu.ErrNoFramebuffer)
}

func TestReadRejectsBadRegion(t *testing.T) {
	d := NewDevice()
	newTarget(t, d, 2, 2)

	_, err := d.ReadPixels(0, 0, 3, 2, gpu.LayoutRGB, make([]byte, 18))
	assert.ErrorIs(t, err, gpu.ErrBadRegion)

	_, err = d.ReadPixels(0, 0, 2, 2, gpu.LayoutRGB, make([]byte, 11))
	assert.ErrorIs(t, err, gpu.ErrShortBuffer)
}

func TestAttachUnknownRenderbuffer(t *testing.T) {
	d := NewDevice()
	fb, err := d.CreateFramebuffer()
	require.NoError(t, err)
	assert.ErrorIs(t, d.FramebufferRenderbuffer(fb, 42), gpu.ErrIncomplete)
	assert.ErrorIs(t, d.FramebufferRenderbuffer(99, 42), gpu.ErrUnknownHandle)
}

func TestDeleteIsIdempotentAndUnbinds(t *testing.T) {
	d := NewDevice()
	rb, fb := newTarget(t, d, 1, 1)
	d.BindRenderbuffer(rb)
	d.BindFramebuffer(fb)

	d.DeleteFramebuffer(fb)
	d.DeleteRenderbuffer(rb)
	d.DeleteFramebuffer(fb)
	d.DeleteRenderbuffer(rb)

	boundRB, boundFB := d.Bound()
	assert.Equal(t, gpu.Renderbuffer(gpu.None), boundRB)
	assert.Equal(t, gpu.Framebuffer(gpu.None), boundFB)
	assert.Equal(t, 0, d.Stats().Renderbuffers)
	assert.Equal(t, 0, d.Stats().Framebuffers)
}

func TestCreateRenderbufferValidation(t *testing.T) {
	d := NewDevice()
	_, err := d.CreateRenderbuffer(gpu.Format(0), 1, 1)
	assert.Error(t, err)
	_, err = d.CreateRenderbuffer(gpu.FormatRGBA8, 0, 1)
	assert.Error(t, err)
}

func TestFinishCounts(t *testing.T) {
	d := NewDevice()
	for range 3 {
		require.NoError(t, d.Finish())
	}
	assert.Equal(t, 3, d.Stats().Finishes)
}

func TestRegistered(t *testing.T) {
	ctx, err := surface.ProvisionByName(BackendName, surface.DefaultOptions(4, 4))
	require.NoError(t, err)
	assert.Equal(t, BackendName, ctx.Info().Backend)
	assert.NotNil(t, ctx.Device())
	require.NoError(t, ctx.Close())
	require.NoError(t, ctx.Close())
}
