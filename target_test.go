// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package fluxcap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/fluxcap/gpu"
)

func TestNewTargetLeavesNothingBound(t *testing.T) {
	dev := newRecordingDevice()
	target, err := NewTarget(dev, 8, 4)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"CreateRenderbuffer",
		"CreateFramebuffer",
		"FramebufferRenderbuffer",
		"BindFramebuffer(0)",
		"BindRenderbuffer(0)",
	}, dev.calls)

	rb, fb := dev.Bound()
	assert.Equal(t, gpu.Renderbuffer(gpu.None), rb)
	assert.Equal(t, gpu.Framebuffer(gpu.None), fb)
	assert.Equal(t, 8, target.Width())
	assert.Equal(t, 4, target.Height())
	assert.Equal(t, 1, dev.Stats().Renderbuffers)
	assert.Equal(t, 1, dev.Stats().Framebuffers)
}

func TestTargetBind(t *testing.T) {
	dev := newRecordingDevice()
	target, err := NewTarget(dev, 2, 2)
	require.NoError(t, err)

	require.NoError(t, target.Bind())
	rb, fb := dev.Bound()
	assert.Equal(t, target.rb, rb)
	assert.Equal(t, target.fb, fb)
}

func TestTargetDestroyOnce(t *testing.T) {
	dev := newRecordingDevice()
	target, err := NewTarget(dev, 2, 2)
	require.NoError(t, err)
	dev.calls = nil

	require.NoError(t, target.Destroy())
	assert.Equal(t, []string{"DeleteFramebuffer", "DeleteRenderbuffer"}, dev.calls)
	assert.True(t, target.Released())
	assert.Equal(t, 0, dev.Stats().Renderbuffers)
	assert.Equal(t, 0, dev.Stats().Framebuffers)

	assert.ErrorIs(t, target.Destroy(), ErrTargetReleased)
	assert.ErrorIs(t, target.Bind(), ErrTargetReleased)
	assert.Len(t, dev.calls, 2, "released target must not issue GPU calls")
}

func TestNewTargetCleansUpOnFailure(t *testing.T) {
	tests := []struct {
		name        string
		failing     string
		wantDeletes []string
	}{
		{"renderbuffer", "CreateRenderbuffer", nil},
		{"framebuffer", "CreateFramebuffer", []string{"DeleteRenderbuffer"}},
		{"attach", "FramebufferRenderbuffer", []string{"DeleteFramebuffer", "DeleteRenderbuffer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newRecordingDevice()
			cause := errors.New("driver says no")
			dev.fail[tt.failing] = cause

			target, err := NewTarget(dev, 4, 4)
			assert.Nil(t, target)
			assert.ErrorIs(t, err, ErrAllocation)
			assert.ErrorIs(t, err, cause)

			var deletes []string
			for _, c := range dev.calls {
				if c == "DeleteFramebuffer" || c == "DeleteRenderbuffer" {
					deletes = append(deletes, c)
				}
			}
			assert.Equal(t, tt.wantDeletes, deletes)
			assert.Equal(t, 0, dev.Stats().Renderbuffers)
			assert.Equal(t, 0, dev.Stats().Framebuffers)
		})
	}
}

func TestNewTargetRejectsEmptySize(t *testing.T) {
	dev := newRecordingDevice()
	_, err := NewTarget(dev, 0, 4)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.Empty(t, dev.calls)
}
