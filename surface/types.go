// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"

	"github.com/gogpu/fluxcap/gpu"
)

// Profile selects the graphics API profile of a context.
type Profile uint8

const (
	// ProfileCore is a core (non-legacy) profile. It is the only profile
	// a capture run accepts.
	ProfileCore Profile = iota

	// ProfileCompat is a legacy compatibility profile.
	ProfileCompat
)

// String returns the profile name.
func (p Profile) String() string {
	switch p {
	case ProfileCore:
		return "core"
	case ProfileCompat:
		return "compat"
	default:
		return fmt.Sprintf("Profile(%d)", uint8(p))
	}
}

// Options configures context creation.
type Options struct {
	// Width is the physical surface width in pixels.
	Width int

	// Height is the physical surface height in pixels.
	Height int

	// Profile is the requested API profile.
	// Default: ProfileCore
	Profile Profile

	// DoubleBuffer requests a presentable back buffer.
	// Default: false
	DoubleBuffer bool

	// Label is an optional debug name (window title on gl).
	Label string
}

// DefaultOptions returns Options with default values.
func DefaultOptions(width, height int) Options {
	return Options{
		Width:   width,
		Height:  height,
		Profile: ProfileCore,
		Label:   "fluxcap",
	}
}

// Validate reports whether the options describe a headless capture context.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, o.Width, o.Height)
	}
	if o.Profile != ProfileCore {
		return fmt.Errorf("%w: %v", ErrUnsupportedProfile, o.Profile)
	}
	if o.DoubleBuffer {
		return ErrDoubleBuffer
	}
	return nil
}

// Info describes a provisioned context.
type Info struct {
	// Backend is the registry name of the backend.
	Backend string

	// Renderer is a human-readable description of the device.
	Renderer string
}

// Context is an active headless GPU context.
type Context interface {
	// Device returns the command interface bound to this context.
	Device() gpu.Device

	// Info describes the context.
	Info() Info

	// Close releases the context. Close is idempotent.
	Close() error
}

// Option errors.
var (
	// ErrInvalidSize is returned for non-positive surface dimensions.
	ErrInvalidSize = errors.New("surface: invalid size")

	// ErrUnsupportedProfile is returned for any profile other than core.
	ErrUnsupportedProfile = errors.New("surface: unsupported profile")

	// ErrDoubleBuffer is returned when double buffering is requested.
	ErrDoubleBuffer = errors.New("surface: double buffering not supported headless")
)
