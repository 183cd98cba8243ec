// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"testing"

	"github.com/gogpu/fluxcap/gpu"
)

// stubContext is a Context with no device, recording its options.
type stubContext struct {
	name   string
	opts   Options
	closed int
}

func (c *stubContext) Device() gpu.Device { return nil }
func (c *stubContext) Info() Info         { return Info{Backend: c.name} }
func (c *stubContext) Close() error       { c.closed++; return nil }

func stubFactory(name string) Factory {
	return func(opts Options) (Context, error) {
		return &stubContext{name: name, opts: opts}, nil
	}
}

// TestRegistryRegister tests backend registration.
func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	r.Register("test", 50, stubFactory("test"), nil)

	entry, ok := r.Get("test")
	if !ok {
		t.Fatal("registered backend not found")
	}

	if entry.Name != "test" {
		t.Errorf("Name = %s, want test", entry.Name)
	}
	if entry.Priority != 50 {
		t.Errorf("Priority = %d, want 50", entry.Priority)
	}
	if !entry.Available() {
		t.Error("backend should be available (nil Available func)")
	}
}

// TestRegistryUnregister tests backend removal.
func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()

	r.Register("temp", 10, stubFactory("temp"), nil)

	if _, ok := r.Get("temp"); !ok {
		t.Fatal("backend should exist before unregister")
	}

	r.Unregister("temp")

	if _, ok := r.Get("temp"); ok {
		t.Error("backend should not exist after unregister")
	}
}

// TestRegistryList tests listing backends.
func TestRegistryList(t *testing.T) {
	r := NewRegistry()

	r.Register("software", 10, stubFactory("software"), nil)
	r.Register("gl", 100, stubFactory("gl"), nil)
	r.Register("wgpu", 50, stubFactory("wgpu"), nil)

	list := r.List()

	if len(list) != 3 {
		t.Fatalf("expected 3 backends, got %d", len(list))
	}

	want := []string{"gl", "wgpu", "software"}
	for i, name := range want {
		if list[i] != name {
			t.Errorf("list[%d] = %s, want %s", i, list[i], name)
		}
	}
}

// TestRegistryAvailable tests filtering by availability.
func TestRegistryAvailable(t *testing.T) {
	r := NewRegistry()

	r.Register("available", 100, stubFactory("available"), func() bool { return true })
	r.Register("unavailable", 200, stubFactory("unavailable"), func() bool { return false })

	available := r.Available()

	if len(available) != 1 {
		t.Fatalf("expected 1 available backend, got %d", len(available))
	}

	if available[0] != "available" {
		t.Errorf("expected 'available', got %s", available[0])
	}
}

// TestRegistryProvision tests creating contexts via registry.
func TestRegistryProvision(t *testing.T) {
	r := NewRegistry()

	r.Register("test", 50, stubFactory("test"), nil)

	ctx, err := r.Provision(DefaultOptions(100, 80))
	if err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	defer ctx.Close()

	stub := ctx.(*stubContext)
	if stub.opts.Width != 100 || stub.opts.Height != 80 {
		t.Errorf("size = %dx%d, want 100x80", stub.opts.Width, stub.opts.Height)
	}
	if stub.opts.Profile != ProfileCore || stub.opts.DoubleBuffer {
		t.Errorf("options = %+v, want core profile without double buffering", stub.opts)
	}
}

// TestRegistryProvisionByNameNotFound tests error for unknown backend.
func TestRegistryProvisionByNameNotFound(t *testing.T) {
	r := NewRegistry()

	_, err := r.ProvisionByName("nonexistent", DefaultOptions(100, 100))
	if err == nil {
		t.Fatal("expected error for nonexistent backend")
	}

	var notFound *BackendNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected BackendNotFoundError, got %T", err)
	}

	if notFound.Name != "nonexistent" {
		t.Errorf("error name = %s, want nonexistent", notFound.Name)
	}
}

// TestRegistryProvisionByNameUnavailable tests error for unavailable backend.
func TestRegistryProvisionByNameUnavailable(t *testing.T) {
	r := NewRegistry()

	r.Register("unavailable", 50, stubFactory("unavailable"), func() bool { return false })

	_, err := r.ProvisionByName("unavailable", DefaultOptions(100, 100))
	var unavailable *BackendUnavailableError
	if !errors.As(err, &unavailable) {
		t.Errorf("expected BackendUnavailableError, got %T", err)
	}
}

// TestRegistryNoBackend tests error when no backends available.
func TestRegistryNoBackend(t *testing.T) {
	r := NewRegistry()

	_, err := r.Provision(DefaultOptions(100, 100))
	if !errors.Is(err, ErrNoBackendAvailable) {
		t.Errorf("expected ErrNoBackendAvailable, got %v", err)
	}
}

// TestRegistryFallback tests that a failing backend falls through to the next.
func TestRegistryFallback(t *testing.T) {
	r := NewRegistry()

	expectedErr := errors.New("no display")
	r.Register("gl", 100, func(Options) (Context, error) {
		return nil, expectedErr
	}, nil)
	r.Register("software", 10, stubFactory("software"), nil)

	ctx, err := r.Provision(DefaultOptions(10, 10))
	if err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	if got := ctx.Info().Backend; got != "software" {
		t.Errorf("backend = %s, want software", got)
	}
}

// TestRegistryFactoryError tests handling of factory errors.
func TestRegistryFactoryError(t *testing.T) {
	r := NewRegistry()

	expectedErr := errors.New("creation failed")
	r.Register("failing", 50, func(Options) (Context, error) {
		return nil, expectedErr
	}, nil)

	_, err := r.ProvisionByName("failing", DefaultOptions(100, 100))
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected factory error, got %v", err)
	}

	_, err = r.Provision(DefaultOptions(100, 100))
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected joined factory error, got %v", err)
	}
}

// TestRegistryRejectsInvalidOptions tests validation before any factory runs.
func TestRegistryRejectsInvalidOptions(t *testing.T) {
	r := NewRegistry()

	called := false
	r.Register("test", 50, func(opts Options) (Context, error) {
		called = true
		return &stubContext{opts: opts}, nil
	}, nil)

	legacy := DefaultOptions(10, 10)
	legacy.Profile = ProfileCompat
	doubled := DefaultOptions(10, 10)
	doubled.DoubleBuffer = true

	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"zero width", DefaultOptions(0, 10), ErrInvalidSize},
		{"negative height", DefaultOptions(10, -1), ErrInvalidSize},
		{"legacy profile", legacy, ErrUnsupportedProfile},
		{"double buffer", doubled, ErrDoubleBuffer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ProvisionByName("test", tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if called {
		t.Error("factory must not run for invalid options")
	}
}

// TestRegistryOverwrite tests that re-registering overwrites.
func TestRegistryOverwrite(t *testing.T) {
	r := NewRegistry()

	r.Register("test", 10, stubFactory("test"), nil)
	r.Register("test", 50, stubFactory("test"), nil)

	entry, _ := r.Get("test")
	if entry.Priority != 50 {
		t.Errorf("Priority = %d, want 50 (should be overwritten)", entry.Priority)
	}
}

// TestBackendNotFoundError tests error message formatting.
func TestBackendNotFoundError(t *testing.T) {
	err := &BackendNotFoundError{Name: "vulkan"}
	if msg := err.Error(); msg != "surface: backend not found: vulkan" {
		t.Errorf("error message = %q, unexpected format", msg)
	}
}

// TestBackendUnavailableError tests error message formatting.
func TestBackendUnavailableError(t *testing.T) {
	err := &BackendUnavailableError{Name: "metal"}
	if msg := err.Error(); msg != "surface: backend unavailable: metal" {
		t.Errorf("error message = %q, unexpected format", msg)
	}
}
