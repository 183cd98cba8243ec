// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command fluxcap renders a few seconds of the flux simulation offscreen and
// saves the last frame as an image.
//
// Usage:
//
//	fluxcap [-config run.toml] [-output out.png] [-surface gl|wgpu|software] [-v]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/gogpu/fluxcap"
	"github.com/gogpu/fluxcap/config"
	"github.com/gogpu/fluxcap/sim"

	// Surface backends register themselves on import.
	_ "github.com/gogpu/fluxcap/gpu/gl"
	_ "github.com/gogpu/fluxcap/gpu/software"
	_ "github.com/gogpu/fluxcap/gpu/wgpu"
)

func init() {
	// GL contexts are bound to the thread that created them.
	runtime.LockOSThread()
}

func main() {
	var (
		configPath = flag.String("config", "", "TOML or YAML run configuration")
		output     = flag.String("output", fluxcap.DefaultOutput, "output image (.png, .jpg, .bmp, .tiff)")
		surfaceArg = flag.String("surface", "", "surface backend (default: best available)")
		horizon    = flag.Duration("horizon", fluxcap.DefaultHorizon, "simulated time to run before capture")
		step       = flag.Duration("step", fluxcap.DefaultStep, "simulated time per step")
		scale      = flag.Float64("scale", 2.625, "logical-to-physical pixel scale")
		width      = flag.Int("width", 1280, "logical width")
		height     = flag.Int("height", 800, "logical height")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	fluxcap.SetLogger(logger)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fail(logger, err)
		}
	}

	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.Capture.Output = *output
		case "surface":
			cfg.Capture.Surface = *surfaceArg
		case "horizon":
			cfg.Capture.Horizon = config.Duration{Duration: *horizon}
		case "step":
			cfg.Capture.Step = config.Duration{Duration: *step}
		case "scale":
			cfg.Capture.Scale = *scale
		case "width":
			cfg.Capture.Width = *width
		case "height":
			cfg.Capture.Height = *height
		}
	})

	if err := run(logger, cfg); err != nil {
		fail(logger, err)
	}
}

func run(logger *slog.Logger, cfg *config.File) error {
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	c, err := fluxcap.New(opts...)
	if err != nil {
		return err
	}

	logger.Info("fluxcap: starting",
		"version", fluxcap.Version,
		"logical", c.Resolution().Logical(),
		"physical", c.Resolution().Physical(),
		"scheme", settings.ColorScheme(),
	)

	start := time.Now()
	res, err := c.Run(sim.Factory(settings))
	if err != nil {
		return err
	}
	logger.Info("fluxcap: done",
		"path", res.Path,
		"backend", res.Backend,
		"steps", res.Steps,
		"last_elapsed_ms", fmt.Sprintf("%.3f", float64(res.LastElapsed)/float64(time.Millisecond)),
		"took", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func fail(logger *slog.Logger, err error) {
	logger.Error("fluxcap: failed", "err", err)
	os.Exit(1)
}
