// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package imageio encodes images to files, choosing the format from the
// file extension.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/image/tiff"
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when the extension names no known encoder.
	ErrUnsupportedFormat = errors.New("imageio: unsupported format")
)

// JPEGQuality is the quality used for .jpg and .jpeg output.
const JPEGQuality = 95

// Encoder writes img to w.
type Encoder func(w io.Writer, img image.Image) error

func tiffEncoder(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// EncoderFor returns the encoder for path's extension (case-insensitive).
// Supported: .png, .jpg, .jpeg, .bmp, .tif, .tiff.
func EncoderFor(path string) (Encoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png":
		return Encoder(imgio.PNGEncoder()), nil
	case ".jpg", ".jpeg":
		return Encoder(imgio.JPEGEncoder(JPEGQuality)), nil
	case ".bmp":
		return Encoder(imgio.BMPEncoder()), nil
	case ".tif", ".tiff":
		return tiffEncoder, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Save encodes img to path. The image is written to a temporary file in
// the same directory and renamed into place, so path holds either the old
// content or the complete new image. The parent directory must exist.
func Save(path string, img image.Image) error {
	enc, err := EncoderFor(path)
	if err != nil {
		return err
	}

	path = filepath.Clean(path)
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("imageio: create file: %w", err)
	}
	tmp := f.Name()

	if err := enc(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("imageio: encode %s: %w", filepath.Ext(path), err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("imageio: close file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("imageio: rename: %w", err)
	}
	return nil
}

// Load decodes the image at path using bild's registered decoders.
func Load(path string) (image.Image, error) {
	img, err := imgio.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("imageio: open: %w", err)
	}
	return img, nil
}
