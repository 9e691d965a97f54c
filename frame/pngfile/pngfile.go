// Package pngfile writes images to disk as PNG files without ever leaving a
// truncated file at the destination.
package pngfile

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"slices"
	"strings"

	"github.com/disintegration/imaging"

	"go.jacobcolvin.com/firstframe/atomicfile"
	"go.jacobcolvin.com/firstframe/frame"
)

var _ frame.Encoder = (*Encoder)(nil)

// ErrUnknownCompression indicates an unrecognized compression level name.
var ErrUnknownCompression = errors.New("unknown compression level")

var compressionLevels = map[string]png.CompressionLevel{
	"default": png.DefaultCompression,
	"none":    png.NoCompression,
	"speed":   png.BestSpeed,
	"best":    png.BestCompression,
}

// ParseCompression maps a level name (default, none, speed, best) to a
// [png.CompressionLevel].
func ParseCompression(name string) (png.CompressionLevel, error) {
	level, ok := compressionLevels[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}

	return level, nil
}

// CompressionNames returns the accepted level names, sorted.
func CompressionNames() []string {
	names := make([]string, 0, len(compressionLevels))
	for name := range compressionLevels {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Encoder is a [frame.Encoder] producing PNG files.
//
// Create instances with [New].
type Encoder struct {
	level png.CompressionLevel
}

// Option configures an [Encoder].
type Option func(*Encoder)

// WithCompression sets the PNG compression level.
func WithCompression(level png.CompressionLevel) Option {
	return func(e *Encoder) {
		e.level = level
	}
}

// New creates an [Encoder] with the given options.
func New(opts ...Option) *Encoder {
	e := &Encoder{level: png.DefaultCompression}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// WritePNG encodes img into a hidden temporary file next to path, then
// renames it over path. On failure path is left as it was.
func (e *Encoder) WritePNG(img image.Image, path string) error {
	return atomicfile.Write(path, func(w io.Writer) error {
		err := imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(e.level))
		if err != nil {
			return fmt.Errorf("encoding png: %w", err)
		}

		return nil
	})
}
