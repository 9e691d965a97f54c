// Package frametest provides in-memory [frame.Decoder] and [frame.Encoder]
// implementations for tests.
package frametest

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"go.jacobcolvin.com/firstframe/frame"
)

// Video describes how [Decoder] treats one file, keyed by base name.
type Video struct {
	// Frame is returned by ReadFirstFrame. A nil Frame with a nil OpenErr
	// means the stream is empty.
	Frame image.Image
	// OpenErr, when set, is returned (wrapped in [frame.ErrOpen]) by Open.
	OpenErr error
}

// Solid returns a w x h image filled with c.
func Solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}

	return img
}

// Decoder is a [frame.Decoder] backed by a map of base names to [Video]s.
// Unknown names fail to open. It tracks open handles so tests can assert
// every handle was closed.
type Decoder struct {
	Videos map[string]Video

	mu     sync.Mutex
	opened int
	closed int
}

// Open implements [frame.Decoder].
func (d *Decoder) Open(_ context.Context, path string) (frame.Handle, error) {
	v, ok := d.Videos[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s: unknown video", frame.ErrOpen, path)
	}

	if v.OpenErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", frame.ErrOpen, path, v.OpenErr)
	}

	d.mu.Lock()
	d.opened++
	d.mu.Unlock()

	return &handle{d: d, v: v, path: path}, nil
}

// Unclosed returns the number of handles opened and not yet closed.
func (d *Decoder) Unclosed() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.opened - d.closed
}

type handle struct {
	d    *Decoder
	v    Video
	path string
}

func (h *handle) ReadFirstFrame(_ context.Context) (*image.RGBA, error) {
	if h.v.Frame == nil {
		return nil, fmt.Errorf("%w: %s", frame.ErrNoFrame, h.path)
	}

	return frame.ToRGBA(h.v.Frame), nil
}

func (h *handle) Close() error {
	h.d.mu.Lock()
	h.d.closed++
	h.d.mu.Unlock()

	return nil
}

// Encoder is a [frame.Encoder] that records written images. When Err is set,
// WritePNG fails without touching the filesystem.
type Encoder struct {
	Err error

	mu      sync.Mutex
	Written map[string]image.Image
}

// WritePNG implements [frame.Encoder]. It writes a placeholder file at path so
// tests can observe the output on disk.
func (e *Encoder) WritePNG(img image.Image, path string) error {
	if e.Err != nil {
		return e.Err
	}

	err := os.WriteFile(path, []byte("png"), 0o644)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Written == nil {
		e.Written = map[string]image.Image{}
	}

	e.Written[path] = img

	return nil
}
