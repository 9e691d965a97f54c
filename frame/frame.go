// Package frame defines the decoding and encoding collaborators used to turn
// the first frame of a video into a still image.
//
// Adapters live in subpackages: [go.jacobcolvin.com/firstframe/frame/ffmpeg]
// decodes through the ffmpeg command line tools, and
// [go.jacobcolvin.com/firstframe/frame/pngfile] writes PNG files.
package frame

import (
	"context"
	"errors"
	"image"

	"golang.org/x/image/draw"
)

var (
	// ErrOpen indicates a video could not be opened for decoding.
	ErrOpen = errors.New("open video")
	// ErrNoFrame indicates an opened video yielded no frames.
	ErrNoFrame = errors.New("no frame")
)

// Decoder opens videos for decoding.
type Decoder interface {
	// Open prepares the video at path for decoding. Failures should wrap
	// [ErrOpen].
	Open(ctx context.Context, path string) (Handle, error)
}

// Handle is an opened video. Callers must call Close exactly once.
type Handle interface {
	// ReadFirstFrame decodes the first frame of the video stream without
	// seeking. Streams without frames should yield an error wrapping
	// [ErrNoFrame].
	ReadFirstFrame(ctx context.Context) (*image.RGBA, error)
	// Close releases any decoder resources.
	Close() error
}

// Encoder writes raster images to disk.
type Encoder interface {
	// WritePNG encodes img as PNG at path. On failure no partial file may be
	// left at path.
	WritePNG(img image.Image, path string) error
}

// ToRGBA returns img as an [*image.RGBA] with its origin at (0, 0). RGBA
// images already at the origin are returned unchanged.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()

	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}

	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	return dst
}
