package discover

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// OutputSuffix is appended to a video's stem to name its extracted frame.
const OutputSuffix = "_first_frame.png"

// ErrInvalidPath indicates the target path is missing, is not a directory, or
// cannot be read or written.
var ErrInvalidPath = errors.New("invalid path")

// Extensions is the allow-list of recognized video file suffixes, lower-cased
// and including the leading dot.
var Extensions = []string{".mp4", ".avi", ".mov", ".mkv", ".wmv", ".flv"}

// Video references one candidate video file.
type Video struct {
	// Path is the file path, joined onto the [Dir] path.
	Path string
	// Name is the base name of the file.
	Name string
	// Stem is Name without its final extension, preserved exactly.
	Stem string
	// Ext is the lower-cased extension, including the leading dot.
	Ext string
}

// OutputPath returns the path of the PNG frame extracted from v.
func (v Video) OutputPath() string {
	return filepath.Join(filepath.Dir(v.Path), v.Stem+OutputSuffix)
}

// NewVideo builds a [Video] for path. It does not touch the filesystem.
func NewVideo(path string) Video {
	name := filepath.Base(path)
	ext := filepath.Ext(name)

	return Video{
		Path: path,
		Name: name,
		Stem: strings.TrimSuffix(name, ext),
		Ext:  strings.ToLower(ext),
	}
}

// IsVideo reports whether name carries an allow-listed extension, ignoring
// case.
func IsVideo(name string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(name)))
}

// OutputPath returns the frame output path for the video at path.
func OutputPath(path string) string {
	return NewVideo(path).OutputPath()
}

// Dir is a validated target directory.
//
// Create instances with [Open].
type Dir struct {
	path string
}

// Open validates that path exists and is a directory that can be both read
// and written, since frames are saved next to their videos. Any failure wraps
// [ErrInvalidPath].
func Open(path string) (*Dir, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidPath, path)
	}

	f, err := os.Open(path) //nolint:gosec // Path is the user-selected target directory.
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}

	_, err = f.Readdirnames(1)

	closeErr := f.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrInvalidPath, path, err)
	}

	if closeErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPath, closeErr)
	}

	err = checkWritable(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not writable: %w", ErrInvalidPath, path, err)
	}

	return &Dir{path: path}, nil
}

// checkWritable creates and removes a hidden scratch file in dir.
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".firstframe-*")
	if err != nil {
		return err //nolint:wrapcheck // Wrapped by Open.
	}

	name := f.Name()

	return errors.Join(f.Close(), os.Remove(name))
}

// Path returns the cleaned directory path.
func (d *Dir) Path() string {
	return d.path
}

// Videos returns a sequence of the allow-listed files in the directory, in
// file name order. Directories are skipped regardless of their name.
//
// The sequence is lazy and can be ranged over more than once; each iteration
// re-reads the directory. A read error is yielded once and ends the sequence.
func (d *Dir) Videos() iter.Seq2[Video, error] {
	return func(yield func(Video, error) bool) {
		entries, err := os.ReadDir(d.path)
		if err != nil {
			yield(Video{}, fmt.Errorf("reading %s: %w", d.path, err))

			return
		}

		for _, e := range entries {
			if e.IsDir() || !IsVideo(e.Name()) {
				continue
			}

			if !yield(NewVideo(filepath.Join(d.path, e.Name())), nil) {
				return
			}
		}
	}
}

// Count enumerates the directory once and returns the number of candidates.
func (d *Dir) Count() (int, error) {
	n := 0

	for _, err := range d.Videos() {
		if err != nil {
			return 0, err
		}

		n++
	}

	return n, nil
}
