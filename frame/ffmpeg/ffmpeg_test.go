package ffmpeg_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/firstframe/frame"
	"go.jacobcolvin.com/firstframe/frame/ffmpeg"
)

func requireFFmpeg(t *testing.T) {
	t.Helper()

	for _, name := range ffmpeg.Binaries {
		_, err := exec.LookPath(name)
		if err != nil {
			t.Skipf("%s not found in PATH", name)
		}
	}
}

// render runs ffmpeg with a lavfi source to produce a test file.
func render(t *testing.T, path string, args ...string) {
	t.Helper()

	full := append([]string{"-hide_banner", "-loglevel", "error", "-nostdin", "-y"}, args...)
	full = append(full, path)

	out, err := exec.CommandContext(t.Context(), "ffmpeg", full...).CombinedOutput()
	require.NoError(t, err, string(out))
}

func TestDecoder(t *testing.T) {
	t.Parallel()
	requireFFmpeg(t)

	dir := t.TempDir()

	valid := filepath.Join(dir, "a.mp4")
	render(t, valid, "-f", "lavfi", "-i", "testsrc=size=64x48:rate=10", "-frames:v", "10", "-pix_fmt", "yuv420p")

	audio := filepath.Join(dir, "song.mp4")
	render(t, audio, "-f", "lavfi", "-i", "sine=frequency=440:duration=1", "-c:a", "aac")

	corrupt := filepath.Join(dir, "b.avi")
	require.NoError(t, os.WriteFile(corrupt, []byte("definitely not an avi container"), 0o644))

	empty := filepath.Join(dir, "empty.mkv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	dec := ffmpeg.New()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		h, err := dec.Open(t.Context(), valid)
		require.NoError(t, err)

		defer func() { require.NoError(t, h.Close()) }()

		img, err := h.ReadFirstFrame(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 64, img.Bounds().Dx())
		assert.Equal(t, 48, img.Bounds().Dy())
		assert.Len(t, img.Pix, 64*48*4)
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		read := func() []byte {
			h, err := dec.Open(t.Context(), valid)
			require.NoError(t, err)

			defer func() { require.NoError(t, h.Close()) }()

			img, err := h.ReadFirstFrame(t.Context())
			require.NoError(t, err)

			return img.Pix
		}

		assert.Equal(t, read(), read())
	})

	t.Run("audio only", func(t *testing.T) {
		t.Parallel()

		h, err := dec.Open(t.Context(), audio)
		require.NoError(t, err)

		defer func() { require.NoError(t, h.Close()) }()

		_, err = h.ReadFirstFrame(t.Context())
		require.ErrorIs(t, err, frame.ErrNoFrame)
	})

	t.Run("corrupt", func(t *testing.T) {
		t.Parallel()

		_, err := dec.Open(t.Context(), corrupt)
		require.ErrorIs(t, err, frame.ErrOpen)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		_, err := dec.Open(t.Context(), empty)
		require.ErrorIs(t, err, frame.ErrOpen)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		_, err := dec.Open(t.Context(), filepath.Join(dir, "missing.mov"))
		require.ErrorIs(t, err, frame.ErrOpen)
	})
}

func TestDecoderRotated(t *testing.T) {
	t.Parallel()
	requireFFmpeg(t)

	dir := t.TempDir()

	plain := filepath.Join(dir, "plain.mp4")
	render(t, plain, "-f", "lavfi", "-i", "testsrc=size=64x48:rate=10", "-frames:v", "5", "-pix_fmt", "yuv420p")

	// -display_rotation needs ffmpeg 6 or newer.
	rotated := filepath.Join(dir, "rotated.mp4")

	out, err := exec.CommandContext(t.Context(), "ffmpeg",
		"-hide_banner", "-loglevel", "error", "-nostdin", "-y",
		"-display_rotation", "90", "-i", plain, "-c", "copy", rotated,
	).CombinedOutput()
	if err != nil {
		t.Skipf("ffmpeg cannot tag display rotation: %s", out)
	}

	h, err := ffmpeg.New().Open(t.Context(), rotated)
	require.NoError(t, err)

	defer func() { require.NoError(t, h.Close()) }()

	img, err := h.ReadFirstFrame(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 48, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
}

//nolint:paralleltest // Executing a freshly written script races with concurrent forks (ETXTBSY).
func TestDecoderOpenCancel(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()

	slow := filepath.Join(dir, "ffprobe")
	require.NoError(t, os.WriteFile(slow, []byte("#!/bin/sh\nexec sleep 60\n"), 0o755))

	video := filepath.Join(dir, "a.mp4")
	require.NoError(t, os.WriteFile(video, []byte("not empty"), 0o644))

	dec := ffmpeg.New(ffmpeg.WithProbeBinary(slow), ffmpeg.WithProbeTimeout(time.Minute))

	ctx, cancel := context.WithCancel(t.Context())
	time.AfterFunc(100*time.Millisecond, cancel)

	start := time.Now()

	_, err := dec.Open(ctx, video)
	require.ErrorIs(t, err, frame.ErrOpen)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Second)
}

//nolint:paralleltest // Executing a freshly written script races with concurrent forks (ETXTBSY).
func TestDecoderOpenTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()

	slow := filepath.Join(dir, "ffprobe")
	require.NoError(t, os.WriteFile(slow, []byte("#!/bin/sh\nexec sleep 60\n"), 0o755))

	video := filepath.Join(dir, "a.mp4")
	require.NoError(t, os.WriteFile(video, []byte("not empty"), 0o644))

	dec := ffmpeg.New(ffmpeg.WithProbeBinary(slow), ffmpeg.WithProbeTimeout(100*time.Millisecond))

	_, err := dec.Open(t.Context(), video)
	require.ErrorIs(t, err, frame.ErrOpen)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
