package ffmpeg_test

import (
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/firstframe/frame/ffmpeg"
)

// fakePath resolves names present in found; install flips every name to
// found.
type fakePath struct {
	found map[string]bool
}

func (f *fakePath) lookPath(name string) (string, error) {
	if f.found[name] {
		return "/usr/bin/" + name, nil
	}

	return "", exec.ErrNotFound
}

func TestProvisionerEnsure(t *testing.T) {
	t.Parallel()

	t.Run("all present", func(t *testing.T) {
		t.Parallel()

		fp := &fakePath{found: map[string]bool{"ffmpeg": true, "ffprobe": true}}

		ready, err := ffmpeg.NewProvisioner(ffmpeg.WithLookPath(fp.lookPath)).Ensure(t.Context())
		require.NoError(t, err)
		assert.False(t, ready.Installed)
		assert.Equal(t, map[string]string{
			"ffmpeg":  "/usr/bin/ffmpeg",
			"ffprobe": "/usr/bin/ffprobe",
		}, ready.Paths)
	})

	t.Run("missing without install command", func(t *testing.T) {
		t.Parallel()

		fp := &fakePath{found: map[string]bool{"ffmpeg": true}}

		_, err := ffmpeg.NewProvisioner(ffmpeg.WithLookPath(fp.lookPath)).Ensure(t.Context())
		require.ErrorIs(t, err, ffmpeg.ErrDependencyUnavailable)
		assert.Contains(t, err.Error(), "ffprobe")
		assert.NotContains(t, err.Error(), "ffmpeg,")
	})

	t.Run("blank install command is not run", func(t *testing.T) {
		t.Parallel()

		fp := &fakePath{found: map[string]bool{}}

		_, err := ffmpeg.NewProvisioner(
			ffmpeg.WithLookPath(fp.lookPath),
			ffmpeg.WithInstallCommand(" \t  "),
		).Ensure(t.Context())
		require.ErrorIs(t, err, ffmpeg.ErrDependencyUnavailable)
		assert.Contains(t, err.Error(), "not found in PATH")
	})

	t.Run("install fails", func(t *testing.T) {
		t.Parallel()

		if runtime.GOOS == "windows" {
			t.Skip("requires the false utility")
		}

		fp := &fakePath{found: map[string]bool{}}

		_, err := ffmpeg.NewProvisioner(
			ffmpeg.WithLookPath(fp.lookPath),
			ffmpeg.WithInstallCommand("false"),
		).Ensure(t.Context())
		require.ErrorIs(t, err, ffmpeg.ErrDependencyUnavailable)
	})

	t.Run("install succeeds but binaries still missing", func(t *testing.T) {
		t.Parallel()

		if runtime.GOOS == "windows" {
			t.Skip("requires the true utility")
		}

		fp := &fakePath{found: map[string]bool{}}

		_, err := ffmpeg.NewProvisioner(
			ffmpeg.WithLookPath(fp.lookPath),
			ffmpeg.WithInstallCommand("true"),
		).Ensure(t.Context())
		require.ErrorIs(t, err, ffmpeg.ErrDependencyUnavailable)
		assert.Contains(t, err.Error(), "after install")
	})

	t.Run("install resolves binaries", func(t *testing.T) {
		t.Parallel()

		if runtime.GOOS == "windows" {
			t.Skip("requires the true utility")
		}

		calls := 0
		lookPath := func(name string) (string, error) {
			calls++
			// The first pass (two lookups) fails; the re-check succeeds.
			if calls <= 2 {
				return "", errors.New("not found")
			}

			return "/opt/bin/" + name, nil
		}

		ready, err := ffmpeg.NewProvisioner(
			ffmpeg.WithLookPath(lookPath),
			ffmpeg.WithInstallCommand("true"),
		).Ensure(t.Context())
		require.NoError(t, err)
		assert.True(t, ready.Installed)
		assert.Equal(t, "/opt/bin/ffprobe", ready.Paths["ffprobe"])
	})

	t.Run("custom binaries", func(t *testing.T) {
		t.Parallel()

		fp := &fakePath{found: map[string]bool{"avconv": true}}

		ready, err := ffmpeg.NewProvisioner(
			ffmpeg.WithLookPath(fp.lookPath),
			ffmpeg.WithBinaries("avconv"),
		).Ensure(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "/usr/bin/avconv", ready.Paths["avconv"])
	})
}
