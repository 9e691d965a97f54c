// Package ffmpeg decodes the first frame of a video using the ffmpeg command
// line tools.
//
// [Decoder.Open] probes a file with ffprobe and remembers its first video
// stream. The returned handle's ReadFirstFrame runs ffmpeg with a single
// output frame in raw RGBA and reads it straight from the pipe, so no
// intermediate image file is written.
//
// Both executables must be on PATH. Call [Provisioner.Ensure] once at startup
// to check for them, optionally running an install command:
//
//	ready, err := ffmpeg.NewProvisioner(
//	    ffmpeg.WithInstallCommand("apt-get install -y ffmpeg"),
//	).Ensure(ctx)
//	if err != nil {
//	    // errors.Is(err, ffmpeg.ErrDependencyUnavailable)
//	}
//
//	dec := ffmpeg.New(
//	    ffmpeg.WithBinary(ready.Paths["ffmpeg"]),
//	    ffmpeg.WithProbeBinary(ready.Paths["ffprobe"]),
//	)
package ffmpeg
