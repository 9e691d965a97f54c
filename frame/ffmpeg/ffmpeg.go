package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"go.jacobcolvin.com/firstframe/frame"
)

// DefaultProbeTimeout bounds how long ffprobe may inspect a single file.
const DefaultProbeTimeout = 30 * time.Second

var _ frame.Decoder = (*Decoder)(nil)

// Decoder is a [frame.Decoder] that probes videos with ffprobe and decodes
// the first frame with ffmpeg.
//
// Create instances with [New].
type Decoder struct {
	bin          string
	probeBin     string
	probeTimeout time.Duration
}

// Option configures a [Decoder].
type Option func(*Decoder)

// WithProbeTimeout sets the ffprobe timeout. Values less than or equal to
// zero disable the timeout.
func WithProbeTimeout(d time.Duration) Option {
	return func(dec *Decoder) {
		dec.probeTimeout = d
	}
}

// WithBinary sets the ffmpeg executable used for decoding. It defaults to
// "ffmpeg" resolved through PATH.
func WithBinary(path string) Option {
	return func(dec *Decoder) {
		dec.bin = path
	}
}

// WithProbeBinary sets the ffprobe executable used to inspect files. It
// defaults to "ffprobe" resolved through PATH.
func WithProbeBinary(path string) Option {
	return func(dec *Decoder) {
		dec.probeBin = path
	}
}

// New creates a [Decoder] with the given options.
func New(opts ...Option) *Decoder {
	d := &Decoder{
		bin:          "ffmpeg",
		probeBin:     "ffprobe",
		probeTimeout: DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Open probes the file at path. Unreadable, empty, or undecodable files fail
// with an error wrapping [frame.ErrOpen]. A container without a video stream
// opens successfully but yields [frame.ErrNoFrame] on read.
func (d *Decoder) Open(ctx context.Context, path string) (frame.Handle, error) {
	err := ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", frame.ErrOpen, path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", frame.ErrOpen, err)
	}

	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s: empty file", frame.ErrOpen, path)
	}

	out, err := d.probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: ffprobe: %w", frame.ErrOpen, path, err)
	}

	p, err := parseProbe(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", frame.ErrOpen, path, err)
	}

	h := &handle{bin: d.bin, path: path}

	if s, ok := p.firstVideo(); ok {
		h.video = &s

		slog.Debug("probed video",
			slog.String("path", path),
			slog.String("format", p.Format.FormatName),
			slog.String("codec", s.CodecName),
			slog.Int("width", s.Width),
			slog.Int("height", s.Height),
			slog.Int("rotation", s.rotation()),
		)
	}

	return h, nil
}

// probe runs ffprobe bound to both ctx and the probe timeout.
func (d *Decoder) probe(ctx context.Context, path string) ([]byte, error) {
	if d.probeTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, d.probeTimeout)
		defer cancel()
	}

	//nolint:gosec // Arguments are built from the video path.
	cmd := exec.CommandContext(ctx, d.probeBin, probeArgs(path)...)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if line := lastLine(stderr.String()); line != "" {
			return nil, fmt.Errorf("%s: %w", line, err)
		}

		return nil, err
	}

	return stdout.Bytes(), nil
}

// handle owns at most one running ffmpeg process.
type handle struct {
	video  *probeStream
	cmd    *exec.Cmd
	cancel context.CancelFunc
	bin    string
	path   string
}

// ReadFirstFrame runs ffmpeg to decode a single frame as raw RGBA at the
// probed display dimensions, and reads exactly one frame from its stdout.
func (h *handle) ReadFirstFrame(ctx context.Context) (*image.RGBA, error) {
	if h.video == nil {
		return nil, fmt.Errorf("%w: %s: no video stream", frame.ErrNoFrame, h.path)
	}

	w, ht := h.video.displaySize()
	if w <= 0 || ht <= 0 {
		return nil, fmt.Errorf("%w: %s: invalid dimensions %dx%d", frame.ErrNoFrame, h.path, w, ht)
	}

	ctx, cancel := context.WithCancel(ctx)

	//nolint:gosec // Arguments are built from the probed video path.
	cmd := exec.CommandContext(ctx, h.bin, frameArgs(h.path, w, ht)...)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()

		return nil, fmt.Errorf("%w: %s: creating stdout pipe: %w", frame.ErrOpen, h.path, err)
	}

	err = cmd.Start()
	if err != nil {
		cancel()

		return nil, fmt.Errorf("%w: %s: starting ffmpeg: %w", frame.ErrOpen, h.path, err)
	}

	h.cmd = cmd
	h.cancel = cancel

	buf := make([]byte, w*ht*4)

	_, err = io.ReadFull(stdout, buf)

	waitErr := h.stop()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", frame.ErrNoFrame, h.path, describe(err, waitErr, &stderr))
	}

	return &image.RGBA{
		Pix:    buf,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, ht),
	}, nil
}

// Close stops ffmpeg if it is still running.
func (h *handle) Close() error {
	h.stop() //nolint:errcheck // Exit status after a kill carries no information.

	return nil
}

func (h *handle) stop() error {
	if h.cmd == nil {
		return nil
	}

	h.cancel()
	err := h.cmd.Wait()

	h.cmd = nil
	h.cancel = nil

	return err
}

// inputPath forces ffmpeg and ffprobe to treat path as a local file, so names
// like "-x.mp4" or "a:b.mp4" are not read as options or protocols.
func inputPath(path string) string {
	return "file:" + path
}

// probeArgs builds the ffprobe arguments that describe path as JSON.
func probeArgs(path string) []string {
	args := ffmpeg.ConvertKwargsToCmdLineArgs(ffmpeg.KwArgs{
		"v":            "error",
		"show_format":  "",
		"show_streams": "",
		"of":           "json",
	})

	return append(args, inputPath(path))
}

// frameArgs builds the ffmpeg arguments that write the first frame of path to
// stdout as w x h raw RGBA. ffmpeg applies display rotation itself; the frame
// is fitted inside w x h and padded so the aspect ratio is never stretched.
func frameArgs(path string, w, h int) []string {
	size := fmt.Sprintf("%d:%d", w, h)

	return ffmpeg.Input(inputPath(path), ffmpeg.KwArgs{
		"hide_banner": "",
		"loglevel":    "error",
		"nostdin":     "",
	}).
		Filter("scale", ffmpeg.Args{size}, ffmpeg.KwArgs{"force_original_aspect_ratio": "decrease"}).
		Filter("pad", ffmpeg.Args{size + ":(ow-iw)/2:(oh-ih)/2"}).
		Output("pipe:1", ffmpeg.KwArgs{
			"frames:v": 1,
			"f":        "rawvideo",
			"pix_fmt":  "rgba",
		}).
		GetArgs()
}

// describe picks the most useful explanation for a failed frame read.
func describe(readErr, waitErr error, stderr *bytes.Buffer) string {
	if line := lastLine(stderr.String()); line != "" {
		return line
	}

	if waitErr != nil {
		return waitErr.Error()
	}

	if readErr == io.EOF {
		return "stream ended before the first frame"
	}

	return readErr.Error()
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")

	return strings.TrimSpace(lines[len(lines)-1])
}

type probeResult struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type probeStream struct {
	Tags         streamTags `json:"tags"`
	CodecType    string     `json:"codec_type"`
	CodecName    string     `json:"codec_name"`
	SideDataList []sideData `json:"side_data_list"`
	Index        int        `json:"index"`
	Width        int        `json:"width"`
	Height       int        `json:"height"`
}

type streamTags struct {
	Rotate string `json:"rotate"`
}

type sideData struct {
	Rotation float64 `json:"rotation"`
}

// rotation returns the stream's display rotation in degrees, normalized to
// [0, 360). The display matrix side data takes precedence over the legacy
// rotate tag.
func (s probeStream) rotation() int {
	deg := 0.0

	for _, sd := range s.SideDataList {
		if sd.Rotation != 0 {
			deg = sd.Rotation

			break
		}
	}

	if deg == 0 && s.Tags.Rotate != "" {
		var tag float64

		_, err := fmt.Sscan(s.Tags.Rotate, &tag)
		if err == nil {
			deg = tag
		}
	}

	r := int(math.Round(deg)) % 360
	if r < 0 {
		r += 360
	}

	return r
}

// displaySize returns the frame size after ffmpeg applies the display
// rotation. Quarter turns swap width and height.
func (s probeStream) displaySize() (int, int) {
	switch s.rotation() {
	case 90, 270:
		return s.Height, s.Width
	default:
		return s.Width, s.Height
	}
}

func parseProbe(data []byte) (*probeResult, error) {
	var p probeResult

	err := json.Unmarshal(data, &p)
	if err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	return &p, nil
}

// firstVideo returns the lowest-indexed video stream.
func (p *probeResult) firstVideo() (probeStream, bool) {
	var (
		best  probeStream
		found bool
	)

	for _, s := range p.Streams {
		if s.CodecType != "video" {
			continue
		}

		if !found || s.Index < best.Index {
			best = s
			found = true
		}
	}

	return best, found
}
