package extract

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"go.jacobcolvin.com/firstframe/discover"
	"go.jacobcolvin.com/firstframe/frame"
)

// Per-file failure causes. They never abort a run.
var (
	// ErrDecodeOpen indicates the video could not be opened: unreadable,
	// empty, corrupt, or an unsupported container or codec.
	ErrDecodeOpen = errors.New("cannot open video")
	// ErrNoFrame indicates the video opened but yielded no frame.
	ErrNoFrame = errors.New("no frame in video")
	// ErrWrite indicates the frame could not be encoded or written.
	ErrWrite = errors.New("cannot write frame")
)

// Kind names a per-file failure cause.
type Kind string

const (
	KindDecodeOpen Kind = "decode_open"
	KindNoFrame    Kind = "no_frame"
	KindWrite      Kind = "write"
)

// KindOf returns the [Kind] of a per-file error, or "" for nil. Errors that
// match none of the sentinels are reported as [KindDecodeOpen].
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrWrite):
		return KindWrite
	case errors.Is(err, ErrNoFrame):
		return KindNoFrame
	}

	return KindDecodeOpen
}

// Source is an enumerable set of videos, such as a [*discover.Dir].
type Source interface {
	Path() string
	Count() (int, error)
	Videos() iter.Seq2[discover.Video, error]
}

// Extractor writes the first frame of each video as a sibling PNG file.
//
// Create instances with [New].
type Extractor struct {
	dec frame.Decoder
	enc frame.Encoder
	now func() time.Time
}

// Option configures an [Extractor].
type Option func(*Extractor)

// WithClock replaces [time.Now] for run timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// New creates an [Extractor] using dec to read frames and enc to write them.
func New(dec frame.Decoder, enc frame.Encoder, opts ...Option) *Extractor {
	e := &Extractor{
		dec: dec,
		enc: enc,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run processes every video in src, one at a time, and returns the
// resulting [Summary]. Per-file failures are recorded, not returned.
//
// Run returns an error, and no summary, only if src cannot be enumerated or
// ctx is done before the run completes.
func (e *Extractor) Run(ctx context.Context, src Source, obs Observer) (*Summary, error) {
	if obs == nil {
		obs = NopObserver{}
	}

	total, err := src.Count()
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}

	slog.Info("found videos", slog.String("dir", src.Path()), slog.Int("count", total))

	s := &Summary{Dir: src.Path(), StartedAt: e.now()}

	obs.OnStart(total)

	index := 0

	for v, err := range src.Videos() {
		if err != nil {
			return nil, fmt.Errorf("listing videos: %w", err)
		}

		err = ctx.Err()
		if err != nil {
			return nil, err
		}

		index++

		o := e.Process(ctx, v)
		s.Record(o)

		obs.OnFileDone(index, max(total, index), o)
	}

	err = ctx.Err()
	if err != nil {
		return nil, err
	}

	s.FinishedAt = e.now()

	obs.OnFinish(s)

	return s, nil
}

// Process extracts the first frame of v to [discover.Video.OutputPath]. The
// decoder handle is closed before Process returns.
func (e *Extractor) Process(ctx context.Context, v discover.Video) Outcome {
	start := e.now()

	o := e.process(ctx, v)
	o.Duration = e.now().Sub(start)

	if o.Err != nil {
		slog.Error("extraction failed",
			slog.String("path", v.Path),
			slog.String("kind", string(o.Kind())),
			slog.Any("error", o.Err),
		)
	} else {
		slog.Info("extracted frame",
			slog.String("path", v.Path),
			slog.String("output", o.Output),
			slog.Duration("took", o.Duration),
		)
	}

	return o
}

func (e *Extractor) process(ctx context.Context, v discover.Video) Outcome {
	o := Outcome{Video: v, State: StateDiscovered}

	advance(&o, StateOpening)

	h, err := e.dec.Open(ctx, v.Path)
	if err != nil {
		return failed(o, classify(err, ErrDecodeOpen))
	}

	defer func() {
		closeErr := h.Close()
		if closeErr != nil {
			slog.Warn("closing decoder",
				slog.String("path", v.Path),
				slog.Any("error", closeErr),
			)
		}
	}()

	img, err := h.ReadFirstFrame(ctx)
	if err != nil {
		return failed(o, classify(err, ErrNoFrame))
	}

	if img == nil || img.Bounds().Empty() {
		return failed(o, fmt.Errorf("%w: %s: empty image", ErrNoFrame, v.Path))
	}

	o.Frame = img
	advance(&o, StateFrameRead)
	advance(&o, StateWriting)

	out := v.OutputPath()

	err = e.enc.WritePNG(img, out)
	if err != nil {
		return failed(o, fmt.Errorf("%w: %s: %w", ErrWrite, out, err))
	}

	o.Output = out
	advance(&o, StateSucceeded)

	return o
}

// classify wraps a decoder error in the matching sentinel, using fallback
// when the decoder did not say.
func classify(err error, fallback error) error {
	switch {
	case errors.Is(err, frame.ErrNoFrame):
		return fmt.Errorf("%w: %w", ErrNoFrame, err)
	case errors.Is(err, frame.ErrOpen):
		return fmt.Errorf("%w: %w", ErrDecodeOpen, err)
	}

	return fmt.Errorf("%w: %w", fallback, err)
}

func advance(o *Outcome, to State) {
	slog.Debug("state transition",
		slog.String("path", o.Video.Path),
		slog.String("from", o.State.String()),
		slog.String("to", to.String()),
	)

	o.State = to
}

func failed(o Outcome, err error) Outcome {
	advance(&o, StateFailed)
	o.Err = err

	return o
}
