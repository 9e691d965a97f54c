package extract

import (
	"image"
	"time"

	"go.jacobcolvin.com/firstframe/discover"
)

// State is a position in the per-file extraction lifecycle:
//
//	Discovered -> Opening -> FrameRead -> Writing -> Succeeded
//	                 \            \           \
//	                  `------------`-----------`--> Failed
//
// No transition returns to an earlier state.
type State int

const (
	StateDiscovered State = iota
	StateOpening
	StateFrameRead
	StateWriting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateOpening:
		return "opening"
	case StateFrameRead:
		return "frame_read"
	case StateWriting:
		return "writing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}

	return "unknown"
}

// Terminal reports whether s ends the lifecycle.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Outcome is the terminal result of processing one video.
type Outcome struct {
	// Err is nil when State is [StateSucceeded].
	Err error
	// Frame is the decoded first frame, set once read. It is not retained
	// by [Summary].
	Frame *image.RGBA
	// Output is the written image path, set on success.
	Output   string
	Video    discover.Video
	State    State
	Duration time.Duration
}

// Kind returns the failure kind, or "" on success.
func (o Outcome) Kind() Kind {
	return KindOf(o.Err)
}

// Failure records one failed video in a [Summary].
type Failure struct {
	Path   string `json:"path"   yaml:"path"`
	Kind   Kind   `json:"kind"   yaml:"kind"`
	Reason string `json:"reason" yaml:"reason"`
}

// Extracted records one written image in a [Summary].
type Extracted struct {
	Path   string `json:"path"   yaml:"path"`
	Output string `json:"output" yaml:"output"`
}

// Summary accumulates outcomes for a run. Every processed video is counted
// exactly once, in Succeeded or Failed.
type Summary struct {
	StartedAt  time.Time   `json:"started_at"  yaml:"started_at"`
	FinishedAt time.Time   `json:"finished_at" yaml:"finished_at"`
	Dir        string      `json:"dir"         yaml:"dir"`
	Extracted  []Extracted `json:"extracted"   yaml:"extracted"`
	Failures   []Failure   `json:"failures"    yaml:"failures"`
	Attempted  int         `json:"attempted"   yaml:"attempted"`
	Succeeded  int         `json:"succeeded"   yaml:"succeeded"`
	Failed     int         `json:"failed"      yaml:"failed"`
}

// Record adds a terminal outcome to the summary.
func (s *Summary) Record(o Outcome) {
	s.Attempted++

	if o.Err == nil {
		s.Succeeded++
		s.Extracted = append(s.Extracted, Extracted{Path: o.Video.Path, Output: o.Output})

		return
	}

	s.Failed++
	s.Failures = append(s.Failures, Failure{
		Path:   o.Video.Path,
		Kind:   o.Kind(),
		Reason: o.Err.Error(),
	})
}

// Observer receives run events. Calls are made from the goroutine running
// [Extractor.Run], in order.
type Observer interface {
	// OnStart is called once with the number of discovered videos.
	OnStart(total int)
	// OnFileDone is called after each video reaches a terminal state. Index
	// counts from 1.
	OnFileDone(index, total int, o Outcome)
	// OnFinish is called once with the final summary.
	OnFinish(s *Summary)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) OnStart(int) {}

func (NopObserver) OnFileDone(int, int, Outcome) {}

func (NopObserver) OnFinish(*Summary) {}
