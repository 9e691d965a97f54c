package report

import (
	"log/slog"

	"go.jacobcolvin.com/firstframe/extract"
)

var _ extract.Observer = (*LogObserver)(nil)

// LogObserver reports run progress as structured log records. It is used
// when no interactive terminal is available.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates a [LogObserver] writing to logger. A nil logger
// uses [slog.Default].
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogObserver{logger: logger}
}

// OnStart implements [extract.Observer].
func (o *LogObserver) OnStart(total int) {
	if total == 0 {
		o.logger.Warn("no video files found")

		return
	}

	o.logger.Info("extracting frames", slog.Int("total", total))
}

// OnFileDone implements [extract.Observer].
func (o *LogObserver) OnFileDone(index, total int, out extract.Outcome) {
	o.logger.Info("progress",
		slog.Int("done", index),
		slog.Int("total", total),
		slog.Int("percent", Percent(index, total)),
		slog.String("file", out.Video.Name),
		slog.String("state", out.State.String()),
	)
}

// OnFinish implements [extract.Observer].
func (o *LogObserver) OnFinish(s *extract.Summary) {
	o.logger.Info("processing complete",
		slog.Int("attempted", s.Attempted),
		slog.Int("succeeded", s.Succeeded),
		slog.Int("failed", s.Failed),
		slog.Duration("took", s.FinishedAt.Sub(s.StartedAt)),
	)
}

// Percent returns done/total as a whole percentage in [0, 100]. A zero total
// counts as complete.
func Percent(done, total int) int {
	if total <= 0 {
		return 100
	}

	p := done * 100 / total

	return min(max(p, 0), 100)
}
