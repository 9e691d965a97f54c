// Package log builds [log/slog] handlers from CLI flags.
//
// Three formats are supported: [FormatText] (colorized lines via
// [charm.land/log/v2]), [FormatJSON], and [FormatLogfmt]. Register the flags
// on a command and build the handler once at startup:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
//
// A [Tail] keeps the most recent lines written to it, which lets a terminal UI
// show log output beneath its own rendering:
//
//	tail := log.NewTail(5)
//	slog.SetDefault(slog.New(log.NewHandler(tail, log.LevelInfo, log.FormatText)))
//	// later, in View:
//	lines := tail.Lines()
package log
