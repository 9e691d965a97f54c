// Command firstframe saves the first frame of every video in a directory as a
// PNG image next to the video.
//
// # Usage
//
//	firstframe [flags] [directory]
//
// Without a directory argument, firstframe prompts for one on standard
// input. Each video <name>.<ext> produces <name>_first_frame.png. Videos
// that cannot be decoded or written are reported in the final summary and
// do not stop the run.
//
// ffmpeg and ffprobe must be in PATH. When --install-command is set, it is
// run once if either is missing.
//
// # Exit codes
//
//	0    the run completed, even if some videos failed
//	1    startup failed (invalid directory, missing ffmpeg, bad config)
//	130  the run was cancelled
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"
)

const (
	exitOK        = 0
	exitFatal     = 1
	exitCancelled = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	a.interactive = isTerminal(os.Stderr)

	code := a.execute(ctx, os.Args[1:])

	stop()
	os.Exit(code)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

// exitCode maps an execution error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitCancelled
	}

	return exitFatal
}

func (a *app) execute(ctx context.Context, args []string) int {
	cmd := a.command()
	cmd.SetArgs(args)
	cmd.SetIn(a.in)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(a.errOut, "firstframe: %v\n", err)
	}

	return exitCode(err)
}
