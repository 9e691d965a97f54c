package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/firstframe/config"
	"go.jacobcolvin.com/firstframe/discover"
	"go.jacobcolvin.com/firstframe/extract"
	"go.jacobcolvin.com/firstframe/frame"
	"go.jacobcolvin.com/firstframe/frame/ffmpeg"
	"go.jacobcolvin.com/firstframe/frame/pngfile"
	"go.jacobcolvin.com/firstframe/log"
	"go.jacobcolvin.com/firstframe/profile"
	"go.jacobcolvin.com/firstframe/report"
	"go.jacobcolvin.com/firstframe/version"
)

const promptText = "Please enter the directory path containing video files: "

// app holds the command's configuration and collaborators. Tests replace
// provision and newDecoder to run without ffmpeg.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg     *config.Config
	logCfg  *log.Config
	profCfg *profile.Config

	provision  func(ctx context.Context, installCommand string) (ffmpeg.Readiness, error)
	newDecoder func(r ffmpeg.Readiness, probeTimeout time.Duration) frame.Decoder

	// interactive selects the full-screen progress view.
	interactive bool
	noTUI       bool
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		in:      in,
		out:     out,
		errOut:  errOut,
		cfg:     config.NewConfig(),
		logCfg:  log.NewConfig(),
		profCfg: profile.NewConfig(),
		provision: func(ctx context.Context, installCommand string) (ffmpeg.Readiness, error) {
			return ffmpeg.NewProvisioner(ffmpeg.WithInstallCommand(installCommand)).Ensure(ctx)
		},
		newDecoder: func(r ffmpeg.Readiness, probeTimeout time.Duration) frame.Decoder {
			opts := []ffmpeg.Option{ffmpeg.WithProbeTimeout(probeTimeout)}
			if bin, ok := r.Paths["ffmpeg"]; ok {
				opts = append(opts, ffmpeg.WithBinary(bin))
			}

			if bin, ok := r.Paths["ffprobe"]; ok {
				opts = append(opts, ffmpeg.WithProbeBinary(bin))
			}

			return ffmpeg.New(opts...)
		},
	}
}

func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firstframe [flags] [directory]",
		Short: "Save the first frame of every video in a directory as a PNG",
		Long: `firstframe scans a directory (not recursively) for .mp4, .avi, .mov, .mkv,
.wmv, and .flv files and writes the first frame of each as
<name>_first_frame.png next to the video. Failed videos are listed in the
final summary and do not stop the run.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version.Get().String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args)
		},
	}

	flags := cmd.Flags()
	a.cfg.RegisterFlags(flags)
	a.logCfg.RegisterFlags(flags)
	a.profCfg.RegisterFlags(flags)
	flags.BoolVar(&a.noTUI, "no-tui", false, "log progress instead of drawing it, even on a terminal")

	for _, register := range []func(*cobra.Command) error{
		a.cfg.RegisterCompletions,
		a.logCfg.RegisterCompletions,
		a.profCfg.RegisterCompletions,
	} {
		err := register(cmd)
		if err != nil {
			slog.Warn("register completions", slog.Any("error", err))
		}
	}

	return cmd
}

func (a *app) run(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()

	settings, err := a.cfg.Load(cmd.Flags(), a.logCfg)
	if err != nil {
		return err
	}

	tui := a.interactive && !a.noTUI

	var tail *log.Tail

	logOut := a.errOut
	if tui {
		tail = log.NewTail(tailLines)
		logOut = tail
	}

	_, err = a.logCfg.Install(logOut)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	sess, err := a.profCfg.Start()
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, sess.Stop())
	}()

	ready, err := a.provision(ctx, settings.InstallCommand)
	if err != nil {
		return err
	}

	slog.Debug("decoder ready",
		slog.Any("paths", ready.Paths),
		slog.Bool("installed", ready.Installed),
	)

	dir, err := a.directory(args)
	if err != nil {
		return err
	}

	src, err := discover.Open(dir)
	if err != nil {
		return err
	}

	x := extract.New(
		a.newDecoder(ready, settings.ProbeTimeout),
		pngfile.New(pngfile.WithCompression(settings.Compression)),
	)

	var summary *extract.Summary

	if tui {
		summary, err = runWithProgress(ctx, x, src, tail, a.in, a.errOut)
	} else {
		summary, err = x.Run(ctx, src, report.NewLogObserver(slog.Default()))
	}

	if err != nil {
		return err
	}

	return a.writeReport(summary, settings)
}

// directory returns the positional directory argument, or prompts for one.
func (a *app) directory(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	fmt.Fprint(a.errOut, promptText)

	dir, err := readLine(a.in)
	if err != nil {
		return "", fmt.Errorf("%w: reading directory: %w", discover.ErrInvalidPath, err)
	}

	return dir, nil
}

// readLine reads one line from r, trimming surrounding whitespace. Input
// ending without a newline is accepted.
func readLine(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		err := sc.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}

		return "", err
	}

	return strings.TrimSpace(sc.Text()), nil
}

func (a *app) writeReport(s *extract.Summary, settings *config.Settings) error {
	err := report.Write(a.out, s, settings.ReportFormat)
	if err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	if settings.ReportFile == "" {
		return nil
	}

	err = report.WriteFile(settings.ReportFile, s, settings.ReportFormat)
	if err != nil {
		return fmt.Errorf("writing summary to %s: %w", settings.ReportFile, err)
	}

	return nil
}
