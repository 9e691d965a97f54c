package config

import (
	"errors"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/firstframe/frame/ffmpeg"
	"go.jacobcolvin.com/firstframe/frame/pngfile"
	"go.jacobcolvin.com/firstframe/log"
	"go.jacobcolvin.com/firstframe/report"
)

// ErrInvalidConfig indicates an unreadable config file or an invalid
// setting value.
var ErrInvalidConfig = errors.New("invalid config")

// Flags names the run configuration CLI flags.
type Flags struct {
	File           string
	ReportFormat   string
	ReportFile     string
	InstallCommand string
	ProbeTimeout   string
	Compression    string
}

// Config holds run configuration flag values.
//
// Create instances with [NewConfig], bind them with [Config.RegisterFlags],
// then call [Config.Load] once flags are parsed.
type Config struct {
	Flags          Flags
	File           string
	ReportFormat   string
	ReportFile     string
	InstallCommand string
	Compression    string
	ProbeTimeout   time.Duration
}

// NewConfig returns a [Config] using the default flag names.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			File:           "config",
			ReportFormat:   "report-format",
			ReportFile:     "report-file",
			InstallCommand: "install-command",
			ProbeTimeout:   "probe-timeout",
			Compression:    "compression",
		},
	}
}

// RegisterFlags adds run configuration flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.File, c.Flags.File, "c", "", "path to a YAML config file")
	flags.StringVar(&c.ReportFormat, c.Flags.ReportFormat, string(report.FormatText),
		fmt.Sprintf("summary format, one of: %s", report.FormatNames()))
	flags.StringVar(&c.ReportFile, c.Flags.ReportFile, "", "also write the summary to this file")
	flags.StringVar(&c.InstallCommand, c.Flags.InstallCommand, "",
		"command to run when ffmpeg or ffprobe is missing")
	flags.DurationVar(&c.ProbeTimeout, c.Flags.ProbeTimeout, ffmpeg.DefaultProbeTimeout,
		"timeout for probing each video")
	flags.StringVar(&c.Compression, c.Flags.Compression, "default",
		fmt.Sprintf("PNG compression level, one of: %s", pngfile.CompressionNames()))
}

// RegisterCompletions registers shell completions for run configuration
// flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	completions := map[string]cobra.CompletionFunc{
		c.Flags.File: cobra.FixedCompletions([]string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt),
		c.Flags.ReportFormat: cobra.FixedCompletions(report.FormatNames(),
			cobra.ShellCompDirectiveNoFileComp),
		c.Flags.Compression: cobra.FixedCompletions(pngfile.CompressionNames(),
			cobra.ShellCompDirectiveNoFileComp),
		c.Flags.ProbeTimeout:   cobra.NoFileCompletions,
		c.Flags.InstallCommand: cobra.NoFileCompletions,
	}

	for flag, fn := range completions {
		err := cmd.RegisterFlagCompletionFunc(flag, fn)
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", flag, err)
		}
	}

	return nil
}

// Settings is the validated run configuration.
type Settings struct {
	ReportFormat   report.Format
	ReportFile     string
	InstallCommand string
	ProbeTimeout   time.Duration
	Compression    png.CompressionLevel
}

// Load merges the config file named by the config flag (if any) into c and
// logCfg, then validates the result. Values of flags marked as changed in
// flags are kept.
func (c *Config) Load(flags *pflag.FlagSet, logCfg *log.Config) (*Settings, error) {
	if c.File != "" {
		f, err := ReadFile(c.File)
		if err != nil {
			return nil, err
		}

		err = c.apply(f, flags, logCfg)
		if err != nil {
			return nil, err
		}
	}

	return c.Settings()
}

func (c *Config) apply(f *File, flags *pflag.FlagSet, logCfg *log.Config) error {
	set := func(name string, dst *string, v string) {
		if v != "" && !flags.Changed(name) {
			*dst = v
		}
	}

	set(c.Flags.ReportFormat, &c.ReportFormat, f.Report.Format)
	set(c.Flags.ReportFile, &c.ReportFile, f.Report.Path)
	set(c.Flags.InstallCommand, &c.InstallCommand, f.InstallCommand)
	set(c.Flags.Compression, &c.Compression, f.Compression)

	if logCfg != nil {
		set(logCfg.Flags.Level, &logCfg.Level, f.Log.Level)
		set(logCfg.Flags.Format, &logCfg.Format, f.Log.Format)
	}

	if f.ProbeTimeout != "" && !flags.Changed(c.Flags.ProbeTimeout) {
		d, err := time.ParseDuration(f.ProbeTimeout)
		if err != nil {
			return fmt.Errorf("%w: probe_timeout: %w", ErrInvalidConfig, err)
		}

		c.ProbeTimeout = d
	}

	return nil
}

// Settings validates the current values of c.
func (c *Config) Settings() (*Settings, error) {
	format, err := report.ParseFormat(c.ReportFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	level, err := pngfile.ParseCompression(c.Compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.InstallCommand != "" && strings.TrimSpace(c.InstallCommand) == "" {
		return nil, fmt.Errorf("%w: install command is blank", ErrInvalidConfig)
	}

	if c.ProbeTimeout <= 0 {
		return nil, fmt.Errorf("%w: probe timeout must be positive, got %s", ErrInvalidConfig, c.ProbeTimeout)
	}

	return &Settings{
		ReportFormat:   format,
		ReportFile:     c.ReportFile,
		InstallCommand: c.InstallCommand,
		ProbeTimeout:   c.ProbeTimeout,
		Compression:    level,
	}, nil
}
