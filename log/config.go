package log

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags names the logging CLI flags.
type Flags struct {
	Level   string
	Format  string
	Verbose string
}

// Config holds logging flag values.
//
// Create instances with [NewConfig], bind them with [Config.RegisterFlags],
// then call [Config.Install] once flags are parsed.
type Config struct {
	Flags   Flags
	Level   string
	Format  string
	Verbose bool
}

// NewConfig returns a [Config] using the default flag names "log-level",
// "log-format", and "verbose".
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Level:   "log-level",
			Format:  "log-format",
			Verbose: "verbose",
		},
	}
}

// RegisterFlags adds logging flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, c.Flags.Level, string(LevelInfo),
		fmt.Sprintf("log level, one of: %s", GetAllLevelStrings()))
	flags.StringVar(&c.Format, c.Flags.Format, string(FormatText),
		fmt.Sprintf("log format, one of: %s", GetAllFormatStrings()))
	flags.BoolVarP(&c.Verbose, c.Flags.Verbose, "v", false,
		"shorthand for --"+c.Flags.Level+"="+string(LevelDebug))
}

// RegisterCompletions registers shell completions for log flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	completions := map[string][]string{
		c.Flags.Level:  GetAllLevelStrings(),
		c.Flags.Format: GetAllFormatStrings(),
	}

	for flag, values := range completions {
		err := cmd.RegisterFlagCompletionFunc(flag,
			cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", flag, err)
		}
	}

	return nil
}

// NewHandler creates a [slog.Handler] writing to w from the configured level
// and format. Verbose overrides the level with [LevelDebug].
func (c *Config) NewHandler(w io.Writer) (slog.Handler, error) {
	level := c.Level
	if c.Verbose {
		level = string(LevelDebug)
	}

	return NewHandlerFromStrings(w, level, c.Format)
}

// Install builds a handler for w and makes it the [slog.Default] logger.
func (c *Config) Install(w io.Writer) (*slog.Logger, error) {
	h, err := c.NewHandler(w)
	if err != nil {
		return nil, err
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger, nil
}
