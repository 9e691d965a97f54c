package profile

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for profiling configuration.
type Flags struct {
	CPUProfile       string
	HeapProfile      string
	GoroutineProfile string
	Trace            string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{Flags: f}
}

// Config holds profile output paths. An empty path disables that output, so
// a zero-value Config captures nothing.
//
// Create instances with [NewConfig].
type Config struct {
	Flags Flags

	CPUProfile       string
	HeapProfile      string
	GoroutineProfile string
	Trace            string
}

// NewConfig creates a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		CPUProfile:       "cpu-profile",
		HeapProfile:      "heap-profile",
		GoroutineProfile: "goroutine-profile",
		Trace:            "trace",
	}

	return f.NewConfig()
}

// RegisterFlags adds profiling flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.CPUProfile, c.Flags.CPUProfile, "", "write a CPU profile to file")
	flags.StringVar(&c.HeapProfile, c.Flags.HeapProfile, "", "write a heap profile to file on exit")
	flags.StringVar(&c.GoroutineProfile, c.Flags.GoroutineProfile, "", "write a goroutine profile to file on exit")
	flags.StringVar(&c.Trace, c.Flags.Trace, "", "write an execution trace to file")
}

// RegisterCompletions limits profile flag completion to files with the
// conventional extensions.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	exts := map[string][]string{
		c.Flags.CPUProfile:       {"prof", "pprof"},
		c.Flags.HeapProfile:      {"prof", "pprof"},
		c.Flags.GoroutineProfile: {"prof", "pprof"},
		c.Flags.Trace:            {"out", "trace"},
	}

	for name, ext := range exts {
		err := cmd.RegisterFlagCompletionFunc(name,
			func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
				return ext, cobra.ShellCompDirectiveFilterFileExt
			},
		)
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", name, err)
		}
	}

	return nil
}

// Enabled reports whether any profile output is configured.
func (c *Config) Enabled() bool {
	return c.CPUProfile != "" || c.HeapProfile != "" ||
		c.GoroutineProfile != "" || c.Trace != ""
}
