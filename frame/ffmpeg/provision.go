package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// ErrDependencyUnavailable indicates a required executable is missing and
// could not be installed.
var ErrDependencyUnavailable = errors.New("dependency unavailable")

// Binaries lists the executables a [Decoder] needs.
var Binaries = []string{"ffmpeg", "ffprobe"}

// Readiness reports the executables resolved by [Provisioner.Ensure].
type Readiness struct {
	// Paths maps each required executable name to its resolved path.
	Paths map[string]string
	// Installed is true when the install command had to be run.
	Installed bool
}

// Provisioner checks that the decoding executables are available, optionally
// running an install command when any are missing.
//
// Create instances with [NewProvisioner].
type Provisioner struct {
	lookPath       func(string) (string, error)
	installCommand string
	binaries       []string
}

// ProvisionOption configures a [Provisioner].
type ProvisionOption func(*Provisioner)

// WithInstallCommand sets the command run when executables are missing, e.g.
// "apt-get install -y ffmpeg". The command is split on whitespace and run
// without a shell. An empty command disables installation.
func WithInstallCommand(command string) ProvisionOption {
	return func(p *Provisioner) {
		p.installCommand = command
	}
}

// WithLookPath replaces [exec.LookPath] for resolving executables.
func WithLookPath(fn func(string) (string, error)) ProvisionOption {
	return func(p *Provisioner) {
		p.lookPath = fn
	}
}

// WithBinaries overrides the executables to check. Defaults to [Binaries].
func WithBinaries(names ...string) ProvisionOption {
	return func(p *Provisioner) {
		p.binaries = names
	}
}

// NewProvisioner creates a [Provisioner] with the given options.
func NewProvisioner(opts ...ProvisionOption) *Provisioner {
	p := &Provisioner{
		lookPath: exec.LookPath,
		binaries: Binaries,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Ensure resolves every required executable. If any are missing and an
// install command is configured, it runs the command once and checks again.
// Remaining gaps yield an error wrapping [ErrDependencyUnavailable].
func (p *Provisioner) Ensure(ctx context.Context) (Readiness, error) {
	paths, missing := p.resolve()
	if len(missing) == 0 {
		return Readiness{Paths: paths}, nil
	}

	if strings.TrimSpace(p.installCommand) == "" {
		return Readiness{}, fmt.Errorf("%w: %s not found in PATH",
			ErrDependencyUnavailable, strings.Join(missing, ", "))
	}

	slog.Info("installing missing dependencies",
		slog.Any("missing", missing),
		slog.String("command", p.installCommand),
	)

	err := p.install(ctx)
	if err != nil {
		return Readiness{}, fmt.Errorf("%w: %w", ErrDependencyUnavailable, err)
	}

	paths, missing = p.resolve()
	if len(missing) > 0 {
		return Readiness{}, fmt.Errorf("%w: %s still not found after install",
			ErrDependencyUnavailable, strings.Join(missing, ", "))
	}

	return Readiness{Paths: paths, Installed: true}, nil
}

func (p *Provisioner) resolve() (map[string]string, []string) {
	paths := make(map[string]string, len(p.binaries))

	var missing []string

	for _, name := range p.binaries {
		path, err := p.lookPath(name)
		if err != nil {
			missing = append(missing, name)

			continue
		}

		paths[name] = path
	}

	return paths, missing
}

func (p *Provisioner) install(ctx context.Context) error {
	fields := strings.Fields(p.installCommand)
	if len(fields) == 0 {
		return errors.New("empty install command")
	}

	//nolint:gosec // The install command is supplied by the operator.
	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("running %q: %w: %s", p.installCommand, err, lastLine(string(out)))
	}

	slog.Debug("install command finished", slog.String("output", lastLine(string(out))))

	return nil
}
