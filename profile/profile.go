package profile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"go.jacobcolvin.com/firstframe/atomicfile"
)

// Session is a running profiling session.
//
// Create instances with [Config.Start].
type Session struct {
	cpuFile   *os.File
	traceFile *os.File
	cfg       Config
}

// Start begins CPU profiling and tracing if configured. The returned
// [Session] must be stopped to flush its outputs.
func (c *Config) Start() (*Session, error) {
	s := &Session{cfg: *c}

	if c.CPUProfile != "" {
		f, err := os.Create(c.CPUProfile) //nolint:gosec // Profile path from CLI flag is expected.
		if err != nil {
			return nil, fmt.Errorf("creating CPU profile: %w", err)
		}

		err = pprof.StartCPUProfile(f)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("starting CPU profile: %w", err), f.Close())
		}

		s.cpuFile = f
	}

	if c.Trace != "" {
		f, err := os.Create(c.Trace) //nolint:gosec // Trace path from CLI flag is expected.
		if err != nil {
			return nil, errors.Join(fmt.Errorf("creating trace: %w", err), s.stopCPU())
		}

		err = trace.Start(f)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("starting trace: %w", err), f.Close(), s.stopCPU())
		}

		s.traceFile = f
	}

	return s, nil
}

// Stop ends CPU profiling and tracing, then writes the snapshot profiles.
// Stop on a nil Session is a no-op.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}

	errs := []error{s.stopCPU(), s.stopTrace()}

	snapshots := []struct {
		name string
		path string
	}{
		{"heap", s.cfg.HeapProfile},
		{"goroutine", s.cfg.GoroutineProfile},
	}

	for _, p := range snapshots {
		if p.path == "" {
			continue
		}

		errs = append(errs, writeSnapshot(p.name, p.path))
	}

	return errors.Join(errs...)
}

func (s *Session) stopCPU() error {
	if s.cpuFile == nil {
		return nil
	}

	pprof.StopCPUProfile()

	f := s.cpuFile
	s.cpuFile = nil

	err := f.Close()
	if err != nil {
		return fmt.Errorf("closing CPU profile: %w", err)
	}

	return nil
}

func (s *Session) stopTrace() error {
	if s.traceFile == nil {
		return nil
	}

	trace.Stop()

	f := s.traceFile
	s.traceFile = nil

	err := f.Close()
	if err != nil {
		return fmt.Errorf("closing trace: %w", err)
	}

	return nil
}

func writeSnapshot(name, path string) error {
	prof := pprof.Lookup(name)
	if prof == nil {
		return fmt.Errorf("unknown profile: %s", name)
	}

	if name == "heap" {
		runtime.GC()
	}

	err := atomicfile.Write(path, func(w io.Writer) error {
		return prof.WriteTo(w, 0)
	})
	if err != nil {
		return fmt.Errorf("write %s profile: %w", name, err)
	}

	return nil
}
