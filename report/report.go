package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"

	"go.jacobcolvin.com/firstframe/atomicfile"
	"go.jacobcolvin.com/firstframe/extract"
)

// Format is a report output format.
type Format string

const (
	// FormatText renders a human-readable summary.
	FormatText Format = "text"
	// FormatJSON renders the summary as an indented JSON object.
	FormatJSON Format = "json"
	// FormatYAML renders the summary as a YAML document.
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat indicates an unrecognized report format string.
var ErrUnknownFormat = errors.New("unknown report format")

var formats = []Format{FormatText, FormatJSON, FormatYAML}

// ParseFormat parses a report format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if slices.Contains(formats, f) {
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatNames returns all accepted format names.
func FormatNames() []string {
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, string(f))
	}

	return names
}

// Write renders s to w in the given format.
func Write(w io.Writer, s *extract.Summary, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(s)

	case FormatYAML:
		out, err := yaml.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}

		_, err = w.Write(out)

		return err

	case FormatText:
		return writeText(w, s)
	}

	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// WriteFile renders s to path, replacing any existing file atomically.
func WriteFile(path string, s *extract.Summary, f Format) error {
	return atomicfile.Write(path, func(w io.Writer) error {
		return Write(w, s, f)
	})
}

func writeText(w io.Writer, s *extract.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Processing complete: %s\n", s.Dir)
	fmt.Fprintf(tw, "  Total videos processed:\t%d\n", s.Attempted)
	fmt.Fprintf(tw, "  Successful extractions:\t%d\n", s.Succeeded)
	fmt.Fprintf(tw, "  Failed extractions:\t%d\n", s.Failed)

	err := tw.Flush()
	if err != nil {
		return err
	}

	if len(s.Failures) == 0 {
		return nil
	}

	fmt.Fprintln(w, "Failures:")

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range s.Failures {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", f.Path, f.Kind, f.Reason)
	}

	return tw.Flush()
}
