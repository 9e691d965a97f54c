package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"

	"go.jacobcolvin.com/firstframe/frame/pngfile"
	"go.jacobcolvin.com/firstframe/log"
	"go.jacobcolvin.com/firstframe/report"
)

// File is the on-disk config file layout.
type File struct {
	Report         ReportFile `json:"report,omitempty" yaml:"report,omitempty"`
	Log            LogFile    `json:"log,omitempty" yaml:"log,omitempty"`
	InstallCommand string     `json:"install_command,omitempty" yaml:"install_command,omitempty" jsonschema:"command run when ffmpeg or ffprobe is missing"`
	ProbeTimeout   string     `json:"probe_timeout,omitempty" yaml:"probe_timeout,omitempty" jsonschema:"ffprobe timeout as a Go duration"`
	Compression    string     `json:"compression,omitempty" yaml:"compression,omitempty" jsonschema:"PNG compression level"`
}

// ReportFile configures the final summary.
type ReportFile struct {
	Format string `json:"format,omitempty" yaml:"format,omitempty" jsonschema:"summary output format"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty" jsonschema:"also write the summary to this file"`
}

// LogFile configures logging.
type LogFile struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty" jsonschema:"minimum log level"`
	Format string `json:"format,omitempty" yaml:"format,omitempty" jsonschema:"log output format"`
}

var fileSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	s, err := Schema()
	if err != nil {
		return nil, err
	}

	return s.Resolve(nil)
})

// Schema returns the JSON Schema for [File], with enumerations for every
// field that accepts a fixed set of values.
func Schema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[File](nil)
	if err != nil {
		return nil, fmt.Errorf("inferring schema: %w", err)
	}

	s.Title = "firstframe config"

	for _, obj := range []*jsonschema.Schema{s, s.Properties["report"], s.Properties["log"]} {
		obj.AdditionalProperties = &jsonschema.Schema{Not: &jsonschema.Schema{}}
	}

	setEnum(s.Properties["compression"], pngfile.CompressionNames())
	setEnum(s.Properties["report"].Properties["format"], report.FormatNames())
	setEnum(s.Properties["log"].Properties["level"], slices.Concat(log.GetAllLevelStrings(), []string{"warning"}))
	setEnum(s.Properties["log"].Properties["format"], log.GetAllFormatStrings())

	return s, nil
}

func setEnum(s *jsonschema.Schema, values []string) {
	s.Enum = make([]any, 0, len(values))
	for _, v := range values {
		s.Enum = append(s.Enum, v)
	}
}

// ReadFile reads, validates, and decodes the config file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Config path from CLI flag is expected.
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	f, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// ParseFile validates and decodes YAML config data.
func ParseFile(data []byte) (*File, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &File{}, nil
	}

	resolved, err := fileSchema()
	if err != nil {
		return nil, err
	}

	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	// Comment-only documents decode to null.
	jsonData = bytes.TrimSpace(jsonData)
	if len(jsonData) == 0 || bytes.Equal(jsonData, []byte("null")) {
		return &File{}, nil
	}

	var instance any

	err = json.Unmarshal(jsonData, &instance)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	err = resolved.Validate(instance)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var f File

	err = yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &f, nil
}
