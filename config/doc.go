// Package config resolves firstframe's run settings from CLI flags and an
// optional YAML config file.
//
// The file is validated against a JSON Schema inferred from [File] before it
// is applied. Flags set explicitly on the command line override file values;
// file values override flag defaults.
package config
