// Package cliutil provides shared CLI utilities for the descent command.
package cliutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/golangsnmp/descent/value"
)

// Output formats accepted by WriteValue.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned for an output format other than json or yaml.
var ErrUnknownFormat = errors.New("unknown output format")

// Config holds defaults read from a YAML config file. Command-line flags
// override these values.
type Config struct {
	Format       string `yaml:"format"`
	Indent       int    `yaml:"indent"`
	MaxInputSize int    `yaml:"max_input_size"`
	Trace        bool   `yaml:"trace"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Format:       FormatJSON,
		Indent:       2,
		MaxInputSize: 64 << 20,
	}
}

// LoadConfig reads a YAML config file over DefaultConfig. A missing file is
// an error only when required is set.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Format != FormatJSON && c.Format != FormatYAML {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Format)
	}
	if c.Indent < 0 {
		return fmt.Errorf("negative indent %d", c.Indent)
	}
	if c.MaxInputSize < 0 {
		return fmt.Errorf("negative max_input_size %d", c.MaxInputSize)
	}
	return nil
}

// WriteValue writes v in the given format followed by a newline. An indent
// of zero produces compact JSON; YAML output always uses at least one space.
func WriteValue(w io.Writer, v value.Value, format string, indent int) error {
	switch format {
	case FormatJSON:
		out := v.AppendJSON(nil)
		if indent > 0 {
			var buf bytes.Buffer
			if err := json.Indent(&buf, out, "", spaces(indent)); err != nil {
				return err
			}
			out = buf.Bytes()
		}
		out = append(out, '\n')
		_, err := w.Write(out)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(max(indent, 1))
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func spaces(n int) string {
	return string(bytes.Repeat([]byte{' '}, n))
}

// GetOutput opens the output file or returns stdout.
func GetOutput(outputFile string) (*os.File, func(), error) {
	if outputFile == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// PrintError writes a formatted error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
