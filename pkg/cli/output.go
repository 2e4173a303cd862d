package cli

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/ssyssy/ottertune/pkg/errors"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json" or "yaml" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", errors.Newf("unknown output format: %q", s)
	}
}

// Encode writes v to w in format f.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "encode json")
	}
}

// writeResult encodes v according to the --format and --output flags.
func writeResult(cmd *cli.Command, v any) error {
	f, err := ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	path := strings.TrimSpace(cmd.String("output"))
	if path == "" {
		w := cmd.Root().Writer
		if w == nil {
			w = os.Stdout
		}
		return Encode(w, f, v)
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := Encode(file, f, v); err != nil {
		file.Close()
		return err
	}
	return errors.Wrapf(file.Close(), "close %s", path)
}
