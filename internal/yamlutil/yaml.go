// Package yamlutil is the single entry point to the YAML library.
// Config loading goes through it so the library can change without touching callers.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize caps the accepted document size (1 MiB).
var MaxInputSize = 1 << 20

var (
	ErrNoData         = errors.New("yamlutil: no data")
	ErrNilDestination = errors.New("yamlutil: nil destination")
	ErrInputTooLarge  = errors.New("yamlutil: input too large")
)

func checkInput(data []byte, dest any) error {
	switch {
	case len(data) == 0:
		return ErrNoData
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	case dest == nil:
		return ErrNilDestination
	}
	return nil
}

// UnmarshalStrict decodes data into dest and rejects keys dest does not declare.
func UnmarshalStrict(data []byte, dest any) error {
	if err := checkInput(data, dest); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, dest, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// Marshal encodes v as YAML.
func Marshal(v any) ([]byte, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}

// FormatError renders a decoding error with the offending source lines when
// the library provides them.
func FormatError(err error) string {
	return yaml.FormatError(err, false, true)
}
