package main

import (
	"context"
	"errors"
	"os"

	gistembed "github.com/alnah/go-gistembed"
	"github.com/alnah/go-gistembed/internal/config"
	"github.com/alnah/go-gistembed/internal/hints"
	"github.com/alnah/go-gistembed/internal/logging"
)

// Exit codes for the gistembed CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitRemote  = 4 // A gist reference could not be resolved
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Gist resolution errors (exit 4)
	if errors.Is(err, gistembed.ErrNotFound) ||
		errors.Is(err, gistembed.ErrRemoteServer) ||
		errors.Is(err, gistembed.ErrUnsupportedResponse) ||
		errors.Is(err, gistembed.ErrInvalidResponse) ||
		errors.Is(err, gistembed.ErrMalformedFragment) ||
		errors.Is(err, gistembed.ErrInvalidURI) {
		return ExitRemote
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoFiles) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, logging.ErrUnknownLevel) ||
		errors.Is(err, gistembed.ErrEmptyInput) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrTooManyInputs) ||
		errors.Is(err, ErrUnsupportedInput) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "" when none applies.
func hintFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, gistembed.ErrRemoteServer):
		return hints.ForRemoteServer()
	case errors.Is(err, gistembed.ErrNotFound):
		return hints.ForNotFound()
	case errors.Is(err, gistembed.ErrInvalidURI):
		return hints.ForInvalidURI()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	default:
		return ""
	}
}
