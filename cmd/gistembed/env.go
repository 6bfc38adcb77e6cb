package main

import (
	"io"
	"os"
	"time"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer

	// MaxProcs enables GOMAXPROCS adjustment to the container CPU quota.
	// Off in tests, where the process-wide setting would leak between them.
	MaxProcs bool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:      time.Now,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		MaxProcs: true,
	}
}
