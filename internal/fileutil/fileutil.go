// Package fileutil provides file and path utility functions for the command
// line tool: input classification, output naming and atomic writes.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrEmptyPath = errors.New("path cannot be empty")
)

// Kind is the input format of a file, as recognized by Classify.
type Kind int

const (
	KindUnknown Kind = iota
	KindMarkdown
	KindHTML
)

// GeneratedSuffix marks HTML files written from HTML inputs ("page.gist.html").
const GeneratedSuffix = ".gist.html"

// Classify returns the input kind of path by extension (case-insensitive).
func Classify(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return KindMarkdown
	case ".html", ".htm":
		return KindHTML
	default:
		return KindUnknown
	}
}

// IsGenerated reports whether path looks like an output of this tool for an
// HTML input.
func IsGenerated(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), GeneratedSuffix)
}

// OutputPath returns where the result for inputPath is written.
//
// Markdown inputs produce "<name>.html", HTML inputs "<name>.gist.html".
// With an empty outputDir the result lands next to the input. With
// baseInputDir set, the input's path relative to it is kept under outputDir.
// An outputDir ending in ".html" is used as the output file itself.
func OutputPath(inputPath, outputDir, baseInputDir string) string {
	ext := filepath.Ext(inputPath)
	name := strings.TrimSuffix(filepath.Base(inputPath), ext)
	if Classify(inputPath) == KindHTML {
		name += GeneratedSuffix
	} else {
		name += ".html"
	}

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), name)
	}

	if strings.EqualFold(filepath.Ext(outputDir), ".html") {
		return outputDir
	}

	if baseInputDir != "" {
		if rel, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(rel), name)
		}
	}

	return filepath.Join(outputDir, name)
}

// WriteFileAtomic writes data to a temporary file in path's directory and
// renames it over path, so readers never see a partial file. Missing parent
// directories are created with dirPerm.
func WriteFileAtomic(path string, data []byte, filePerm, dirPerm os.FileMode) error {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, writeErr := tmpFile.Write(data); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", writeErr)
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, filePerm); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
