package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"github.com/alnah/go-gistembed/internal/fileutil"
)

// Sentinel errors for input resolution and discovery.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrTooManyInputs      = errors.New("expected a single input")
	ErrUnsupportedInput   = errors.New("input must be a .md, .markdown or .html file")
	ErrNoFiles            = errors.New("no markdown or HTML files found")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// maxWorkers bounds --workers.
const maxWorkers = 32

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
	Kind       fileutil.Kind
}

// discoverFiles finds the files to convert under inputPath.
//
// A file argument is converted whatever its location. In a directory,
// hidden directories, outputs of a previous run (*.gist.html) and HTML files
// sitting next to a Markdown source of the same name are skipped. Files are
// returned in natural order, so "part2.md" comes before "part10.md".
func discoverFiles(inputPath, outputDir string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		kind := fileutil.Classify(inputPath)
		if kind == fileutil.KindUnknown {
			return nil, fmt.Errorf("%w: got %q", ErrUnsupportedInput, filepath.Ext(inputPath))
		}
		return []FileToConvert{{
			InputPath:  inputPath,
			OutputPath: fileutil.OutputPath(inputPath, outputDir, ""),
			Kind:       kind,
		}}, nil
	}

	var candidates []FileToConvert
	markdownStems := make(map[string]bool)

	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			if path != inputPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		kind := fileutil.Classify(path)
		switch {
		case kind == fileutil.KindUnknown:
			return nil
		case kind == fileutil.KindHTML && fileutil.IsGenerated(path):
			return nil
		case kind == fileutil.KindMarkdown:
			markdownStems[stem(path)] = true
		}

		candidates = append(candidates, FileToConvert{
			InputPath:  path,
			OutputPath: fileutil.OutputPath(path, outputDir, inputPath),
			Kind:       kind,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	files := candidates[:0]
	for _, f := range candidates {
		if f.Kind == fileutil.KindHTML && markdownStems[stem(f.InputPath)] {
			continue // rendered from the Markdown next to it
		}
		files = append(files, f)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return natural.Less(files[i].InputPath, files[j].InputPath)
	})
	return files, nil
}

// stem returns path without its extension.
func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > maxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, maxWorkers)
	}
	return nil
}
