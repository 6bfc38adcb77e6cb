package gisturi

import (
	"regexp"
	"strings"
)

// nonIdentifierRun matches maximal runs of characters outside [A-Za-z0-9_].
var nonIdentifierRun = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// NormalizeFilename converts a gist file name into the form used in the
// element ids of rendered gist markup: one leading dot stripped, every run of
// non-identifier characters collapsed to '-', lowercased.
//
//	".gitignore"         -> "gitignore"
//	"name#of+file09.ext" -> "name-of-file09-ext"
func NormalizeFilename(name string) string {
	name = strings.TrimPrefix(name, ".")
	name = nonIdentifierRun.ReplaceAllString(name, "-")
	return strings.ToLower(name)
}

// LineIDPrefix returns the id prefix carried by the code-line cells of file.
// The line number follows the prefix directly ("file-main-go-LC12").
func LineIDPrefix(file string) string {
	return "file-" + NormalizeFilename(file) + "-LC"
}
