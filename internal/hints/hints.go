// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"
)

// IsInCI detects if running under a CI runner, where many jobs share the
// same outbound address and gist requests are throttled sooner.
var IsInCI = func() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForRemoteServer returns hints for gist host failures (5xx, throttling).
func ForRemoteServer() string {
	hints := []string{"retry later or pass --ignore-errors to keep references unchanged"}
	if IsInCI() {
		hints = append(hints, "lower --concurrency on shared CI runners")
	}
	return formatHints(hints)
}

// ForNotFound returns a hint for gists the host does not serve.
func ForNotFound() string {
	return format("check owner, id and file=; secret gists need the full id")
}

// ForInvalidURI returns the reference syntax.
func ForInvalidURI() string {
	return format("expected gist:<owner>/<id>[?file=<name>][&lines=<ranges>][&highlights=<ranges>]")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for documents with many gists, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound() string {
	hint := "use --config /path/to/file.yaml"
	if dir, err := os.UserConfigDir(); err == nil {
		hint += " or create one in " + filepath.Join(dir, "go-gistembed")
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
