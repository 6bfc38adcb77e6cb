package main

import (
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// concurrencyUnset detects if --concurrency was explicitly set.
// 0 is a valid value (unbounded), so the default sits outside the valid range.
const concurrencyUnset = -1

// gistFlags holds the flags that shape gist resolution.
type gistFlags struct {
	classes            []string
	noReplaceParagraph bool
	includeCodeBlocks  bool
	ignoreErrors       bool
	baseURL            string
	userAgent          string
	concurrency        int
	noStylesheets      bool
}

// cliFlags holds every flag of the command.
type cliFlags struct {
	config   string
	output   string
	workers  int
	timeout  time.Duration
	gist     gistFlags
	logLevel string
	quiet    bool
	verbose  bool
	version  bool

	printConfig bool
}

// addGistFlags adds gist resolution flags to a FlagSet.
func addGistFlags(fs *flag.FlagSet, f *gistFlags) {
	fs.StringSliceVar(&f.classes, "class", nil, "class added to every embed (repeatable, comma-separated)")
	fs.BoolVar(&f.noReplaceParagraph, "no-replace-paragraph", false, "keep the <p> around a lone reference")
	fs.BoolVar(&f.includeCodeBlocks, "include-code-blocks", false, "also resolve references inside <pre> blocks")
	fs.BoolVar(&f.ignoreErrors, "ignore-errors", false, "log failed references and leave them unchanged")
	fs.StringVar(&f.baseURL, "base-url", "", "gist host (default https://gist.github.com)")
	fs.StringVar(&f.userAgent, "user-agent", "", "User-Agent header for gist requests")
	fs.IntVar(&f.concurrency, "concurrency", concurrencyUnset, "gists fetched at once per document (0 = unbounded)")
	fs.BoolVar(&f.noStylesheets, "no-stylesheets", false, "do not link gist stylesheets or add highlight CSS")
}

// parseFlags parses the command line and returns positional args.
func parseFlags(args []string, stderr io.Writer) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("gistembed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &cliFlags{}

	// I/O flags
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "files converted in parallel (0 = auto)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "overall timeout, e.g. 30s or 2m (0 = none)")

	addGistFlags(fs, &f.gist)

	// Output verbosity
	fs.StringVar(&f.logLevel, "log-level", "", "log level: none, normal, debug")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show details and timing")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	fs.BoolVar(&f.printConfig, "print-config", false, "print the effective config as YAML and exit")

	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if f.quiet && f.verbose {
		return nil, nil, fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}

	return f, fs.Args(), nil
}

// printUsage prints the usage message.
func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: gistembed [flags] <file.md|file.html|dir>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Replace `gist:<owner>/<id>` inline code with embedded GitHub gists.")
	fmt.Fprintln(w, "Markdown files become <name>.html, HTML files <name>.gist.html.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Reference syntax:")
	fmt.Fprintln(w, "  gist:<owner>/<id>[?file=<name>][&lines=<ranges>][&highlights=<ranges>]")
	fmt.Fprintln(w, "  ranges: 1,3-5,8  (lines removes rows, highlights marks them)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
}
