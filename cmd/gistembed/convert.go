package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	gistembed "github.com/alnah/go-gistembed"
	"github.com/alnah/go-gistembed/internal/config"
	"github.com/alnah/go-gistembed/internal/fileutil"
	"github.com/alnah/go-gistembed/internal/logging"
)

// Sentinel errors for file operations.
var (
	ErrReadInput   = errors.New("failed to read input file")
	ErrWriteOutput = errors.New("failed to write output file")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// requestTimeout bounds a single gist request.
const requestTimeout = 30 * time.Second

// documentConverter is the part of gistembed.Converter the command uses.
type documentConverter interface {
	Convert(ctx context.Context, input gistembed.Input) (*gistembed.ConvertResult, error)
	ConvertHTML(ctx context.Context, content string) (*gistembed.ConvertResult, error)
}

// Compile-time interface implementation check.
var _ documentConverter = (*gistembed.Converter)(nil)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Embedded   int
	Err        error
	Duration   time.Duration
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *cliFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if flags.config != "" {
		var err error
		cfg, err = config.LoadConfig(flags.config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	// Merge CLI flags into config (CLI wins), then validate the result
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if flags.printConfig {
		data, err := cfg.Marshal()
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		_, err = env.Stdout.Write(data)
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, env.Stdout, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if env.MaxProcs {
		if undo, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf)); err == nil {
			defer undo()
		}
	}

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoFiles, inputPath)
	}

	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	conv := gistembed.NewConverter(buildOptions(cfg, logger)...)
	workers := resolveWorkers(flags.workers, len(files))
	logger.Debug("Starting conversion", zap.Int("files", len(files)), zap.Int("workers", workers))

	results := convertBatch(ctx, conv, files, workers, env.Now)
	return reportResults(results, flags.quiet, flags.verbose, env)
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *cliFlags, cfg *config.Config) {
	g := flags.gist
	if len(g.classes) > 0 {
		var classes config.ClassList
		for _, c := range g.classes {
			classes = append(classes, strings.Fields(c)...)
		}
		cfg.Gist.ClassNames = classes
	}
	if g.noReplaceParagraph {
		cfg.Gist.ReplaceParentParagraph = false
	}
	if g.includeCodeBlocks {
		cfg.Gist.OmitCodeBlocks = false
	}
	if g.ignoreErrors {
		cfg.Gist.IgnoreErrors = true
	}
	if g.baseURL != "" {
		cfg.Gist.BaseURL = g.baseURL
	}
	if g.userAgent != "" {
		cfg.Gist.UserAgent = g.userAgent
	}
	if g.concurrency != concurrencyUnset {
		cfg.Gist.Concurrency = g.concurrency
	}
	if g.noStylesheets {
		cfg.Style.Stylesheets = false
	}

	switch {
	case flags.logLevel != "":
		cfg.Logging.Level = flags.logLevel
	case flags.quiet:
		cfg.Logging.Level = logging.LevelNone
	case flags.verbose:
		cfg.Logging.Level = logging.LevelDebug
	}
}

// buildOptions maps the merged config to converter options.
func buildOptions(cfg *config.Config, logger *zap.Logger) []gistembed.Option {
	userAgent := cfg.Gist.UserAgent
	if userAgent == "" {
		userAgent = "gistembed/" + Version
	}

	opts := []gistembed.Option{
		gistembed.WithReplaceParentParagraph(cfg.Gist.ReplaceParentParagraph),
		gistembed.WithOmitCodeBlocks(cfg.Gist.OmitCodeBlocks),
		gistembed.WithClassNames(cfg.Gist.ClassNames...),
		gistembed.WithIgnoreErrors(cfg.Gist.IgnoreErrors),
		gistembed.WithConcurrency(cfg.Gist.Concurrency),
		gistembed.WithBaseURL(cfg.Gist.BaseURL),
		gistembed.WithUserAgent(userAgent),
		gistembed.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
		gistembed.WithStylesheets(cfg.Style.Stylesheets),
		gistembed.WithLogger(logger),
	}
	if cfg.Style.HighlightCSS != "" {
		opts = append(opts, gistembed.WithHighlightCSS(cfg.Style.HighlightCSS))
	}
	return opts
}

// resolveInputPath picks the positional argument, else input.defaultDir.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	switch {
	case len(args) > 1:
		return "", fmt.Errorf("%w, got %d", ErrTooManyInputs, len(args))
	case len(args) == 1:
		return args[0], nil
	case cfg.Input.DefaultDir != "":
		return cfg.Input.DefaultDir, nil
	default:
		return "", ErrNoInput
	}
}

// resolveOutputDir picks --output, else output.defaultDir.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// resolveWorkers returns the number of files converted at once.
// 0 means one per CPU, never more than there are files.
func resolveWorkers(requested, files int) int {
	n := requested
	if n == 0 {
		n = min(runtime.GOMAXPROCS(0), maxWorkers)
	}
	return max(1, min(n, files))
}

// convertBatch converts files concurrently. Results keep the order of files.
func convertBatch(ctx context.Context, conv documentConverter, files []FileToConvert, workers int, now func() time.Time) []ConversionResult {
	results := make([]ConversionResult, len(files))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			start := now()
			results[i] = convertFile(ctx, conv, f)
			results[i].Duration = now().Sub(start)
			return nil
		})
	}
	_ = g.Wait() // failures are kept per file

	return results
}

// convertFile processes a single file and returns the result.
// Nothing is written when any reference of the file fails.
func convertFile(ctx context.Context, conv documentConverter, f FileToConvert) ConversionResult {
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadInput, err)
		return result
	}

	var out *gistembed.ConvertResult
	if f.Kind == fileutil.KindHTML {
		out, err = conv.ConvertHTML(ctx, string(content))
	} else {
		out, err = conv.Convert(ctx, gistembed.Input{
			Markdown: string(content),
			Title:    documentTitle(string(content), f.InputPath),
		})
	}
	if err != nil {
		result.Err = err
		return result
	}
	result.Embedded = out.Report.Embedded

	if err := fileutil.WriteFileAtomic(f.OutputPath, out.HTML, filePermissions, dirPermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
		return result
	}
	return result
}

// documentTitle returns the text of the first level-one ATX heading, or the
// file name without extension.
func documentTitle(markdown, path string) string {
	scanner := bufio.NewScanner(strings.NewReader(markdown))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if title, ok := strings.CutPrefix(line, "# "); ok {
			if title = strings.TrimSpace(strings.TrimRight(title, "#")); title != "" {
				return title
			}
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// batchError reports the failed files of a batch. It unwraps to every
// per-file error so exit codes can be derived with errors.Is.
type batchError struct {
	failed int
	total  int
	errs   error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d conversion(s) failed", e.failed, e.total)
}

func (e *batchError) Unwrap() []error {
	return multierr.Errors(e.errs)
}

// reportResults prints one line per file and returns a *batchError when
// any conversion failed.
func reportResults(results []ConversionResult, quiet, verbose bool, env *Environment) error {
	var errs error
	failed := 0

	for _, r := range results {
		if r.Err != nil {
			failed++
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.InputPath, r.Err))
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d gist(s), %v)\n", r.InputPath, r.OutputPath, r.Embedded, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}

	if failed > 0 {
		return &batchError{failed: failed, total: len(results), errs: errs}
	}
	return nil
}
