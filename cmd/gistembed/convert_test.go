package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	gistembed "github.com/alnah/go-gistembed"
	"github.com/alnah/go-gistembed/internal/config"
	"github.com/alnah/go-gistembed/internal/fileutil"
	"github.com/alnah/go-gistembed/internal/logging"
)

// newGistHost serves one gist, "octocat/hello", and 404 for everything else.
func newGistHost(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/octocat/hello.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"files":      []string{"hello.go"},
			"div":        `<div id="gist-hello" class="gist"><table><tbody><tr><td id="file-hello-go-L1"></td><td id="file-hello-go-LC1">package main</td></tr></tbody></table></div>`,
			"stylesheet": "https://github.githubassets.com/assets/gist-embed-test.css",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &Environment{Now: time.Now, Stdout: stdout, Stderr: stderr}, stdout, stderr
}

// ---------------------------------------------------------------------------
// TestRunMain - End-to-end command runs
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	host := newGistHost(t)

	tests := []struct {
		name     string
		files    map[string]string
		args     func(dir string) []string
		wantCode int
		check    func(t *testing.T, dir, stdout, stderr string)
	}{
		{
			name:  "markdown file",
			files: map[string]string{"doc.md": "# Hello\n\n`gist:octocat/hello`\n"},
			args: func(dir string) []string {
				return []string{"--base-url", host.URL, filepath.Join(dir, "doc.md")}
			},
			wantCode: ExitSuccess,
			check: func(t *testing.T, dir, stdout, _ string) {
				out := readFile(t, filepath.Join(dir, "doc.html"))
				for _, want := range []string{`<title>Hello</title>`, `id="gist-hello"`, `gist-embed-test.css`} {
					if !strings.Contains(out, want) {
						t.Errorf("output missing %q:\n%s", want, out)
					}
				}
				if !strings.Contains(stdout, "Created "+filepath.Join(dir, "doc.html")) {
					t.Errorf("stdout = %q", stdout)
				}
			},
		},
		{
			name: "directory with html",
			files: map[string]string{
				"a.md":         "`gist:octocat/hello`",
				"pages/b.html": "<html><head></head><body><p><code>gist:octocat/hello</code></p></body></html>",
			},
			args: func(dir string) []string {
				return []string{"--base-url", host.URL, "--no-stylesheets", "-o", filepath.Join(dir, "site"), dir}
			},
			wantCode: ExitSuccess,
			check: func(t *testing.T, dir, stdout, _ string) {
				b := readFile(t, filepath.Join(dir, "site", "pages", "b.gist.html"))
				if !strings.Contains(b, `id="gist-hello"`) || strings.Contains(b, "gist-embed-test.css") {
					t.Errorf("b.gist.html = %s", b)
				}
				if !fileutil.FileExists(filepath.Join(dir, "site", "a.html")) {
					t.Error("a.html not written")
				}
				if !strings.Contains(stdout, "2 succeeded, 0 failed") {
					t.Errorf("stdout = %q", stdout)
				}
			},
		},
		{
			name:  "unresolvable reference",
			files: map[string]string{"doc.md": "`gist:octocat/missing`"},
			args: func(dir string) []string {
				return []string{"--base-url", host.URL, filepath.Join(dir, "doc.md")}
			},
			wantCode: ExitRemote,
			check: func(t *testing.T, dir, _, stderr string) {
				if fileutil.FileExists(filepath.Join(dir, "doc.html")) {
					t.Error("output written despite failure")
				}
				if !strings.Contains(stderr, "FAILED") || !strings.Contains(stderr, "gist:octocat/missing") {
					t.Errorf("stderr = %q", stderr)
				}
			},
		},
		{
			name:  "ignore errors",
			files: map[string]string{"doc.md": "`gist:octocat/missing`\n\n`gist:octocat/hello`"},
			args: func(dir string) []string {
				return []string{"--base-url", host.URL, "--ignore-errors", "-q", filepath.Join(dir, "doc.md")}
			},
			wantCode: ExitSuccess,
			check: func(t *testing.T, dir, stdout, _ string) {
				out := readFile(t, filepath.Join(dir, "doc.html"))
				if !strings.Contains(out, "<code>gist:octocat/missing</code>") || !strings.Contains(out, `id="gist-hello"`) {
					t.Errorf("output = %s", out)
				}
				if stdout != "" {
					t.Errorf("quiet run wrote %q", stdout)
				}
			},
		},
		{
			name:     "missing input",
			args:     func(dir string) []string { return []string{filepath.Join(dir, "nope.md")} },
			wantCode: ExitIO,
		},
		{
			name:     "unsupported input",
			files:    map[string]string{"notes.txt": "x"},
			args:     func(dir string) []string { return []string{filepath.Join(dir, "notes.txt")} },
			wantCode: ExitUsage,
		},
		{
			name:     "empty directory",
			files:    map[string]string{"notes.txt": "x"},
			args:     func(dir string) []string { return []string{dir} },
			wantCode: ExitIO,
		},
		{
			name:     "too many workers",
			args:     func(dir string) []string { return []string{"-w", "99", dir} },
			wantCode: ExitUsage,
		},
		{
			name:     "invalid base url",
			args:     func(dir string) []string { return []string{"--base-url", "ftp://example.com", dir} },
			wantCode: ExitUsage,
		},
		{
			name:     "unknown log level",
			files:    map[string]string{"doc.md": "text"},
			args:     func(dir string) []string { return []string{"--log-level", "loud", dir} },
			wantCode: ExitUsage,
		},
		{
			name:     "bad flag",
			args:     func(string) []string { return []string{"--nope"} },
			wantCode: ExitUsage,
		},
		{
			name:     "help",
			args:     func(string) []string { return []string{"-h"} },
			wantCode: ExitSuccess,
		},
		{
			name:     "version",
			args:     func(string) []string { return []string{"--version"} },
			wantCode: ExitSuccess,
			check: func(t *testing.T, _, stdout, _ string) {
				if stdout != "gistembed "+Version+"\n" {
					t.Errorf("stdout = %q", stdout)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := setupTestDir(t, tt.files)
			env, stdout, stderr := testEnv()

			code := runMain(tt.args(dir), env)
			if code != tt.wantCode {
				t.Fatalf("runMain() = %d, want %d\nstdout: %s\nstderr: %s", code, tt.wantCode, stdout, stderr)
			}
			if tt.check != nil {
				tt.check(t, dir, stdout.String(), stderr.String())
			}
		})
	}
}

func TestRunMain_ConfigFile(t *testing.T) {
	t.Parallel()

	host := newGistHost(t)
	dir := setupTestDir(t, map[string]string{
		"docs/doc.md": "`gist:octocat/hello`",
	})
	cfgPath := filepath.Join(dir, "site.yaml")
	cfg := fmt.Sprintf(`input:
  defaultDir: %q
output:
  defaultDir: %q
gist:
  baseURL: %q
  classNames: embedded wide
style:
  stylesheets: false
logging:
  level: none
`, filepath.Join(dir, "docs"), filepath.Join(dir, "out"), host.URL)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}

	env, stdout, stderr := testEnv()
	if code := runMain([]string{"-c", cfgPath}, env); code != ExitSuccess {
		t.Fatalf("runMain() = %d\nstdout: %s\nstderr: %s", code, stdout, stderr)
	}

	out := readFile(t, filepath.Join(dir, "out", "doc.html"))
	if !strings.Contains(out, `class="gist embedded wide"`) {
		t.Errorf("output = %s", out)
	}
}

func TestRunMain_ConfigErrors(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{
		"bad.yaml":     "gist:\n  unknownField: 1\n",
		"invalid.yaml": "gist:\n  concurrency: 1000\n",
	})

	for _, name := range []string{"bad.yaml", "invalid.yaml", "missing.yaml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			env, _, stderr := testEnv()
			if code := runMain([]string{"-c", filepath.Join(dir, name), dir}, env); code != ExitUsage {
				t.Errorf("runMain() = %d, want %d (stderr: %s)", code, ExitUsage, stderr)
			}
		})
	}
}

func TestRunMain_PrintConfig(t *testing.T) {
	t.Parallel()

	env, stdout, stderr := testEnv()
	code := runMain([]string{"--print-config", "--class", "a,b", "--concurrency", "3", "--no-stylesheets"}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d\nstdout: %s\nstderr: %s", code, stdout, stderr)
	}

	cfgPath := filepath.Join(t.TempDir(), "effective.yaml")
	if err := os.WriteFile(cfgPath, stdout.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("printed config does not load: %v\n%s", err, stdout)
	}
	if cfg.Gist.Concurrency != 3 || cfg.Style.Stylesheets {
		t.Errorf("config = %+v %+v", cfg.Gist, cfg.Style)
	}
	if !slices.Equal(cfg.Gist.ClassNames, config.ClassList{"a", "b"}) {
		t.Errorf("ClassNames = %v", cfg.Gist.ClassNames)
	}
}

func TestRunMain_PrintConfigInvalid(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv()
	if code := runMain([]string{"--print-config", "--concurrency", "1000"}, env); code != ExitUsage {
		t.Errorf("runMain() = %d, want %d", code, ExitUsage)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout)
	}
}

// ---------------------------------------------------------------------------
// TestConvertBatch - Per-file results and ordering
// ---------------------------------------------------------------------------

// stubConverter returns canned results keyed by content.
type stubConverter struct {
	fail map[string]error
}

func (s *stubConverter) Convert(_ context.Context, in gistembed.Input) (*gistembed.ConvertResult, error) {
	return s.result(in.Markdown)
}

func (s *stubConverter) ConvertHTML(_ context.Context, content string) (*gistembed.ConvertResult, error) {
	return s.result(content)
}

func (s *stubConverter) result(content string) (*gistembed.ConvertResult, error) {
	if err := s.fail[content]; err != nil {
		return &gistembed.ConvertResult{HTML: []byte("partial"), Report: &gistembed.Report{}}, err
	}
	return &gistembed.ConvertResult{HTML: []byte("<p>" + content + "</p>"), Report: &gistembed.Report{Embedded: 1}}, nil
}

func TestConvertBatch(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{
		"a.md":      "ok-a",
		"b.md":      "broken",
		"c.html":    "ok-c",
		"d.md":      "ok-d",
		"sub/e.htm": "ok-e",
	})
	files, err := discoverFiles(dir, "")
	if err != nil {
		t.Fatal(err)
	}

	conv := &stubConverter{fail: map[string]error{"broken": gistembed.ErrNotFound}}
	results := convertBatch(context.Background(), conv, files, 2, time.Now)

	if len(results) != len(files) {
		t.Fatalf("got %d results, want %d", len(results), len(files))
	}
	for i, r := range results {
		if r.InputPath != files[i].InputPath {
			t.Errorf("results[%d] = %s, want %s", i, r.InputPath, files[i].InputPath)
		}
		broken := filepath.Base(r.InputPath) == "b.md"
		if broken != (r.Err != nil) {
			t.Errorf("%s: err = %v", r.InputPath, r.Err)
		}
		if broken {
			if fileutil.FileExists(r.OutputPath) {
				t.Errorf("%s written despite failure", r.OutputPath)
			}
			continue
		}
		if r.Embedded != 1 || !fileutil.FileExists(r.OutputPath) {
			t.Errorf("%s: embedded=%d, written=%v", r.InputPath, r.Embedded, fileutil.FileExists(r.OutputPath))
		}
	}
}

func TestConvertFile_Canceled(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"a.md": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := convertFile(ctx, &stubConverter{}, FileToConvert{
		InputPath:  filepath.Join(dir, "a.md"),
		OutputPath: filepath.Join(dir, "a.html"),
		Kind:       fileutil.KindMarkdown,
	})
	if !errors.Is(r.Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", r.Err)
	}
	if fileutil.FileExists(filepath.Join(dir, "a.html")) {
		t.Error("output written after cancellation")
	}
}

// ---------------------------------------------------------------------------
// TestReportResults - Console output
// ---------------------------------------------------------------------------

func TestReportResults(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{InputPath: "a.md", OutputPath: "a.html", Embedded: 2, Duration: 1500 * time.Microsecond},
		{InputPath: "b.md", OutputPath: "b.html", Err: gistembed.ErrNotFound},
	}

	tests := []struct {
		name       string
		quiet      bool
		verbose    bool
		wantStdout []string
		noStdout   bool
	}{
		{name: "normal", wantStdout: []string{"Created a.html", "1 succeeded, 1 failed"}},
		{name: "verbose", verbose: true, wantStdout: []string{"a.md -> a.html (2 gist(s), 2ms)"}},
		{name: "quiet", quiet: true, noStdout: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv()
			err := reportResults(results, tt.quiet, tt.verbose, env)

			var be *batchError
			if !errors.As(err, &be) || be.failed != 1 || be.total != 2 {
				t.Fatalf("reportResults() error = %v, want batchError 1/2", err)
			}
			if !errors.Is(err, gistembed.ErrNotFound) {
				t.Error("batch error does not unwrap to the file error")
			}
			if !strings.Contains(stderr.String(), "FAILED b.md") {
				t.Errorf("stderr = %q", stderr)
			}
			if tt.noStdout && stdout.Len() > 0 {
				t.Errorf("stdout = %q, want empty", stdout)
			}
			for _, want := range tt.wantStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout missing %q: %q", want, stdout)
				}
			}
		})
	}
}

func TestReportResults_AllSucceeded(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv()
	err := reportResults([]ConversionResult{{InputPath: "a.md", OutputPath: "a.html"}}, false, false, env)
	if err != nil {
		t.Fatalf("reportResults() error = %v", err)
	}
	if strings.Contains(stdout.String(), "succeeded") {
		t.Errorf("single result printed a summary: %q", stdout)
	}
}

// ---------------------------------------------------------------------------
// TestBuildOptions - Config to converter options
// ---------------------------------------------------------------------------

func TestBuildOptions(t *testing.T) {
	t.Parallel()

	userAgents := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgents <- r.UserAgent()
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Gist.BaseURL = srv.URL
	logger, err := logging.New(logging.LevelNone, &bytes.Buffer{}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	conv := gistembed.NewConverter(buildOptions(cfg, logger)...)
	_, err = conv.Convert(context.Background(), gistembed.Input{Markdown: "`gist:a/b`"})
	if !errors.Is(err, gistembed.ErrNotFound) {
		t.Fatalf("Convert() error = %v, want ErrNotFound", err)
	}
	if ua := <-userAgents; ua != "gistembed/"+Version {
		t.Errorf("User-Agent = %q", ua)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) // #nosec G304 -- test path
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}
