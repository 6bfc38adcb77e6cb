package gistembed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"golang.org/x/net/html"

	"github.com/alnah/go-gistembed/internal/gist"
	"github.com/alnah/go-gistembed/internal/gisturi"
)

const testStylesheet = "https://github.githubassets.com/assets/gist-embed-test.css"

// gistServer serves gist JSON for the registered "<owner>/<id>" keys and
// 404 for anything else.
type gistServer struct {
	*httptest.Server
	gists    map[string]gist.Resource
	statuses map[string]int
	requests atomic.Int64
}

func newGistServer(t *testing.T) *gistServer {
	t.Helper()
	s := &gistServer{
		gists:    make(map[string]gist.Resource),
		statuses: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// add registers a gist with one file of lineCount lines.
func (s *gistServer) add(key, file string, lineCount int) {
	s.gists[key] = gist.Resource{
		Files:      []string{file},
		Div:        gistMarkup(key, file, lineCount),
		Stylesheet: testStylesheet,
	}
}

func (s *gistServer) serve(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	key := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".json")
	if code, ok := s.statuses[key]; ok {
		w.WriteHeader(code)
		return
	}
	res, ok := s.gists[key]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

// gistMarkup builds one root div holding a table with one row per line.
func gistMarkup(key, file string, lineCount int) string {
	id := gisturi.NormalizeFilename(file)
	var b strings.Builder
	fmt.Fprintf(&b, "<div id=\"gist-%s\" class=\"gist\"><table><tbody>", strings.ReplaceAll(key, "/", "-"))
	for i := 1; i <= lineCount; i++ {
		fmt.Fprintf(&b, "<tr><td id=\"file-%s-L%d\"></td><td id=\"file-%s-LC%d\" class=\"blob-code\">line %d</td></tr>", id, i, id, i, i)
	}
	b.WriteString("</tbody></table></div>")
	return b.String()
}

func parseHTML(t *testing.T, content string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}
	return doc
}

func renderHTML(t *testing.T, n *html.Node) string {
	t.Helper()
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		t.Fatalf("html.Render() error = %v", err)
	}
	return b.String()
}

// withFetcher replaces the HTTP fetcher.
func withFetcher(f gist.Fetcher) Option {
	return func(s *settings) {
		s.fetcher = f
	}
}

// funcFetcher adapts a function to gist.Fetcher.
type funcFetcher func(ctx context.Context, loc gisturi.Locator) (*gist.Resource, error)

func (f funcFetcher) Fetch(ctx context.Context, loc gisturi.Locator) (*gist.Resource, error) {
	return f(ctx, loc)
}
