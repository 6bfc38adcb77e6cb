package gist

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-gistembed/internal/gisturi"
)

// gistMarkup builds markup shaped like the "div" field of the gist JSON
// endpoint: one root div holding a table with one row per line.
func gistMarkup(file string, lineCount int) string {
	id := gisturi.NormalizeFilename(file)
	var b strings.Builder
	fmt.Fprintf(&b, "<div id=\"gist1\" class=\"gist\">\n<div class=\"gist-file\">\n<table class=\"highlight\">\n<tbody>\n")
	for i := 1; i <= lineCount; i++ {
		fmt.Fprintf(&b, "<tr>\n<td id=\"file-%s-L%d\" class=\"blob-num\" data-line-number=\"%d\"></td>\n", id, i, i)
		fmt.Fprintf(&b, "<td id=\"file-%s-LC%d\" class=\"blob-code blob-code-inner\">line %d</td>\n</tr>\n", id, i, i)
	}
	b.WriteString("</tbody>\n</table>\n</div>\n</div>\n")
	return b.String()
}

func mustParseFragment(t *testing.T, markup string) *html.Node {
	t.Helper()
	root, err := ParseFragment(markup)
	if err != nil {
		t.Fatalf("ParseFragment() error = %v", err)
	}
	return root
}

// findAll returns the elements of the subtree with the given tag, in document order.
func findAll(n *html.Node, tag atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// findByID returns the first element of the subtree whose id equals id.
func findByID(n *html.Node, id string) *html.Node {
	if v, ok := Attr(n, "id"); ok && v == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// rowLines returns the line numbers of the remaining rows, in order.
func rowLines(t *testing.T, root *html.Node, file string) []int {
	t.Helper()
	prefix := gisturi.LineIDPrefix(file)
	var lines []int
	for _, row := range findAll(root, atom.Tr) {
		for _, td := range findAll(row, atom.Td) {
			id, _ := Attr(td, "id")
			if !strings.HasPrefix(id, prefix) {
				continue
			}
			var n int
			if _, err := fmt.Sscanf(strings.TrimPrefix(id, prefix), "%d", &n); err != nil {
				t.Fatalf("unexpected id %q", id)
			}
			lines = append(lines, n)
		}
	}
	return lines
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		t.Fatalf("html.Render() error = %v", err)
	}
	return b.String()
}

// fakeFetcher returns a fixed resource or error and records the locators it saw.
type fakeFetcher struct {
	res  *Resource
	err  error
	seen []gisturi.Locator
}

func (f *fakeFetcher) Fetch(_ context.Context, loc gisturi.Locator) (*Resource, error) {
	f.seen = append(f.seen, loc)
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}
