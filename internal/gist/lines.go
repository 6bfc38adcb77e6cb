package gist

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-gistembed/internal/gisturi"
)

// SelectLines edits rendered gist markup in place: rows whose line number is
// in lines are removed, code cells whose line number is in highlights gain
// the HighlightClass. Rows are matched through the id of their code cell
// ("file-<normalized file>-LC<n>").
//
// It is a no-op when file is empty or both sets are empty. Returns root.
func SelectLines(root *html.Node, file string, lines, highlights gisturi.LineSet) *html.Node {
	if root == nil || file == "" || (len(lines) == 0 && len(highlights) == 0) {
		return root
	}

	s := lineSelector{
		prefix:     gisturi.LineIDPrefix(file),
		lines:      lines,
		highlights: highlights,
	}
	s.visit(root)
	return root
}

type lineSelector struct {
	prefix     string
	lines      gisturi.LineSet
	highlights gisturi.LineSet
}

// visit walks n depth-first, pre-order. The next sibling is read before a
// child is visited, so a child may detach itself without breaking iteration.
func (s *lineSelector) visit(n *html.Node) {
	if s.isRow(n) && s.apply(n) {
		return // removed
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		s.visit(c)
		c = next
	}
}

func (s *lineSelector) isRow(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Tr
}

// apply edits a row and reports whether it was removed from its parent.
func (s *lineSelector) apply(row *html.Node) bool {
	cell := s.findLineCell(row)
	if cell == nil {
		return false
	}

	id, _ := Attr(cell, "id")
	line, ok := s.lineNumber(id)
	if !ok {
		return false
	}

	if s.highlights.Has(line) {
		AddClass(cell, HighlightClass)
	}

	if s.lines.Has(line) && row.Parent != nil {
		row.Parent.RemoveChild(row)
		return true
	}
	return false
}

// findLineCell returns the first descendant element of row whose id
// contains the line prefix.
func (s *lineSelector) findLineCell(row *html.Node) *html.Node {
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if id, ok := Attr(c, "id"); ok && strings.Contains(id, s.prefix) {
			return c
		}
		if found := s.findLineCell(c); found != nil {
			return found
		}
	}
	return nil
}

// lineNumber extracts the integer that follows the prefix in id.
func (s *lineSelector) lineNumber(id string) (int, bool) {
	idx := strings.Index(id, s.prefix)
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(id[idx+len(s.prefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
