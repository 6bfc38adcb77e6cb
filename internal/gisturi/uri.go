// Package gisturi parses gist: references into structured locators.
//
// A reference has the form:
//
//	gist:<owner>/<id>[?file=<name>][&lines=<range-list>][&highlights=<range-list>]
//
// Parsing is pure and performs no I/O.
package gisturi

import (
	"net/url"
	"strings"
)

// Scheme is the prefix every gist reference starts with.
const Scheme = "gist:"

// Recognized query keys.
const (
	keyFile       = "file"
	keyLines      = "lines"
	keyHighlights = "highlights"
)

// Locator is the parsed form of a gist: URI.
type Locator struct {
	Owner      string
	ID         string
	File       string  // empty when no file was selected
	Lines      LineSet // lines to remove from the rendered snippet
	Highlights LineSet // lines to mark as highlighted
}

// HasFile reports whether the locator selects a single file of the gist.
func (l Locator) HasFile() bool {
	return l.File != ""
}

// String renders the locator back into gist: URI form.
func (l Locator) String() string {
	var b strings.Builder
	b.WriteString(Scheme)
	b.WriteString(l.Owner)
	b.WriteByte('/')
	b.WriteString(l.ID)

	var params []string
	if l.File != "" {
		params = append(params, keyFile+"="+url.QueryEscape(l.File))
	}
	if len(l.Lines) > 0 {
		params = append(params, keyLines+"="+l.Lines.String())
	}
	if len(l.Highlights) > 0 {
		params = append(params, keyHighlights+"="+l.Highlights.String())
	}
	if len(params) > 0 {
		b.WriteByte('?')
		b.WriteString(strings.Join(params, "&"))
	}
	return b.String()
}

// IsReference reports whether s carries the gist: prefix.
// It does not validate the rest of the reference.
func IsReference(s string) bool {
	return strings.HasPrefix(s, Scheme)
}

// Parse converts a gist: URI into a Locator.
// The boolean is false when the string is not a well-formed gist reference:
// missing prefix, more than one '?', or a path that is not exactly owner/id.
// Unknown query keys are ignored; malformed range tokens are dropped.
func Parse(uri string) (Locator, bool) {
	if !IsReference(uri) {
		return Locator{}, false
	}
	rest := strings.TrimPrefix(uri, Scheme)

	if strings.Count(rest, "?") > 1 {
		return Locator{}, false
	}
	path, query, _ := strings.Cut(rest, "?")

	segments := strings.Split(path, "/")
	if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
		return Locator{}, false
	}

	loc := Locator{
		Owner:      segments[0],
		ID:         segments[1],
		Lines:      LineSet{},
		Highlights: LineSet{},
	}

	var lines, highlights []string
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		value = unescape(value)
		switch unescape(key) {
		case keyFile:
			loc.File = value
		case keyLines:
			lines = append(lines, value)
		case keyHighlights:
			highlights = append(highlights, value)
		}
	}

	loc.Lines = ParseRangeList(strings.Join(lines, ","))
	loc.Highlights = ParseRangeList(strings.Join(highlights, ","))
	return loc, true
}

// unescape percent-decodes a query component, keeping the raw text when
// the encoding is invalid.
func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
