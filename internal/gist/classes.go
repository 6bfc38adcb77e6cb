package gist

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// HighlightClass marks a highlighted code line.
const HighlightClass = "highlighted"

// AddClass appends class names to n's class attribute, skipping names it
// already carries. Each argument may hold several whitespace-separated names.
// Applying the same class twice leaves a single occurrence.
func AddClass(n *html.Node, names ...string) {
	if n == nil || n.Type != html.ElementNode {
		return
	}

	idx := slices.IndexFunc(n.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == "class"
	})

	var current []string
	if idx >= 0 {
		current = strings.Fields(n.Attr[idx].Val)
	}

	changed := false
	for _, arg := range names {
		for _, name := range strings.Fields(arg) {
			if slices.Contains(current, name) {
				continue
			}
			current = append(current, name)
			changed = true
		}
	}
	if !changed {
		return
	}

	value := strings.Join(current, " ")
	if idx >= 0 {
		n.Attr[idx].Val = value
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: value})
}

// Classes returns the class names carried by n.
func Classes(n *html.Node) []string {
	if v, ok := Attr(n, "class"); ok {
		return strings.Fields(v)
	}
	return nil
}

// Attr returns the value of the non-namespaced attribute key.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
