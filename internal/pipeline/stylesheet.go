package pipeline

import (
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultHighlightCSS styles the rows marked by highlights=... in gist references.
const DefaultHighlightCSS = `.gist .blob-code.highlighted, .gist .blob-code-inner.highlighted { background-color: rgba(255, 212, 59, 0.3); }`

// StylesheetInjector defines the contract for stylesheet injection into a document tree.
type StylesheetInjector interface {
	InjectStylesheets(ctx context.Context, doc *Document, hrefs []string, css string)
}

// StylesheetInjection adds <link rel="stylesheet"> elements and a <style>
// block to a parsed document.
type StylesheetInjection struct{}

// InjectStylesheets appends one <link> per distinct href that the document
// does not already reference, followed by a <style> block holding css.
// Tries <head> first, then <body>, then the document root.
// CSS content is sanitized to prevent injection attacks.
func (s *StylesheetInjection) InjectStylesheets(ctx context.Context, doc *Document, hrefs []string, css string) {
	if ctx.Err() != nil || doc == nil || doc.Root == nil {
		return
	}

	target := injectionTarget(doc)
	existing := linkedStylesheets(doc.Root)

	var nodes []*html.Node
	for _, href := range hrefs {
		if href == "" || existing[href] {
			continue
		}
		existing[href] = true
		nodes = append(nodes, &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Link,
			Data:     "link",
			Attr: []html.Attribute{
				{Key: "rel", Val: "stylesheet"},
				{Key: "href", Val: href},
			},
		})
	}

	if css != "" {
		style := &html.Node{Type: html.ElementNode, DataAtom: atom.Style, Data: "style"}
		style.AppendChild(&html.Node{Type: html.TextNode, Data: sanitizeCSS(css)})
		nodes = append(nodes, style)
	}

	if target == doc.Root || target.DataAtom == atom.Body {
		// Prepend so styles precede the content they apply to.
		first := target.FirstChild
		for _, n := range nodes {
			target.InsertBefore(n, first)
		}
		return
	}
	for _, n := range nodes {
		target.AppendChild(n)
	}
}

// injectionTarget picks <head>, then <body>, then the root.
func injectionTarget(doc *Document) *html.Node {
	if !doc.IsFragment {
		if head := FindElement(doc.Root, atom.Head); head != nil {
			return head
		}
		if body := FindElement(doc.Root, atom.Body); body != nil {
			return body
		}
	}
	return doc.Root
}

// linkedStylesheets collects the hrefs of existing stylesheet links.
func linkedStylesheets(n *html.Node) map[string]bool {
	seen := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Link {
			var rel, href string
			for _, a := range n.Attr {
				switch a.Key {
				case "rel":
					rel = a.Val
				case "href":
					href = a.Val
				}
			}
			if strings.EqualFold(rel, "stylesheet") && href != "" {
				seen[href] = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return seen
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// Compile-time interface check.
var _ StylesheetInjector = (*StylesheetInjection)(nil)
