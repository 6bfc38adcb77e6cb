package gist

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses remote markup and returns its single root element,
// detached from any parent. Text and comment nodes at the top level are
// ignored; zero or several top-level elements yield ErrMalformedFragment.
func ParseFragment(markup string) (*html.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFragment, err)
	}

	var root *html.Node
	count := 0
	for _, n := range nodes {
		if n.Type != html.ElementNode {
			continue
		}
		count++
		root = n
	}
	if count != 1 {
		return nil, fmt.Errorf("%w: expected one root element, found %d", ErrMalformedFragment, count)
	}

	if root.Parent != nil {
		root.Parent.RemoveChild(root)
	}
	return root, nil
}
