// Package gist resolves gist: references into embeddable HTML elements.
//
// Resolution runs four steps: parse the reference (gisturi.Parse), fetch
// the remote JSON (Fetcher), parse its markup into exactly one element
// (ParseFragment) and edit the requested lines (SelectLines).
package gist

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/alnah/go-gistembed/internal/gisturi"
)

// Embed is a resolved gist reference.
type Embed struct {
	Element    *html.Node // detached root element, ready to splice
	Locator    gisturi.Locator
	Stylesheet string   // stylesheet URL advertised by the gist service
	Files      []string // file names of the gist
}

// Resolver turns gist: URIs into Embeds.
type Resolver struct {
	fetcher    Fetcher
	classNames []string
	logger     *zap.Logger
}

// NewResolver creates a Resolver. classNames are added to every embed root.
func NewResolver(fetcher Fetcher, classNames []string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		fetcher:    fetcher,
		classNames: classNames,
		logger:     logger,
	}
}

// Resolve parses uri, fetches the gist, validates its markup and applies
// line removal and highlighting. Fetch errors are returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, uri string) (*Embed, error) {
	loc, ok := gisturi.Parse(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}

	res, err := r.fetcher.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}

	root, err := ParseFragment(res.Div)
	if err != nil {
		return nil, err
	}

	SelectLines(root, loc.File, loc.Lines, loc.Highlights)
	AddClass(root, r.classNames...)

	r.logger.Debug("Resolved gist",
		zap.String("owner", loc.Owner),
		zap.String("id", loc.ID),
		zap.String("file", loc.File),
		zap.Stringer("lines", loc.Lines),
		zap.Stringer("highlights", loc.Highlights))

	return &Embed{
		Element:    root,
		Locator:    loc,
		Stylesheet: res.Stylesheet,
		Files:      res.Files,
	}, nil
}
