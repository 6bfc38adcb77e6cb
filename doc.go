// Package gistembed replaces gist references in HTML documents with
// statically rendered copies of the referenced GitHub gists.
//
// # References
//
// A reference is inline code whose text uses the gist: scheme:
//
//	`gist:<owner>/<id>[?file=<name>][&lines=<ranges>][&highlights=<ranges>]`
//
// Without file, the whole gist is embedded. With file, only that file is kept
// and lines/highlights select rows from it. Ranges are comma-separated
// numbers or inclusive spans such as "1-3,7". lines removes the listed rows;
// highlights adds the "highlighted" class to them.
//
// # Quick Start
//
// Convert a Markdown document into a standalone HTML page:
//
//	conv := gistembed.NewConverter()
//	result, err := conv.Convert(ctx, gistembed.Input{
//	    Markdown: "# Notes\n\n`gist:octocat/6cad326836d38bd3a7ae`\n",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("notes.html", result.HTML, 0o644)
//
// Or run the transformation on a tree you already own:
//
//	t := gistembed.NewTransformer(gistembed.WithClassNames("embedded"))
//	doc, err = t.Transform(ctx, doc)
//
// # Placement
//
// A reference that is the only child of a paragraph replaces the paragraph
// (WithReplaceParentParagraph). A paragraph holding other content is left
// alone. References inside <pre> blocks are skipped (WithOmitCodeBlocks).
//
// # Errors
//
// All references of a document are fetched concurrently. Failures do not stop
// the others: successful references are embedded and the failures are
// returned together. Every failure wraps one of the sentinel errors
// (ErrInvalidURI, ErrNotFound, ErrRemoteServer, ErrUnsupportedResponse,
// ErrInvalidResponse, ErrMalformedFragment), so errors.Is works on the
// aggregate:
//
//	if errors.Is(err, gistembed.ErrNotFound) {
//	    // at least one gist does not exist
//	}
//
// Use multierr.Errors to list the individual failures, or WithIgnoreErrors to
// log them and leave the failed references untouched.
package gistembed
