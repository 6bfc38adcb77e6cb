package gistembed

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-gistembed/internal/gist"
	"github.com/alnah/go-gistembed/internal/gisturi"
)

// Transformer replaces gist references in an HTML tree with embedded gists.
// It is safe for concurrent use; each call works on its own tree.
type Transformer struct {
	cfg      settings
	resolver *gist.Resolver
}

// Report summarizes one Transform pass.
type Report struct {
	References  int      // reference nodes found
	Embedded    int      // references replaced by an embed
	Skipped     int      // references left alone by the <pre>/<p> rules
	Failed      int      // references whose resolution failed
	Stylesheets []string // distinct stylesheet URLs of the embeds, in document order
}

// NewTransformer creates a Transformer.
// Defaults: replace single-child paragraphs, leave <pre> blocks alone.
func NewTransformer(opts ...Option) *Transformer {
	return newTransformer(newSettings(opts))
}

func newTransformer(cfg settings) *Transformer {
	return &Transformer{
		cfg:      cfg,
		resolver: gist.NewResolver(cfg.newFetcher(), cfg.classNames, cfg.logger),
	}
}

// Step is the signature of a tree transformation in a document pipeline.
type Step func(ctx context.Context, doc *html.Node) (*html.Node, error)

// NewStep returns the gist transformation as a pipeline Step.
func NewStep(opts ...Option) Step {
	return NewTransformer(opts...).Transform
}

// Transform resolves every gist reference in doc and splices the results
// in place. It returns doc.
//
// All references are resolved concurrently and every resolution runs to
// completion. Successful references are spliced even when others fail; the
// failures are returned together as one error (see multierr.Errors).
func (t *Transformer) Transform(ctx context.Context, doc *html.Node) (*html.Node, error) {
	_, err := t.Apply(ctx, doc)
	return doc, err
}

// Apply is Transform with a report of what happened.
func (t *Transformer) Apply(ctx context.Context, doc *html.Node) (*Report, error) {
	report := &Report{}
	if doc == nil {
		return report, nil
	}

	refs := collectReferences(doc)
	report.References = len(refs)

	eligible := make([]reference, 0, len(refs))
	for _, ref := range refs {
		if reason := t.skipReason(ref); reason != "" {
			report.Skipped++
			t.cfg.logger.Debug("Skipping gist reference", zap.String("uri", ref.uri), zap.String("reason", reason))
			continue
		}
		eligible = append(eligible, ref)
	}

	outcomes := t.resolveAll(ctx, eligible)

	var errs error
	for i, ref := range eligible {
		out := outcomes[i]
		if out.err != nil {
			report.Failed++
			err := fmt.Errorf("resolving %q: %w", ref.uri, out.err)
			if t.cfg.ignoreErrors {
				t.cfg.logger.Warn("Gist reference left unresolved", zap.Error(err))
				continue
			}
			errs = multierr.Append(errs, err)
			continue
		}

		t.splice(ref, out.embed.Element)
		report.Embedded++
		if sheet := out.embed.Stylesheet; sheet != "" && !slices.Contains(report.Stylesheets, sheet) {
			report.Stylesheets = append(report.Stylesheets, sheet)
		}
	}

	t.cfg.logger.Debug("Gist references processed",
		zap.Int("found", report.References),
		zap.Int("embedded", report.Embedded),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))

	return report, errs
}

// reference is a <code> node holding a gist: URI, captured with its parent
// before any mutation.
type reference struct {
	node   *html.Node
	parent *html.Node
	uri    string
}

type outcome struct {
	embed *gist.Embed
	err   error
}

// resolveAll resolves the references concurrently. Outcomes are indexed like
// refs; goroutines never touch the tree.
func (t *Transformer) resolveAll(ctx context.Context, refs []reference) []outcome {
	outcomes := make([]outcome, len(refs))

	var g errgroup.Group
	if t.cfg.concurrency > 0 {
		g.SetLimit(t.cfg.concurrency)
	}
	for i, ref := range refs {
		g.Go(func() error {
			embed, err := t.resolver.Resolve(ctx, ref.uri)
			outcomes[i] = outcome{embed: embed, err: err}
			return nil
		})
	}
	_ = g.Wait() // group funcs never fail; outcomes carry the errors

	return outcomes
}

// skipReason returns why ref must be left alone, or "" when it is eligible.
func (t *Transformer) skipReason(ref reference) string {
	if t.cfg.omitCodeBlocks && isElement(ref.parent, atom.Pre) {
		return "inside code block"
	}
	// A paragraph holding anything besides the reference cannot be replaced.
	if t.cfg.replaceParentParagraph && isElement(ref.parent, atom.P) && countChildren(ref.parent) > 1 {
		return "paragraph has other content"
	}
	return ""
}

// splice overwrites the reference, or its single-child paragraph, with the
// embed. The overwritten node keeps its place in its parent's child list.
func (t *Transformer) splice(ref reference, embed *html.Node) {
	target := ref.node
	if t.cfg.replaceParentParagraph && isElement(ref.parent, atom.P) {
		target = ref.parent
	}
	overwrite(target, embed)
}

// collectReferences returns the gist reference nodes of the tree in
// document order.
func collectReferences(root *html.Node) []reference {
	var refs []reference
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if uri, ok := referenceURI(n); ok {
			refs = append(refs, reference{node: n, parent: n.Parent, uri: uri})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return refs
}

// referenceURI reports whether n is a <code> element whose only child is a
// text node starting with "gist:", and returns that text.
func referenceURI(n *html.Node) (string, bool) {
	if !isElement(n, atom.Code) {
		return "", false
	}
	child := n.FirstChild
	if child == nil || child != n.LastChild || child.Type != html.TextNode {
		return "", false
	}
	if !gisturi.IsReference(child.Data) {
		return "", false
	}
	return child.Data, true
}

// overwrite replaces dst's content and identity fields with src's, leaving
// dst's position in the tree unchanged. src is emptied.
func overwrite(dst, src *html.Node) {
	for c := dst.FirstChild; c != nil; {
		next := c.NextSibling
		dst.RemoveChild(c)
		c = next
	}

	dst.Type = src.Type
	dst.DataAtom = src.DataAtom
	dst.Data = src.Data
	dst.Namespace = src.Namespace
	dst.Attr = slices.Clone(src.Attr)

	for c := src.FirstChild; c != nil; {
		next := c.NextSibling
		src.RemoveChild(c)
		dst.AppendChild(c)
		c = next
	}
}

func isElement(n *html.Node, a atom.Atom) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == a
}

func countChildren(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}
