package gistembed

import (
	"context"
	"fmt"

	"github.com/alnah/go-gistembed/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.StylesheetInjector   = (*pipeline.StylesheetInjection)(nil)
)

// Input is a Markdown document to convert.
type Input struct {
	Markdown string
	Title    string // <title> of the generated page; DefaultTitle when empty
}

// DefaultTitle is used when Input.Title is empty.
const DefaultTitle = pipeline.DefaultTitle

// ConvertResult holds the rendered HTML and what the gist pass did.
type ConvertResult struct {
	HTML   []byte
	Report *Report
}

// Converter turns Markdown or HTML documents into HTML with their gist
// references embedded. Create with NewConverter.
type Converter struct {
	cfg                settings
	preprocessor       pipeline.MarkdownPreprocessor
	htmlConverter      pipeline.HTMLConverter
	stylesheetInjector pipeline.StylesheetInjector
	transformer        *Transformer
}

// NewConverter creates a Converter. It accepts the same options as
// NewTransformer plus WithStylesheets and WithHighlightCSS.
func NewConverter(opts ...Option) *Converter {
	cfg := newSettings(opts)
	return &Converter{
		cfg:                cfg,
		preprocessor:       &pipeline.CommonMarkPreprocessor{},
		htmlConverter:      pipeline.NewGoldmarkConverter(),
		stylesheetInjector: &pipeline.StylesheetInjection{},
		transformer:        newTransformer(cfg),
	}
}

// Convert renders input.Markdown to a standalone HTML page and embeds its
// gist references.
//
// When some references fail, the result is still returned alongside the
// aggregate error so callers can decide whether a partial page is usable.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	if input.Markdown == "" {
		return nil, ErrEmptyInput
	}

	mdContent := c.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	htmlContent, err := c.htmlConverter.ToHTML(ctx, mdContent, input.Title)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	return c.embed(ctx, htmlContent)
}

// ConvertHTML embeds the gist references of an existing HTML document or
// fragment. Fragments stay fragments.
func (c *Converter) ConvertHTML(ctx context.Context, content string) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	if content == "" {
		return nil, ErrEmptyInput
	}
	return c.embed(ctx, content)
}

// embed runs parse, transform, stylesheet injection and render.
func (c *Converter) embed(ctx context.Context, content string) (*ConvertResult, error) {
	doc, err := pipeline.ParseDocument(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLParse, err)
	}

	report, transformErr := c.transformer.Apply(ctx, doc.Root)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if c.cfg.stylesheets && report.Embedded > 0 {
		c.stylesheetInjector.InjectStylesheets(ctx, doc, report.Stylesheets, c.cfg.highlightCSS)
	}

	out, err := doc.Render()
	if err != nil {
		return nil, fmt.Errorf("rendering HTML: %w", err)
	}

	return &ConvertResult{HTML: []byte(out), Report: report}, transformErr
}
