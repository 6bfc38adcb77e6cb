package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// lineEndings folds CRLF and bare CR into LF. Arguments are tried in order,
// so "\r\n" matches before the lone "\r".
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// blankRun matches three or more newlines in a row.
var blankRun = regexp.MustCompile(`\n{3,}`)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor prepares markdown so gist references are found in
// the same place whatever editor wrote the file.
//
// A leading byte order mark becomes text in the first paragraph, so a
// reference written alone on the first line no longer fills its paragraph
// and is not promoted to replace it. Carriage returns are dropped so code
// spans and the reference inside them compare equal on every platform.
// Runs of blank lines collapse to one, keeping the rendered page identical
// between a CRLF checkout and an LF one.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown returns content unchanged once ctx is done.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}
	return normalizeSource(content)
}

func normalizeSource(content string) string {
	content = strings.TrimPrefix(content, "\uFEFF")
	content = lineEndings.Replace(content)
	return blankRun.ReplaceAllLiteralString(content, "\n\n")
}

// Compile-time interface check.
var _ MarkdownPreprocessor = (*CommonMarkPreprocessor)(nil)
