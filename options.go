package gistembed

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/alnah/go-gistembed/internal/gist"
	"github.com/alnah/go-gistembed/internal/pipeline"
)

// Option configures a Transformer or a Converter.
type Option func(*settings)

// settings holds the resolved options shared by Transformer and Converter.
type settings struct {
	replaceParentParagraph bool
	omitCodeBlocks         bool
	classNames             []string
	ignoreErrors           bool
	concurrency            int

	httpClient *http.Client
	baseURL    string
	userAgent  string
	fetcher    gist.Fetcher // set by tests in this package

	stylesheets  bool
	highlightCSS string

	logger *zap.Logger
}

// DefaultUserAgent is sent with every gist request unless overridden.
const DefaultUserAgent = "go-gistembed"

func defaultSettings() settings {
	return settings{
		replaceParentParagraph: true,
		omitCodeBlocks:         true,
		baseURL:                gist.DefaultBaseURL,
		userAgent:              DefaultUserAgent,
		stylesheets:            true,
		highlightCSS:           pipeline.DefaultHighlightCSS,
		logger:                 zap.NewNop(),
	}
}

func newSettings(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithReplaceParentParagraph controls whether a reference that is the only
// child of a <p> replaces the paragraph instead of the <code> element.
// Defaults to true.
func WithReplaceParentParagraph(v bool) Option {
	return func(s *settings) {
		s.replaceParentParagraph = v
	}
}

// WithOmitCodeBlocks controls whether references directly inside <pre> are
// left alone. Defaults to true.
func WithOmitCodeBlocks(v bool) Option {
	return func(s *settings) {
		s.omitCodeBlocks = v
	}
}

// WithClassNames adds class names to the root element of every embed.
// Each argument may hold several whitespace-separated names.
func WithClassNames(names ...string) Option {
	return func(s *settings) {
		s.classNames = append(s.classNames, names...)
	}
}

// WithIgnoreErrors makes failed references non-fatal: they are logged at
// warn level and left untouched. By default failures are returned.
func WithIgnoreErrors(v bool) Option {
	return func(s *settings) {
		s.ignoreErrors = v
	}
}

// WithConcurrency bounds the number of gists fetched at once.
// Zero or a negative value means no limit.
func WithConcurrency(n int) Option {
	return func(s *settings) {
		s.concurrency = max(n, 0)
	}
}

// WithHTTPClient sets the client used to fetch gists.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		s.httpClient = c
	}
}

// WithBaseURL overrides the gist host (https://gist.github.com).
func WithBaseURL(u string) Option {
	return func(s *settings) {
		if u != "" {
			s.baseURL = u
		}
	}
}

// WithUserAgent sets the User-Agent header of gist requests.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		s.userAgent = ua
	}
}

// WithStylesheets controls whether Converter links the stylesheets that
// embedded gists advertise and adds the highlight CSS. Defaults to true.
func WithStylesheets(v bool) Option {
	return func(s *settings) {
		s.stylesheets = v
	}
}

// WithHighlightCSS replaces the CSS injected for highlighted lines.
// An empty string disables it.
func WithHighlightCSS(css string) Option {
	return func(s *settings) {
		s.highlightCSS = css
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// newFetcher builds the HTTP fetcher described by the settings, unless a
// fetcher was injected.
func (s settings) newFetcher() gist.Fetcher {
	if s.fetcher != nil {
		return s.fetcher
	}
	return gist.NewHTTPFetcher(
		gist.WithClient(s.httpClient),
		gist.WithBaseURL(s.baseURL),
		gist.WithUserAgent(s.userAgent),
		gist.WithFetchLogger(s.logger),
	)
}
