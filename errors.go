package gistembed

import (
	"errors"

	"github.com/alnah/go-gistembed/internal/gist"
	"github.com/alnah/go-gistembed/internal/pipeline"
)

// Sentinel errors for gist resolution. Every failure returned by
// Transformer.Transform or Converter.Convert wraps one of these.
var (
	ErrInvalidURI          = gist.ErrInvalidURI
	ErrNotFound            = gist.ErrNotFound
	ErrRemoteServer        = gist.ErrRemoteServer
	ErrUnsupportedResponse = gist.ErrUnsupportedResponse
	ErrInvalidResponse     = gist.ErrInvalidResponse
	ErrMalformedFragment   = gist.ErrMalformedFragment
)

// Sentinel errors for conversion.
var (
	ErrEmptyInput     = errors.New("input content cannot be empty")
	ErrHTMLConversion = pipeline.ErrHTMLConversion
	ErrHTMLParse      = errors.New("HTML parsing failed")
)

// ResponseError describes a non-200 answer from the gist service.
// Use errors.As to read the URL and status of a failed fetch.
type ResponseError = gist.ResponseError
