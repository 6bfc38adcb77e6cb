// Package pipeline implements the document stages around gist resolution.
//
// Stages, in the order the converter runs them:
//   - Markdown preprocessing (line-ending normalization, blank-line compression)
//   - Markdown to HTML conversion via Goldmark (GFM, syntax highlighting)
//   - Parsing HTML into a golang.org/x/net/html tree and rendering it back
//   - Stylesheet injection for embedded gists
//
// Gist references themselves are resolved by the root package, which owns
// the tree between ParseDocument and Render.
package pipeline
