package unwatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdhtml "html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrPreviewConversion indicates HTML conversion failed.
var ErrPreviewConversion = errors.New("HTML preview conversion failed")

// previewTemplate wraps Goldmark's fragment output in a complete HTML5
// document with the reading styles the browser preview uses.
const previewTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: Georgia, serif; font-size: 17px; line-height: 1.6; color: #333; max-width: 46em; margin: 2em auto; padding: 0 1em; }
h2 { border-bottom: 1px solid #ccc; padding-bottom: 0.2em; }
img { max-width: 100%%; height: auto; }
</style>
</head>
<body>
%s
</body>
</html>`

// PreviewRenderer converts a result's markdown into a standalone HTML page
// using goldmark (pure Go).
type PreviewRenderer struct {
	md goldmark.Markdown
}

// NewPreviewRenderer creates a PreviewRenderer with GFM extensions and
// syntax highlighting.
func NewPreviewRenderer() *PreviewRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // CSS classes for external stylesheet control
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(), // Treat newlines as <br>
			html.WithXHTML(),     // Self-closing tags
			// Note: WithUnsafe() intentionally NOT used; transcript content
			// comes from an external model and must stay escaped.
		),
	)
	return &PreviewRenderer{md: md}
}

// ToHTML converts a result's markdown into a standalone HTML5 document.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (p *PreviewRenderer) ToHTML(ctx context.Context, title, markdown string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := p.md.Convert([]byte(markdown), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrPreviewConversion, err)}
			return
		}
		done <- result{html: fmt.Sprintf(previewTemplate, stdhtml.EscapeString(title), buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
