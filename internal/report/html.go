package report

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// HTMLRenderer turns feedback Markdown into HTML that is safe to embed in a
// page. Student-controlled text (file paths) flows through it, so the output
// always passes a UGC sanitiser.
type HTMLRenderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewHTMLRenderer builds a renderer with GitHub-flavoured tables.
func NewHTMLRenderer() *HTMLRenderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("details", "summary")

	return &HTMLRenderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: policy,
	}
}

// Render converts markdown and sanitises the result.
func (r *HTMLRenderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render feedback: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}
