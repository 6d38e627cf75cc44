package unwatch

import (
	"context"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestPreviewRenderer_ToHTML - full document wrapping and content conversion
// ---------------------------------------------------------------------------

func TestPreviewRenderer_ToHTML(t *testing.T) {
	t.Parallel()

	p := NewPreviewRenderer()
	got, err := p.ToHTML(context.Background(), "My <Talk>", "# Heading\n\n**bold** text\n\n- item")
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>My &lt;Talk&gt;</title>",
		"<h1",
		"<strong>bold</strong>",
		"<li>item</li>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ToHTML() missing %q in:\n%s", want, got)
		}
	}
}

func TestPreviewRenderer_ToHTML_EscapesRawHTML(t *testing.T) {
	t.Parallel()

	p := NewPreviewRenderer()
	got, err := p.ToHTML(context.Background(), "t", "<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if strings.Contains(got, "<script>alert(1)</script>") {
		t.Error("raw HTML from transcript content was not escaped")
	}
}

func TestPreviewRenderer_ToHTML_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPreviewRenderer()
	if _, err := p.ToHTML(ctx, "t", "# x"); err == nil {
		t.Error("ToHTML() error = nil, want context error")
	}
}
