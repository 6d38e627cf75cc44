package unwatch

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// TestAssembleDocument - section order and field wiring
// ---------------------------------------------------------------------------

func TestAssembleDocument(t *testing.T) {
	t.Parallel()

	info := VideoInfo{ID: "dQw4w9WgXcQ", Title: "A Great Talk"}
	res := AssembleDocument(info, "https://youtu.be/dQw4w9WgXcQ", "- One\n- Two", "### Intro\n\nHello.")

	wantInOrder := []string{
		"![Thumbnail](https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg)",
		"# A Great Talk",
		"Source: https://youtu.be/dQw4w9WgXcQ",
		"## Top Takeaways",
		"- One\n- Two",
		"---",
		"## Full Transcript",
		"### Intro",
	}

	pos := 0
	for _, want := range wantInOrder {
		idx := strings.Index(res.Markdown[pos:], want)
		if idx < 0 {
			t.Fatalf("markdown missing %q after position %d:\n%s", want, pos, res.Markdown)
		}
		pos += idx
	}

	if res.Title != "A Great Talk" {
		t.Errorf("Title = %q, want %q", res.Title, "A Great Talk")
	}
	if res.Filename != "A_Great_Talk.md" {
		t.Errorf("Filename = %q, want %q", res.Filename, "A_Great_Talk.md")
	}
	if res.Takeaways != "- One\n- Two" {
		t.Errorf("Takeaways = %q", res.Takeaways)
	}
	if res.Transcript != "### Intro\n\nHello." {
		t.Errorf("Transcript = %q", res.Transcript)
	}
}

// ---------------------------------------------------------------------------
// TestSanitizeFilename - hostile characters and whitespace handling
// ---------------------------------------------------------------------------

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain title", "Hello World", "Hello_World"},
		{"hostile characters", `Show: "Live"/2024?`, "Show_Live2024"},
		{"path traversal", `..\..\evil`, "....evil"},
		{"whitespace runs", "a   b\t\tc", "a_b_c"},
		{"pipe and asterisk", "a|b*c", "abc"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SanitizeFilename(tt.title)
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.title, got, tt.want)
			}
			if strings.ContainsAny(got, `<>:"/\|?*`) {
				t.Errorf("SanitizeFilename(%q) = %q contains hostile characters", tt.title, got)
			}
			if strings.ContainsAny(got, " \t\n") {
				t.Errorf("SanitizeFilename(%q) = %q contains raw whitespace", tt.title, got)
			}
		})
	}
}

func TestSanitizeFilename_LengthCap(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 500)
	got := SanitizeFilename(long)
	if len(got) != maxFilenameLen {
		t.Errorf("len = %d, want %d", len(got), maxFilenameLen)
	}
}

func TestSanitizeFilename_LengthCapMultibyte(t *testing.T) {
	t.Parallel()

	// The cap counts characters, so a cut must never land inside a
	// multibyte rune.
	long := strings.Repeat("日本語のタイトル", 50)
	got := SanitizeFilename(long)

	if !utf8.ValidString(got) {
		t.Fatalf("SanitizeFilename produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != maxFilenameLen {
		t.Errorf("rune count = %d, want %d", n, maxFilenameLen)
	}
}
