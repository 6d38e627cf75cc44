package unwatch

import (
	"fmt"
	"regexp"
	"strings"
)

// maxFilenameLen caps sanitized filenames in characters, extension excluded.
const maxFilenameLen = 100

// thumbnailURLTemplate is YouTube's highest-resolution still frame.
const thumbnailURLTemplate = "https://img.youtube.com/vi/%s/maxresdefault.jpg"

// AssembleDocument combines the pipeline outputs into the final markdown
// document and derives its result record. Pure; no failure mode beyond
// input validity.
func AssembleDocument(info VideoInfo, sourceURL, takeaways, transcript string) Result {
	thumbnailURL := fmt.Sprintf(thumbnailURLTemplate, info.ID)

	var b strings.Builder
	fmt.Fprintf(&b, "![Thumbnail](%s)\n\n", thumbnailURL)
	fmt.Fprintf(&b, "# %s\n\n", info.Title)
	fmt.Fprintf(&b, "Source: %s\n\n", sourceURL)
	b.WriteString("## Top Takeaways\n\n")
	b.WriteString(takeaways)
	b.WriteString("\n\n---\n\n")
	b.WriteString("## Full Transcript\n\n")
	b.WriteString(transcript)

	return Result{
		Title:      info.Title,
		URL:        sourceURL,
		Takeaways:  takeaways,
		Transcript: transcript,
		Markdown:   b.String(),
		Filename:   SanitizeFilename(info.Title) + ".md",
	}
}

var (
	hostileCharsRe = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// SanitizeFilename converts a video title to a filesystem-safe name:
// path-hostile characters stripped, whitespace runs collapsed to a single
// underscore, length capped. The extension is the caller's business.
func SanitizeFilename(title string) string {
	safe := hostileCharsRe.ReplaceAllString(title, "")
	safe = whitespaceRe.ReplaceAllString(safe, "_")
	// Cap by runes; a byte cut could split a multibyte character and
	// produce an invalid-UTF-8 filename.
	if runes := []rune(safe); len(runes) > maxFilenameLen {
		safe = string(runes[:maxFilenameLen])
	}
	return safe
}
