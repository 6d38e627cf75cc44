package unwatch

import (
	"fmt"
	"regexp"
)

// videoIDPatterns are tried in order; the first capture wins. Covers full
// watch URLs (v= query), path-style /v/ URLs, youtu.be short links, embed
// URLs, and bare 11-character IDs.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/v/|youtu\.be/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:embed/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`^([a-zA-Z0-9_-]{11})$`),
}

// ExtractVideoID parses a user-supplied reference into the canonical
// 11-character video ID. Deterministic and side-effect free.
// Returns ErrInvalidReference when no pattern matches.
func ExtractVideoID(reference string) (string, error) {
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(reference); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReference, reference)
}
