package unwatch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// TranscriptExtractor extracts the raw caption text for a video.
type TranscriptExtractor interface {
	Extract(ctx context.Context, videoID string) (string, error)
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Compile-time check that YTDLPExtractor implements TranscriptExtractor.
var _ TranscriptExtractor = (*YTDLPExtractor)(nil)

// YTDLPExtractor downloads English auto-captions with yt-dlp and parses the
// resulting VTT file. Only subtitles are fetched; the video itself is skipped.
type YTDLPExtractor struct {
	binary    string
	proxyURL  string // optional egress routing, passed as --proxy
	runner    commandRunner
	mkdirTemp func(dir, pattern string) (string, error)
}

// NewYTDLPExtractor creates an extractor invoking the given yt-dlp binary.
// proxyURL may be empty; when set it is forwarded to yt-dlp as --proxy.
func NewYTDLPExtractor(binary, proxyURL string) *YTDLPExtractor {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &YTDLPExtractor{
		binary:    binary,
		proxyURL:  proxyURL,
		runner:    execRunner{},
		mkdirTemp: os.MkdirTemp,
	}
}

// Extract downloads and parses the caption track for videoID.
// Returns ErrTranscriptUnavailable if yt-dlp fails or no caption track exists.
func (e *YTDLPExtractor) Extract(ctx context.Context, videoID string) (string, error) {
	tmpDir, err := e.mkdirTemp("", "unwatch-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptUnavailable, err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	url := "https://www.youtube.com/watch?v=" + videoID
	args := buildYTDLPArgs(url, tmpDir, e.proxyURL)

	if _, stderr, runErr := e.runner.Run(ctx, e.binary, args...); runErr != nil {
		return "", fmt.Errorf("%w: %s", ErrTranscriptUnavailable, firstLine(stderr))
	}

	vttFiles, err := filepath.Glob(filepath.Join(tmpDir, "*.vtt"))
	if err != nil || len(vttFiles) == 0 {
		return "", fmt.Errorf("%w: no caption track found", ErrTranscriptUnavailable)
	}

	content, err := os.ReadFile(vttFiles[0]) // #nosec G304 -- path comes from our own temp dir
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptUnavailable, err)
	}

	text := ParseVTT(string(content))
	if text == "" {
		return "", fmt.Errorf("%w: caption track is empty", ErrTranscriptUnavailable)
	}
	return text, nil
}

// buildYTDLPArgs builds the subtitle-only download invocation.
func buildYTDLPArgs(url, outDir, proxyURL string) []string {
	args := []string{
		"--write-auto-sub",
		"--sub-lang", "en",
		"--skip-download",
		"--sub-format", "vtt",
		"-o", filepath.Join(outDir, "%(id)s.%(ext)s"),
	}
	if proxyURL != "" {
		args = append(args, "--proxy", proxyURL)
	}
	return append(args, url)
}

// firstLine trims command output to its first non-empty line for error messages.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return "yt-dlp failed"
}

// VTT structural line patterns.
var (
	vttTimestampRe = regexp.MustCompile(`^\d{2}:\d{2}`)
	vttCueRe       = regexp.MustCompile(`^[\d\-:.\s>]+$`)
	vttTagRe       = regexp.MustCompile(`<[^>]+>`)
)

// ParseVTT extracts the spoken text from a WEBVTT caption file.
// Headers, timestamps, cue identifiers, and formatting tags are stripped;
// each distinct text line is kept once, no matter how often the caption
// track repeats it. The result is a single space-joined string.
func ParseVTT(content string) string {
	var textLines []string
	seen := make(map[string]struct{})

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" ||
			strings.HasPrefix(line, "WEBVTT") ||
			strings.HasPrefix(line, "Kind:") ||
			strings.HasPrefix(line, "Language:") ||
			vttTimestampRe.MatchString(line) ||
			vttCueRe.MatchString(line) {
			continue
		}

		line = vttTagRe.ReplaceAllString(line, "")
		line = strings.ReplaceAll(line, "&nbsp;", " ")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		textLines = append(textLines, line)
	}

	return strings.Join(textLines, " ")
}
