package unwatch

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// TranscriptCleaner rewrites a raw transcript into clean, chaptered markdown.
type TranscriptCleaner interface {
	Clean(ctx context.Context, transcript, title string) (string, error)
}

// HighlightGenerator produces the five-bullet takeaway list for a transcript.
type HighlightGenerator interface {
	Takeaways(ctx context.Context, transcript, title string) (string, error)
}

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// cleanPromptTemplate instructs the model to clean the transcript while
// preserving its substance: speaker-turn paragraph breaks, level-3 chapter
// subheadings, and a 200-word paragraph ceiling.
const cleanPromptTemplate = `Clean up this podcast transcript for %q.

Combine paragraphs from the same speaker, fix capitalization and punctuation, remove filler words like unnecessary "like"s "you know"s and "um"s, and remove repeated words. If there are names, use context clues to figure out who it is. Make sure all sentences are grammatical, but do not add new phrases/clauses/ideas of your own.

Split the transcript into natural paragraphs, where each paragraph is maximum 200 words. For podcasts with multiple speakers, there should always be a line break between each speaker's section and the next (even if this results in short paragraphs).

After cleaning the transcript, add chapters to split up sections/themes. Give each chapter a bolded title and insert them into the transcript as subheaders (use ### markdown formatting). The title should be a single short sentence expressing the key takeaway of that chapter. Each chapter should contain at least two paragraphs.

Otherwise, modify the original substance the minimum amount. Make sure the transcript is complete and not missing chunks. Be very meticulous.

Return ONLY the cleaned transcript. Do not include any intro text like "Here's the cleaned transcript..." - just start directly with the first chapter heading and content.

TRANSCRIPT:
%s`

// takeawaysPromptTemplate asks for exactly five single-sentence bullets.
const takeawaysPromptTemplate = `Read this transcript for %q and extract the top 5 takeaways.

Each takeaway should be:
- One sentence, maximum 20 words
- Crisp and clear with minimum jargon
- A key insight, announcement, or important point from the video

Return ONLY a bullet list with exactly 5 items. Do not include any intro text like "Here are the takeaways" - just the bullet points.

TRANSCRIPT:
%s`

// textGenerator is the single-call surface we need from the Gemini SDK,
// abstracted so tests can substitute a canned model.
type textGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// genaiGenerator calls the Gemini API through google.golang.org/genai.
type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Compile-time checks that GeminiCleaner covers both Gemini-backed stages.
var (
	_ TranscriptCleaner  = (*GeminiCleaner)(nil)
	_ HighlightGenerator = (*GeminiCleaner)(nil)
)

// GeminiCleaner implements TranscriptCleaner and HighlightGenerator on top
// of the Gemini API.
type GeminiCleaner struct {
	gen textGenerator
}

// NewGeminiCleaner creates a cleaner bound to the given API key and model.
// An empty model selects DefaultGeminiModel. Returns ErrMissingAPIKey when
// apiKey is empty.
func NewGeminiCleaner(ctx context.Context, apiKey, model string) (*GeminiCleaner, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCleaningFailed, err)
	}

	return &GeminiCleaner{gen: &genaiGenerator{client: client, model: model}}, nil
}

// Clean rewrites the raw transcript into clean, chaptered markdown.
// Returns ErrCleaningFailed on API errors or an empty model response.
func (c *GeminiCleaner) Clean(ctx context.Context, transcript, title string) (string, error) {
	prompt := fmt.Sprintf(cleanPromptTemplate, title, transcript)
	out, err := c.gen.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCleaningFailed, err)
	}
	out = stripFences(out)
	if out == "" {
		return "", fmt.Errorf("%w: model returned empty response", ErrCleaningFailed)
	}
	return out, nil
}

// Takeaways generates the five-bullet highlight list.
// Returns ErrGenerationFailed on API errors or an empty model response.
func (c *GeminiCleaner) Takeaways(ctx context.Context, transcript, title string) (string, error) {
	prompt := fmt.Sprintf(takeawaysPromptTemplate, title, transcript)
	out, err := c.gen.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	out = stripFences(out)
	if out == "" {
		return "", fmt.Errorf("%w: model returned empty response", ErrGenerationFailed)
	}
	return out, nil
}

// stripFences removes markdown code fences models sometimes wrap output in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```md")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
