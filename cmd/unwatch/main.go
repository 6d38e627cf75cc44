// Command unwatch runs the transcription pipeline once, synchronously, and
// writes the result next to you instead of behind an HTTP server.
//
// Usage:
//
//	unwatch [flags] <video-url>
//
// The cleaned markdown document lands in the output directory under the
// video's sanitized title. With --raw-only the Gemini stages are skipped and
// the raw transcript is written instead.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/x26prakhar/unwatch"
)

func main() {
	_ = godotenv.Load()
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	flags, err := parseFlags(os.Args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(context.Background(), flags); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cliFlags struct {
	reference string
	output    string
	apiKey    string
	rawOnly   bool
	proxy     string
	config    string
}

func parseFlags(args []string) (*cliFlags, error) {
	fs := pflag.NewFlagSet("unwatch", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <video-url>\n\nFlags:\n%s", args[0], fs.FlagUsages())
	}

	flags := &cliFlags{}
	fs.StringVarP(&flags.output, "output", "o", ".", "directory to write the result into")
	fs.StringVar(&flags.apiKey, "api-key", "", "Gemini API key (default: GOOGLE_API_KEY)")
	fs.BoolVar(&flags.rawOnly, "raw-only", false, "skip cleaning and takeaways, write the raw transcript")
	fs.StringVar(&flags.proxy, "proxy", "", "proxy URL for transcript extraction")
	fs.StringVar(&flags.config, "config", "", "path to YAML config file")

	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one video URL")
	}
	flags.reference = fs.Arg(0)
	if flags.apiKey == "" {
		flags.apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	return flags, nil
}

func run(ctx context.Context, flags *cliFlags) error {
	cfg := unwatch.DefaultConfig()
	if flags.config != "" {
		loaded, err := unwatch.LoadConfig(flags.config)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if flags.proxy != "" {
		cfg.Extractor.Proxy = flags.proxy
	}

	videoID, err := unwatch.ExtractVideoID(flags.reference)
	if err != nil {
		return err
	}

	step("Getting video info...")
	info, err := unwatch.NewOEmbedResolver(nil).Resolve(ctx, videoID)
	if err != nil {
		return err
	}

	step("Extracting transcript...")
	extractor := unwatch.NewYTDLPExtractor(cfg.Extractor.Binary, cfg.Extractor.Proxy)
	transcript, err := extractor.Extract(ctx, videoID)
	if err != nil {
		return err
	}

	if flags.rawOnly {
		path := filepath.Join(flags.output, outputFilename(info.Title, true))
		if err := os.WriteFile(path, []byte(transcript), 0o644); err != nil {
			return fmt.Errorf("writing transcript: %w", err)
		}
		fmt.Println(path)
		return nil
	}

	if flags.apiKey == "" {
		return unwatch.ErrMissingAPIKey
	}
	cleaner, err := unwatch.NewGeminiCleaner(ctx, flags.apiKey, cfg.Gemini.Model)
	if err != nil {
		return err
	}

	step("Cleaning transcript with Gemini...")
	cleaned, err := cleaner.Clean(ctx, transcript, info.Title)
	if err != nil {
		return err
	}

	step("Generating takeaways...")
	takeaways, err := cleaner.Takeaways(ctx, cleaned, info.Title)
	if err != nil {
		return err
	}

	step("Assembling document...")
	res := unwatch.AssembleDocument(info, flags.reference, takeaways, cleaned)

	path := filepath.Join(flags.output, res.Filename)
	if err := os.WriteFile(path, []byte(res.Markdown), 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	fmt.Println(path)
	return nil
}

// outputFilename names the written file after the video title. Raw
// transcripts get a distinguishing suffix so they never collide with the
// cleaned document.
func outputFilename(title string, raw bool) string {
	if raw {
		return unwatch.SanitizeFilename(title) + "_raw.txt"
	}
	return unwatch.SanitizeFilename(title) + ".md"
}

func step(label string) {
	fmt.Fprintln(os.Stderr, label)
}
