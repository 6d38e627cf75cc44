// Package unwatch turns a video reference into a cleaned, formatted
// transcript document with AI-generated highlights.
//
// # Quick Start
//
// Create an orchestrator, submit a reference, and poll for the result:
//
//	orch := unwatch.NewOrchestrator(cache, unwatch.Stages{
//	    Metadata:   unwatch.NewOEmbedResolver(nil),
//	    Transcript: unwatch.NewYTDLPExtractor("yt-dlp", ""),
//	    Cleaner:    cleaner,
//	    Highlights: cleaner,
//	})
//
//	jobID, err := orch.Submit(ctx, "https://www.youtube.com/watch?v=AAAAAAAAAAA")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	job, _ := orch.Status(jobID)
//	// job.Status transitions processing -> completed (or error)
//
// The completed job carries a Result with the assembled markdown document.
// Render it to a paginated PDF with a Renderer:
//
//	r := unwatch.NewRenderer()
//	pdf, err := r.Render(result.Markdown, unwatch.DefaultLayout())
//
// # Processing Pipeline
//
// Each submission runs these stages in order on its own goroutine:
//
//  1. Metadata lookup (video title via oEmbed)
//  2. Transcript extraction (yt-dlp auto-captions, VTT parsing)
//  3. Transcript cleaning (Gemini)
//  4. Highlight generation (Gemini, five takeaway bullets)
//  5. Document assembly (markdown + filesystem-safe filename)
//
// Completed results are written to a persistent cache keyed by video ID, so
// resubmitting the same video returns immediately without re-running the
// pipeline. Submissions for a video already being processed attach to the
// in-flight job instead of starting a second pipeline.
//
// # Rendering
//
// The renderer parses the assembled markdown into a typed block sequence
// (headings, paragraphs with bold runs, bullets, rules, images) and lays the
// blocks out onto fixed-size pages, delegating glyph and image painting to
// go-pdf/fpdf. Remote images are fetched with a bounded timeout; unreachable
// images are skipped rather than failing the render.
package unwatch
