package unwatch

import "errors"

// Sentinel errors for library operations.
var (
	// Submission-time errors, reported synchronously to the caller.
	ErrInvalidReference  = errors.New("could not extract video ID from reference")
	ErrMissingAPIKey     = errors.New("no API key configured for transcript cleaning")
	ErrJobNotFound       = errors.New("job not found")
	ErrAlreadyInProgress = errors.New("video is already being processed")

	// Pipeline stage errors, captured as the job's terminal error message.
	ErrMetadataUnavailable   = errors.New("failed to get video info")
	ErrTranscriptUnavailable = errors.New("failed to extract transcript")
	ErrCleaningFailed        = errors.New("transcript cleaning failed")
	ErrGenerationFailed      = errors.New("takeaway generation failed")

	// Cache errors. A failed flush is fatal to the owning job's completion.
	ErrCacheFlush = errors.New("failed to persist result cache")
)
