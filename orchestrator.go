package unwatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Stages bundles the external collaborators the pipeline calls, in order.
type Stages struct {
	Metadata   MetadataResolver
	Transcript TranscriptExtractor
	Cleaner    TranscriptCleaner
	Highlights HighlightGenerator
}

// Progress labels published before each stage begins.
const (
	progressStarting   = "Starting..."
	progressMetadata   = "Getting video info..."
	progressTranscript = "Extracting transcript..."
	progressCleaning   = "Cleaning transcript with Gemini..."
	progressTakeaways  = "Generating takeaways..."
	progressAssembling = "Assembling document..."
	progressCached     = "Loaded from cache"
)

// Orchestrator owns the job table and runs one pipeline goroutine per
// submitted video. All job state lives behind the orchestrator mutex; status
// queries see consistent snapshots, never a record mid-update. An in-flight
// set keyed by video ID guarantees at most one pipeline per video at a time.
type Orchestrator struct {
	cache  *ResultCache
	stages Stages
	logger *slog.Logger

	mu       sync.Mutex
	jobs     map[string]*Job   // job ID -> record (guarded by mu)
	inflight map[string]string // video ID -> owning job ID
	wg       sync.WaitGroup
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger sets the structured logger used for job lifecycle events.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an orchestrator over the given cache and stages.
func NewOrchestrator(cache *ResultCache, stages Stages, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		cache:    cache,
		stages:   stages,
		logger:   slog.Default(),
		jobs:     make(map[string]*Job),
		inflight: make(map[string]string),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit resolves the reference and either returns a synthesized completed
// job (cache hit), attaches to the in-flight job for the same video
// (returning its ID alongside ErrAlreadyInProgress), or starts a new
// pipeline goroutine and returns its job ID immediately.
//
// Submission-time failures are returned synchronously: ErrInvalidReference
// for an unparseable reference and ErrMissingAPIKey when the cleaning
// collaborator is not configured.
func (o *Orchestrator) Submit(ctx context.Context, reference string) (string, error) {
	videoID, err := ExtractVideoID(reference)
	if err != nil {
		return "", err
	}

	// In-flight and cache checks share one critical section. A finished
	// pipeline writes the cache before leaving the in-flight set, so a
	// submission that misses the in-flight set is guaranteed to see the
	// cache entry; a second pipeline for the same video can never start.
	o.mu.Lock()

	if existing, busy := o.inflight[videoID]; busy {
		o.mu.Unlock()
		return existing, fmt.Errorf("%w: job %s", ErrAlreadyInProgress, existing)
	}

	if res, ok := o.cache.Get(videoID); ok {
		jobID := uuid.NewString()
		o.jobs[jobID] = &Job{
			ID:       jobID,
			VideoID:  videoID,
			Status:   StatusCompleted,
			Progress: progressCached,
			Result:   &res,
		}
		o.mu.Unlock()
		o.logger.Info("cache hit", "video_id", videoID, "job_id", jobID)
		return jobID, nil
	}

	if o.stages.Cleaner == nil || o.stages.Highlights == nil {
		o.mu.Unlock()
		return "", ErrMissingAPIKey
	}

	jobID := uuid.NewString()
	o.jobs[jobID] = &Job{
		ID:       jobID,
		VideoID:  videoID,
		Status:   StatusProcessing,
		Progress: progressStarting,
	}
	o.inflight[videoID] = jobID
	o.mu.Unlock()

	o.logger.Info("job started", "video_id", videoID, "job_id", jobID)

	o.wg.Add(1)
	go o.run(jobID, videoID, reference)

	return jobID, nil
}

// Status returns a point-in-time snapshot of the job, or ErrJobNotFound.
func (o *Orchestrator) Status(jobID string) (Job, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, ok := o.jobs[jobID]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return *job, nil
}

// Wait blocks until all in-flight pipelines finish. Test and shutdown hook.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// run executes the pipeline for one job. It owns all writes to the job
// record after submission. The pipeline runs on a background context: once
// started, a job runs to completion or failure regardless of the submitting
// request's lifetime, and external-collaborator timeouts are the only bound.
func (o *Orchestrator) run(jobID, videoID, reference string) {
	defer o.wg.Done()
	defer func() {
		o.mu.Lock()
		delete(o.inflight, videoID)
		o.mu.Unlock()
	}()

	ctx := context.Background()

	res, err := o.process(ctx, jobID, videoID, reference)
	if err != nil {
		o.fail(jobID, err)
		return
	}

	// Persist before exposing completion. A flush failure means the result
	// is not durably committed, which is terminal for this job.
	if err := o.cache.Put(videoID, res); err != nil {
		o.fail(jobID, err)
		return
	}

	o.mu.Lock()
	job := o.jobs[jobID]
	job.Status = StatusCompleted
	job.Result = &res
	o.mu.Unlock()

	o.logger.Info("job completed", "video_id", videoID, "job_id", jobID, "title", res.Title)
}

// process runs the stages in fixed order, publishing a progress label before
// each one. Stage errors carry the sentinel taxonomy from their stage.
func (o *Orchestrator) process(ctx context.Context, jobID, videoID, reference string) (Result, error) {
	o.setProgress(jobID, progressMetadata)
	info, err := o.stages.Metadata.Resolve(ctx, videoID)
	if err != nil {
		return Result{}, err
	}

	o.setProgress(jobID, progressTranscript)
	rawTranscript, err := o.stages.Transcript.Extract(ctx, videoID)
	if err != nil {
		return Result{}, err
	}

	o.setProgress(jobID, progressCleaning)
	transcript, err := o.stages.Cleaner.Clean(ctx, rawTranscript, info.Title)
	if err != nil {
		return Result{}, err
	}

	o.setProgress(jobID, progressTakeaways)
	takeaways, err := o.stages.Highlights.Takeaways(ctx, transcript, info.Title)
	if err != nil {
		return Result{}, err
	}

	o.setProgress(jobID, progressAssembling)
	return AssembleDocument(info, reference, takeaways, transcript), nil
}

// setProgress updates the job's last-known-stage label.
func (o *Orchestrator) setProgress(jobID, label string) {
	o.mu.Lock()
	if job, ok := o.jobs[jobID]; ok {
		job.Progress = label
	}
	o.mu.Unlock()
}

// fail transitions the job to its terminal error state. Nothing is cached.
func (o *Orchestrator) fail(jobID string, err error) {
	o.mu.Lock()
	job := o.jobs[jobID]
	job.Status = StatusError
	job.Error = err.Error()
	o.mu.Unlock()

	o.logger.Warn("job failed", "job_id", jobID, "error", err)
}
