package main

// Notes:
// - Handlers are tested against a stub jobService; orchestrator behavior has
//   its own tests in the root package.
// - PDF bytes are only sanity-checked for the %PDF header; rendering fidelity
//   is covered by the renderer's tests.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/x26prakhar/unwatch"
)

type stubJobs struct {
	submitID  string
	submitErr error
	jobs      map[string]unwatch.Job
}

func (s *stubJobs) Submit(ctx context.Context, reference string) (string, error) {
	return s.submitID, s.submitErr
}

func (s *stubJobs) Status(jobID string) (unwatch.Job, error) {
	job, ok := s.jobs[jobID]
	if !ok {
		return unwatch.Job{}, fmt.Errorf("%w: %s", unwatch.ErrJobNotFound, jobID)
	}
	return job, nil
}

func newTestRouter(jobs jobService) *gin.Engine {
	return newRouter(routerDeps{
		jobs:     jobs,
		renderer: unwatch.NewRenderer(),
		preview:  unwatch.NewPreviewRenderer(),
		logger:   slog.New(slog.DiscardHandler),
	})
}

func completedJob(id string) unwatch.Job {
	return unwatch.Job{
		ID:      id,
		VideoID: "AAAAAAAAAAA",
		Status:  unwatch.StatusCompleted,
		Result: &unwatch.Result{
			Title:    "Some Talk",
			URL:      "https://www.youtube.com/watch?v=AAAAAAAAAAA",
			Markdown: "# Some Talk\n\nSource: https://example.com\n\n## Top Takeaways\n\n- point\n",
			Filename: "Some_Talk.md",
		},
	}
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---------------------------------------------------------------------------
// TestTranscribeHandler - Submission endpoint status mapping
// ---------------------------------------------------------------------------

func TestTranscribeHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		submitID   string
		submitErr  error
		wantStatus int
		wantJobID  string
	}{
		{
			name:       "accepted",
			body:       `{"url":"https://www.youtube.com/watch?v=AAAAAAAAAAA"}`,
			submitID:   "job-1",
			wantStatus: http.StatusAccepted,
			wantJobID:  "job-1",
		},
		{
			name:       "already in progress returns existing job",
			body:       `{"url":"https://www.youtube.com/watch?v=AAAAAAAAAAA"}`,
			submitID:   "job-existing",
			submitErr:  fmt.Errorf("%w: job job-existing", unwatch.ErrAlreadyInProgress),
			wantStatus: http.StatusConflict,
			wantJobID:  "job-existing",
		},
		{
			name:       "invalid reference",
			body:       `{"url":"not a video"}`,
			submitErr:  unwatch.ErrInvalidReference,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing api key",
			body:       `{"url":"https://www.youtube.com/watch?v=AAAAAAAAAAA"}`,
			submitErr:  unwatch.ErrMissingAPIKey,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "missing url field",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unexpected error",
			body:       `{"url":"https://www.youtube.com/watch?v=AAAAAAAAAAA"}`,
			submitErr:  errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newTestRouter(&stubJobs{submitID: tt.submitID, submitErr: tt.submitErr})
			w := doRequest(t, r, http.MethodPost, "/transcribe", []byte(tt.body))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantJobID != "" {
				var resp map[string]string
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decoding response: %v", err)
				}
				if resp["job_id"] != tt.wantJobID {
					t.Errorf("job_id = %q, want %q", resp["job_id"], tt.wantJobID)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestStatusHandler - Job polling
// ---------------------------------------------------------------------------

func TestStatusHandler(t *testing.T) {
	t.Parallel()

	jobs := &stubJobs{jobs: map[string]unwatch.Job{
		"job-1": {ID: "job-1", Status: unwatch.StatusProcessing, Progress: "Extracting transcript..."},
	}}
	r := newTestRouter(jobs)

	w := doRequest(t, r, http.MethodGet, "/status/job-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var job unwatch.Job
	if err := json.Unmarshal(w.Body.Bytes(), &job); err != nil {
		t.Fatalf("decoding job: %v", err)
	}
	if job.Status != unwatch.StatusProcessing {
		t.Errorf("Status = %q, want processing", job.Status)
	}
	if job.Progress != "Extracting transcript..." {
		t.Errorf("Progress = %q", job.Progress)
	}

	w = doRequest(t, r, http.MethodGet, "/status/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown job status = %d, want 404", w.Code)
	}
}

// ---------------------------------------------------------------------------
// TestDownloadHandlers - Markdown, PDF, and preview delivery
// ---------------------------------------------------------------------------

func TestDownloadHandlers(t *testing.T) {
	t.Parallel()

	jobs := &stubJobs{jobs: map[string]unwatch.Job{
		"done":    completedJob("done"),
		"running": {ID: "running", Status: unwatch.StatusProcessing, Progress: "Starting..."},
	}}
	r := newTestRouter(jobs)

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()

		w := doRequest(t, r, http.MethodGet, "/download/done", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if !strings.Contains(w.Body.String(), "# Some Talk") {
			t.Error("body missing markdown title")
		}
		cd := w.Header().Get("Content-Disposition")
		if !strings.Contains(cd, `filename="Some_Talk.md"`) {
			t.Errorf("Content-Disposition = %q, want plain filename", cd)
		}
		if !strings.Contains(cd, "filename*=UTF-8''") {
			t.Errorf("Content-Disposition = %q, want RFC 5987 form", cd)
		}
	})

	t.Run("pdf", func(t *testing.T) {
		t.Parallel()

		w := doRequest(t, r, http.MethodGet, "/download/done/pdf?font=Garamond&zoom=150", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
		}
		if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
			t.Error("body is not a PDF")
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("Content-Type = %q, want application/pdf", ct)
		}
		if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Some_Talk.pdf") {
			t.Errorf("Content-Disposition = %q, want .pdf name", cd)
		}
	})

	t.Run("preview", func(t *testing.T) {
		t.Parallel()

		w := doRequest(t, r, http.MethodGet, "/preview/done", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		body := w.Body.String()
		if !strings.Contains(body, "<!DOCTYPE html>") {
			t.Error("body missing doctype")
		}
		if !strings.Contains(body, "<title>Some Talk</title>") {
			t.Error("body missing escaped title")
		}
	})

	t.Run("not completed", func(t *testing.T) {
		t.Parallel()

		for _, path := range []string{"/download/running", "/download/running/pdf", "/preview/running"} {
			if w := doRequest(t, r, http.MethodGet, path, nil); w.Code != http.StatusConflict {
				t.Errorf("%s status = %d, want 409", path, w.Code)
			}
		}
	})

	t.Run("unknown job", func(t *testing.T) {
		t.Parallel()

		if w := doRequest(t, r, http.MethodGet, "/download/nope", nil); w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

// ---------------------------------------------------------------------------
// TestIndexAndHealth - Static surface
// ---------------------------------------------------------------------------

func TestIndexAndHealth(t *testing.T) {
	t.Parallel()

	r := newTestRouter(&stubJobs{})

	w := doRequest(t, r, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("index status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "unwatch") {
		t.Error("index page missing app name")
	}

	w = doRequest(t, r, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("healthz body = %s", w.Body.String())
	}
}

func TestAttachmentDisposition(t *testing.T) {
	t.Parallel()

	got := attachmentDisposition("Café_Talk.md")
	if !strings.Contains(got, `filename="Caf__Talk.md"`) {
		t.Errorf("ascii fallback = %q", got)
	}
	if !strings.Contains(got, "filename*=UTF-8''Caf%C3%A9_Talk.md") {
		t.Errorf("encoded form = %q", got)
	}
}
