package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/x26prakhar/unwatch"
)

//go:embed index.html
var indexPage []byte

// jobService is the slice of the orchestrator the handlers need. Tests
// substitute a stub.
type jobService interface {
	Submit(ctx context.Context, reference string) (string, error)
	Status(jobID string) (unwatch.Job, error)
}

var _ jobService = (*unwatch.Orchestrator)(nil)

type routerDeps struct {
	jobs     jobService
	renderer *unwatch.Renderer
	preview  *unwatch.PreviewRenderer
	logger   *slog.Logger
}

type transcribeRequest struct {
	URL string `json:"url" binding:"required"`
}

func newRouter(deps routerDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(deps.logger))

	s := &server{deps: deps}

	r.GET("/", s.index)
	r.GET("/healthz", s.healthz)
	r.POST("/transcribe", s.transcribe)
	r.GET("/status/:id", s.status)
	r.GET("/download/:id", s.downloadMarkdown)
	r.GET("/download/:id/pdf", s.downloadPDF)
	r.GET("/preview/:id", s.preview)
	return r
}

// requestLogger logs one line per request after the handler finishes.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

type server struct {
	deps routerDeps
}

func (s *server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

func (s *server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *server) transcribe(c *gin.Context) {
	var req transcribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	jobID, err := s.deps.jobs.Submit(c.Request.Context(), req.URL)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
	case errors.Is(err, unwatch.ErrAlreadyInProgress):
		// The existing job's ID comes back alongside the error so clients
		// can poll it instead of retrying.
		c.JSON(http.StatusConflict, gin.H{"job_id": jobID, "error": "video already being processed"})
	case errors.Is(err, unwatch.ErrInvalidReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, unwatch.ErrMissingAPIKey):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		s.deps.logger.Error("submit failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission failed"})
	}
}

func (s *server) status(c *gin.Context) {
	job, err := s.deps.jobs.Status(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

// completedResult resolves a job ID to its finished result, writing the
// appropriate error response when it cannot.
func (s *server) completedResult(c *gin.Context) (*unwatch.Result, bool) {
	job, err := s.deps.jobs.Status(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	if job.Status != unwatch.StatusCompleted || job.Result == nil {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("job is %s, not completed", job.Status)})
		return nil, false
	}
	return job.Result, true
}

func (s *server) downloadMarkdown(c *gin.Context) {
	res, ok := s.completedResult(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", attachmentDisposition(res.Filename))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(res.Markdown))
}

func (s *server) downloadPDF(c *gin.Context) {
	res, ok := s.completedResult(c)
	if !ok {
		return
	}

	cfg := unwatch.LayoutFromRequest(c.Query("font"), c.Query("zoom"))
	pdf, err := s.deps.renderer.Render(res.Markdown, cfg)
	if err != nil {
		s.deps.logger.Error("pdf render failed", "job", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pdf rendering failed"})
		return
	}

	name := strings.TrimSuffix(res.Filename, ".md") + ".pdf"
	c.Header("Content-Disposition", attachmentDisposition(name))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *server) preview(c *gin.Context) {
	res, ok := s.completedResult(c)
	if !ok {
		return
	}

	page, err := s.deps.preview.ToHTML(c.Request.Context(), res.Title, res.Markdown)
	if err != nil {
		s.deps.logger.Error("preview failed", "job", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "preview rendering failed"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// attachmentDisposition builds a Content-Disposition header carrying both
// the plain filename and the RFC 5987 encoded form for non-ASCII names.
func attachmentDisposition(filename string) string {
	ascii := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' {
			return '_'
		}
		return r
	}, filename)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		ascii, url.PathEscape(filename))
}
