package unwatch

// JobStatus is the lifecycle state of a processing job.
type JobStatus string

// Job lifecycle states. A job moves from processing to exactly one of
// completed or error; terminal states never transition again.
const (
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusError      JobStatus = "error"
)

// Result is the immutable output of a completed pipeline run.
type Result struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Takeaways  string `json:"takeaways"`
	Transcript string `json:"transcript"`
	Markdown   string `json:"markdown"`
	Filename   string `json:"filename"`
}

// Job is a point-in-time snapshot of a tracked pipeline run.
// Result is non-nil only when Status is StatusCompleted; Error is non-empty
// only when Status is StatusError.
type Job struct {
	ID       string    `json:"id"`
	VideoID  string    `json:"video_id"`
	Status   JobStatus `json:"status"`
	Progress string    `json:"progress"`
	Result   *Result   `json:"result,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// VideoInfo is the metadata resolved for a video reference.
type VideoInfo struct {
	ID    string
	Title string
}
