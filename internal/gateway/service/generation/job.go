package generation

import (
	"changelogd/internal/gateway/repository/changelogstore"
)

// Status is the lifecycle state of a generation job. A job is created
// as processing and transitions exactly once to completed or error.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// failureMessage is the only error detail a caller ever sees; root
// causes stay in the server logs.
const failureMessage = "Failed to generate changelog"

// Job is the caller-visible record of one asynchronous changelog
// generation.
type Job struct {
	ID        string                 `json:"id"`
	Status    Status                 `json:"status"`
	Completed bool                   `json:"completed"`
	Changelog *changelogstore.Record `json:"changelog,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Terminal reports whether the job has reached its final state.
func (j Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusError
}
