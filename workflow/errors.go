package workflow

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned when an input index does not address any
// exposed input of the workflow.
var ErrIndexOutOfRange = errors.New("input index out of range")

// ErrJobInFlight is returned by Submit while a previously submitted job has
// not reached a terminal status; one handle drives one run at a time.
var ErrJobInFlight = errors.New("previous job still in flight")

// SubmissionError wraps a failure to hand the built graph to the remote
// queue. The graph itself was sound; the transport or the service rejected it.
type SubmissionError struct {
	Workflow string
	Err      error
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission of workflow %q failed: %v", e.Workflow, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *SubmissionError) Unwrap() error { return e.Err }
