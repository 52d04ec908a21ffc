// Package queue tracks submitted units of work to a terminal status.  A Job
// wraps one remote queue item: it is created at submit time, mutated only by
// Refresh, and frozen once a terminal status is observed.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/CodeGandee/invokeai-go-client/internal/clock"
	"github.com/CodeGandee/invokeai-go-client/progress"
	"github.com/CodeGandee/invokeai-go-client/service/repository"
)

// Status is the lifecycle state of a job.
type Status string

// Job status constants.  Created and Submitted are client-side; the rest
// mirror the remote queue item status.
const (
	StatusCreated    Status = "created"
	StatusSubmitted  Status = "submitted"
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// Snapshot is an immutable view of a job at one point in time.
type Snapshot struct {
	ItemID    string
	BatchID   string
	Status    Status
	Error     string
	Results   map[string]map[string]interface{}
	Progress  float64
	TimeTaken time.Duration

	// Timeout marks a snapshot returned because the wait deadline elapsed
	// before a terminal status; the job itself is still running remotely.
	Timeout bool
}

// JobFailedError reports a job that reached the failed terminal status,
// carrying the remote error message verbatim.
type JobFailedError struct {
	ItemID string
	Reason string
}

// Error implements the error interface.
func (e *JobFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("job %s failed", e.ItemID)
	}
	return fmt.Sprintf("job %s failed: %s", e.ItemID, e.Reason)
}

// Job is one tracked queue item.  It is safe for concurrent reads; Refresh,
// Wait and Cancel serialise internally.
type Job struct {
	itemID    string
	batchID   string
	transport repository.Queue
	createdAt time.Time

	mu       sync.RWMutex
	status   Status
	errMsg   string
	results  map[string]map[string]interface{}
	progress float64
}

// New creates a job for an already accepted queue item.
func New(transport repository.Queue, itemID, batchID string) *Job {
	return &Job{
		itemID:    itemID,
		batchID:   batchID,
		transport: transport,
		createdAt: clock.Now(),
		status:    StatusSubmitted,
	}
}

// ItemID returns the remote queue item identifier.
func (j *Job) ItemID() string { return j.itemID }

// BatchID returns the batch the item belongs to.
func (j *Job) BatchID() string { return j.batchID }

// Status returns the last observed status.
func (j *Job) Status() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// IsDone reports whether the last observed status is terminal.
func (j *Job) IsDone() bool {
	return j.Status().IsTerminal()
}

// Refresh re-fetches the remote snapshot and applies it.  Once a terminal
// status has been observed the stored state is frozen; a refresh still hits
// the remote but cannot regress the job.
func (j *Job) Refresh(ctx context.Context) (*Snapshot, error) {
	snapshot, err := j.transport.GetItem(ctx, j.itemID)
	if err != nil {
		return nil, fmt.Errorf("refresh job %s: %w", j.itemID, err)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.status.IsTerminal() {
		j.status = mapStatus(snapshot.Status)
		j.errMsg = snapshot.Error
		j.results = snapshot.Results
		j.progress = snapshot.Progress
	}
	return j.snapshotLocked(), nil
}

// Snapshot returns the last observed state without contacting the remote.
func (j *Job) Snapshot() *Snapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.snapshotLocked()
}

func (j *Job) snapshotLocked() *Snapshot {
	return &Snapshot{
		ItemID:    j.itemID,
		BatchID:   j.batchID,
		Status:    j.status,
		Error:     j.errMsg,
		Results:   j.results,
		Progress:  j.progress,
		TimeTaken: clock.Now().Sub(j.createdAt),
	}
}

// FailureReason returns the remote error message of a failed job.
func (j *Job) FailureReason() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.errMsg
}

// Cancel requests best-effort cancellation.  It returns false without a
// remote round-trip when the job is already terminal, and false when the
// remote finished the item before the cancellation landed; neither case is
// an error.
func (j *Job) Cancel(ctx context.Context) (bool, error) {
	if j.IsDone() {
		return false, nil
	}
	accepted, err := j.transport.CancelItem(ctx, j.itemID)
	if err != nil {
		return false, err
	}
	return accepted, nil
}

// Wait polls the remote at the given interval until a terminal status, the
// timeout, or context cancellation.  On timeout it returns the last known
// snapshot flagged with Timeout=true rather than an error, so the caller
// decides.  The poll sleep holds no locks and yields to the context.
func (j *Job) Wait(ctx context.Context, timeout, interval time.Duration) (*Snapshot, error) {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	var expiry time.Time
	if timeout > 0 {
		expiry = clock.Now().Add(timeout)
	}
	previous := j.Status()
	progress.UpdateCtx(ctx, progress.Delta{Total: 1, Pending: 1})
	for {
		snapshot, err := j.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		if snapshot.Status != previous {
			progress.UpdateCtx(ctx, transitionDelta(previous, snapshot.Status))
			previous = snapshot.Status
		}
		if snapshot.Status.IsTerminal() {
			return snapshot, nil
		}
		if !expiry.IsZero() && !clock.Now().Before(expiry) {
			snapshot.Timeout = true
			return snapshot, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// mapStatus normalises the remote status string; unrecognised values count
// as pending so polling continues rather than wedging.
func mapStatus(remote string) Status {
	switch Status(remote) {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed, StatusCanceled:
		return Status(remote)
	}
	return StatusPending
}

// transitionDelta expresses one observed status change as a signed counter
// delta, decrementing the bucket the item left and incrementing the one it
// entered.
func transitionDelta(from, to Status) progress.Delta {
	var d progress.Delta
	apply := func(s Status, n int) {
		switch s {
		case StatusInProgress:
			d.InProgress += n
		case StatusCompleted:
			d.Completed += n
		case StatusFailed:
			d.Failed += n
		case StatusCanceled:
			d.Canceled += n
		default:
			d.Pending += n
		}
	}
	apply(from, -1)
	apply(to, 1)
	return d
}
