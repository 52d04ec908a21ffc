// Package event fans job status notifications out to registered listeners
// over in-process queues, decoupling observers from the poll loop that
// produces the events.
package event

import "time"

// Event types published by the workflow layer.
const (
	TypeSubmitted     = "submitted"
	TypeStatusChanged = "statusChanged"
	TypeCompleted     = "completed"
	TypeFailed        = "failed"
	TypeCanceled      = "canceled"
)

type Context struct {
	Workflow    string `json:"workflow"`
	BatchID     string `json:"batchID"`
	ItemID      string `json:"itemID"`
	EventType   string `json:"eventType"`
	TimeTakenMs int    `json:"timeTakenMs"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
