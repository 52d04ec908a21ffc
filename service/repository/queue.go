package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/CodeGandee/invokeai-go-client/model/graph"
	"github.com/CodeGandee/invokeai-go-client/service/rest"
)

// QueueService implements Queue over the REST API.  Every queue endpoint is
// scoped to a named queue; the service default is "default".
type QueueService struct {
	client  *rest.Client
	queueID string
}

var _ Queue = (*QueueService)(nil)

// NewQueueService creates a queue transport bound to the given client and
// queue id.  An empty queueID selects the default queue.
func NewQueueService(client *rest.Client, queueID string) *QueueService {
	if queueID == "" {
		queueID = "default"
	}
	return &QueueService{client: client, queueID: queueID}
}

// Enqueue submits the wire-format graph for execution.  It blocks until the
// remote accepts or rejects the batch at the HTTP level; acceptance is not
// completion.
func (s *QueueService) Enqueue(ctx context.Context, submission *graph.Submission, runs int) (*EnqueueResult, error) {
	if submission == nil {
		return nil, fmt.Errorf("enqueue: nil submission")
	}
	if runs <= 0 {
		runs = 1
	}
	body := map[string]interface{}{
		"batch": map[string]interface{}{
			"graph": submission,
			"runs":  runs,
		},
	}
	var result EnqueueResult
	endpoint := fmt.Sprintf("api/v1/queue/%s/enqueue_batch", url.PathEscape(s.queueID))
	if err := s.client.Do(ctx, http.MethodPost, endpoint, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetItem fetches the current snapshot of one queue item.
func (s *QueueService) GetItem(ctx context.Context, itemID string) (*ItemSnapshot, error) {
	var snapshot ItemSnapshot
	endpoint := fmt.Sprintf("api/v1/queue/%s/i/%s", url.PathEscape(s.queueID), url.PathEscape(itemID))
	if err := s.client.Do(ctx, http.MethodGet, endpoint, nil, &snapshot); err != nil {
		return nil, wrapNotFound(err, "queue item %s", itemID)
	}
	return &snapshot, nil
}

// CancelItem requests cancellation of one queue item.  Cancellation is
// advisory: a remote that already finished the item reports false rather
// than an error.
func (s *QueueService) CancelItem(ctx context.Context, itemID string) (bool, error) {
	endpoint := fmt.Sprintf("api/v1/queue/%s/i/%s/cancel", url.PathEscape(s.queueID), url.PathEscape(itemID))
	err := s.client.Do(ctx, http.MethodPut, endpoint, nil, nil)
	if err == nil {
		return true, nil
	}
	var apiErr *rest.APIError
	if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusConflict || apiErr.StatusCode == http.StatusGone) {
		return false, nil
	}
	return false, fmt.Errorf("cancel queue item %s: %w", itemID, err)
}
