// Package job keeps an in-memory history of submitted jobs: the last
// snapshot recorded for every queue item, listable by status without
// re-polling the remote queue.
package job

import (
	"context"

	"github.com/CodeGandee/invokeai-go-client/queue"
	"github.com/CodeGandee/invokeai-go-client/service/dao"
	"github.com/CodeGandee/invokeai-go-client/service/dao/criteria"
	"github.com/CodeGandee/invokeai-go-client/service/dao/store"
)

// Service records job snapshots keyed by queue item id.
type Service struct {
	*store.MemoryStore[string, queue.Snapshot]
}

// Ensure Service implements dao.Service
var _ dao.Service[string, queue.Snapshot] = (*Service)(nil)

// New creates an empty job history.
func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[string, queue.Snapshot](func(s *queue.Snapshot) string {
			return s.ItemID
		}),
	}
}

// Save validates and records a snapshot, overwriting any previous one for
// the same item.
func (s *Service) Save(ctx context.Context, snapshot *queue.Snapshot) error {
	if snapshot == nil {
		return dao.ErrNilEntity
	}
	if snapshot.ItemID == "" {
		return dao.ErrInvalidID
	}
	return s.MemoryStore.Save(ctx, snapshot)
}

// Load returns the recorded snapshot for the given item id.
func (s *Service) Load(ctx context.Context, itemID string) (*queue.Snapshot, error) {
	if itemID == "" {
		return nil, dao.ErrInvalidID
	}
	snapshot, err := s.MemoryStore.Load(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, dao.ErrNotFound
	}
	return snapshot, nil
}

// List returns recorded snapshots, optionally filtered by a Status
// parameter, e.g. dao.NewParameter("Status", "completed", "failed").
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*queue.Snapshot, error) {
	all, err := s.MemoryStore.List(ctx)
	if err != nil {
		return nil, err
	}
	var matched []*queue.Snapshot
	for _, snapshot := range all {
		if !criteria.FilterByStatus(string(snapshot.Status), parameters) {
			continue
		}
		matched = append(matched, snapshot)
	}
	return matched, nil
}
