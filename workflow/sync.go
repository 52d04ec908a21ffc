package workflow

import (
	"context"
	"fmt"

	"github.com/CodeGandee/invokeai-go-client/model/field"
	"github.com/CodeGandee/invokeai-go-client/service/repository"
	"github.com/CodeGandee/invokeai-go-client/tracing"
)

// SyncedField identifies one model field touched by SyncModelFields.
type SyncedField struct {
	NodeID    string
	FieldName string
	ModelName string
	ModelKey  string
}

// SyncReport summarises one SyncModelFields pass.  Unmatched fields keep
// their stale reference; callers decide whether that blocks submission.
type SyncReport struct {
	Matched   []SyncedField
	Unmatched []SyncedField
}

// SyncOption customises model matching.
type SyncOption func(*syncOptions)

type syncOptions struct {
	ignoreBase     bool
	fallbackToBase bool
}

// SyncIgnoreBase matches models by name alone, accepting a record whose base
// architecture differs from the stored reference.
func SyncIgnoreBase() SyncOption {
	return func(o *syncOptions) {
		o.ignoreBase = true
	}
}

// SyncFallbackToBase adopts the first installed model of the same base and
// type when no record matches by name.
func SyncFallbackToBase() SyncOption {
	return func(o *syncOptions) {
		o.fallbackToBase = true
	}
}

// SyncModelFields refreshes every model field of the graph against the
// server's installed-model catalog, rewriting keys and hashes that went stale
// since the document was exported.  Fields with no matching installed model
// are left untouched and reported; an unset model field is not an error and
// is skipped.
func (h *Handle) SyncModelFields(ctx context.Context, options ...SyncOption) (*SyncReport, error) {
	opts := &syncOptions{}
	for _, option := range options {
		option(opts)
	}
	ctx, span := tracing.StartSpan(ctx, "workflow.syncModels", "CLIENT")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if h.models == nil {
		err = fmt.Errorf("model catalog not configured")
		return nil, err
	}
	installed, listErr := h.models.ListInstalled(ctx)
	if listErr != nil {
		err = fmt.Errorf("list installed models: %w", listErr)
		return nil, err
	}

	report := &SyncReport{}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, nodeID := range h.orderedNodeIDs() {
		for fieldName, identifier := range h.modelSlots[nodeID] {
			ref := identifier.Ref()
			if ref == nil {
				continue
			}
			match := matchModel(installed, ref, opts)
			entry := SyncedField{NodeID: nodeID, FieldName: fieldName, ModelName: ref.Name}
			if match == nil {
				report.Unmatched = append(report.Unmatched, entry)
				continue
			}
			ref.Key = match.Key
			ref.Hash = match.Hash
			ref.Name = match.Name
			ref.Base = match.Base
			ref.Type = match.Type
			entry.ModelName = match.Name
			entry.ModelKey = match.Key
			report.Matched = append(report.Matched, entry)
		}
	}
	return report, nil
}

// matchModel resolves a stored reference against the catalog: exact key
// first, then name, then the optional base fallback.
func matchModel(installed []*repository.ModelRecord, ref *field.ModelRef, opts *syncOptions) *repository.ModelRecord {
	for _, record := range installed {
		if ref.Key != "" && record.Key == ref.Key {
			return record
		}
	}
	for _, record := range installed {
		if ref.Name == "" || record.Name != ref.Name {
			continue
		}
		if record.Type != "" && ref.Type != "" && record.Type != ref.Type {
			continue
		}
		if !opts.ignoreBase && record.Base != "" && ref.Base != "" && record.Base != ref.Base {
			continue
		}
		return record
	}
	if opts.fallbackToBase {
		for _, record := range installed {
			if ref.Base != "" && record.Base == ref.Base && record.Type == ref.Type {
				return record
			}
		}
	}
	return nil
}
