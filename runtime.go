package invokeai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/CodeGandee/invokeai-go-client/extension"
	"github.com/CodeGandee/invokeai-go-client/model"
	"github.com/CodeGandee/invokeai-go-client/queue"
	"github.com/CodeGandee/invokeai-go-client/schema"
	"github.com/CodeGandee/invokeai-go-client/service/dao"
	"github.com/CodeGandee/invokeai-go-client/service/dao/document"
	jobdao "github.com/CodeGandee/invokeai-go-client/service/dao/job"
	"github.com/CodeGandee/invokeai-go-client/service/event"
	"github.com/CodeGandee/invokeai-go-client/service/repository"
	"github.com/CodeGandee/invokeai-go-client/tracing"
	"github.com/CodeGandee/invokeai-go-client/workflow"
)

// Runtime bundles the workflow operations: loading documents, opening live
// handles over them, and hot-swapping cached definitions.
type Runtime struct {
	documents *document.Service
	validator *schema.Validator
	boards    repository.Boards
	images    repository.Images
	models    repository.Models
	queue     repository.Queue
	events    *event.Service
	history   *jobdao.Service
	types     *extension.Types

	pollInterval time.Duration
	waitTimeout  time.Duration
}

// Types returns the result payload type registry, or nil when only the
// built-in payload types are in use.
func (r *Runtime) Types() *extension.Types {
	return r.types
}

// Events returns the configured event service, or nil.
func (r *Runtime) Events() *event.Service {
	return r.events
}

// History returns the in-memory run history.
func (r *Runtime) History() *jobdao.Service {
	return r.history
}

// Runs lists recorded job snapshots, optionally filtered, e.g.
// dao.NewParameter("Status", "completed").
func (r *Runtime) Runs(ctx context.Context, parameters ...*dao.Parameter) ([]*queue.Snapshot, error) {
	return r.history.List(ctx, parameters...)
}

// LoadWorkflow loads a workflow document from the given URL/location.
func (r *Runtime) LoadWorkflow(ctx context.Context, location string) (*model.Document, error) {
	ctx, span := tracing.StartSpan(ctx, "workflow.load", "CLIENT")
	doc, err := r.documents.Load(ctx, location)
	tracing.EndSpan(span, err)
	return doc, err
}

// ---------------------------------------------------------------------------
// Workflow hot-swap helpers
// ---------------------------------------------------------------------------

// RefreshWorkflow discards any cached copy of the workflow definition located
// at the given URL/location and reloads it (i.e. one extra disk/cloud
// round-trip).
func (r *Runtime) RefreshWorkflow(ctx context.Context, location string) error {
	if r == nil || r.documents == nil {
		return fmt.Errorf("runtime not fully initialised – document service missing")
	}
	_, err := r.documents.Refresh(ctx, location)
	return err
}

// UpsertDefinition parses the supplied document bytes and stores the result
// in the in-memory cache under the specified location.  When data is nil the
// call falls back to RefreshWorkflow, causing an eager reload.
func (r *Runtime) UpsertDefinition(ctx context.Context, location string, data []byte) error {
	if r == nil || r.documents == nil {
		return fmt.Errorf("runtime not fully initialised – document service missing")
	}
	if data == nil {
		return r.RefreshWorkflow(ctx, location)
	}
	doc, err := r.documents.DecodeJSON(data)
	if err != nil {
		return fmt.Errorf("failed to decode workflow document: %w", err)
	}
	if doc.Name == "" {
		doc.Name = location
	}
	return r.documents.Upsert(location, doc)
}

// ---------------------------------------------------------------------------
// Workflow handles
// ---------------------------------------------------------------------------

// OpenWorkflow loads the document at the given location and opens a live
// handle over it.
func (r *Runtime) OpenWorkflow(ctx context.Context, location string) (*workflow.Handle, error) {
	doc, err := r.LoadWorkflow(ctx, location)
	if err != nil {
		return nil, err
	}
	return r.OpenWorkflowDocument(doc)
}

// OpenWorkflowDocument opens a live handle over an already loaded document.
// The document's structure is checked against the envelope schema first;
// dangling form references alone do not block the open, they are simply not
// exposed as inputs.
func (r *Runtime) OpenWorkflowDocument(doc *model.Document) (*workflow.Handle, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	if r.validator != nil {
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		result := r.validator.ValidateDocumentJSON(data)
		if !result.Valid {
			reason := "document does not match the envelope schema"
			if len(result.Issues) > 0 {
				reason = fmt.Sprintf("%s: %s", result.Issues[0].Path, result.Issues[0].Message)
			}
			return nil, &model.MalformedWorkflowError{Reason: reason}
		}
	}
	options := []workflow.Option{
		workflow.WithPollInterval(r.pollInterval),
		workflow.WithWaitTimeout(r.waitTimeout),
	}
	if r.events != nil {
		options = append(options, workflow.WithEvents(r.events))
	}
	if r.history != nil {
		options = append(options, workflow.WithRecorder(func(ctx context.Context, snapshot *queue.Snapshot) {
			_ = r.history.Save(ctx, snapshot)
		}))
	}
	if r.types != nil {
		options = append(options, workflow.WithTypes(r.types))
	}
	return workflow.New(doc, r.queue, r.models, options...)
}

// Documents returns the document service.
func (r *Runtime) Documents() *document.Service {
	return r.documents
}

// Validator returns the envelope schema validator.
func (r *Runtime) Validator() *schema.Validator {
	return r.validator
}
