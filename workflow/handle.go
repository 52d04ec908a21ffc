// Package workflow implements the live handle over a parsed workflow
// document: index-addressed input editing, model synchronisation, submission
// building and job tracking.  The handle owns mutable field instances
// materialised from the document; the document itself stays untouched.
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/CodeGandee/invokeai-go-client/extension"
	"github.com/CodeGandee/invokeai-go-client/internal/idgen"
	"github.com/CodeGandee/invokeai-go-client/model"
	"github.com/CodeGandee/invokeai-go-client/model/field"
	"github.com/CodeGandee/invokeai-go-client/queue"
	"github.com/CodeGandee/invokeai-go-client/service/event"
	"github.com/CodeGandee/invokeai-go-client/service/repository"
	"github.com/CodeGandee/invokeai-go-client/tracing"
)

// Input is one exposed workflow input.  Its Index is stable for the lifetime
// of the handle: it is the position of the owning form element in the
// document's pre-order form traversal.
type Input struct {
	Index     int
	NodeID    string
	FieldName string
	ElementID string
	Label     string
	Field     field.Field
}

// Handle binds a workflow document to the remote service collaborators.
// Handle methods are safe for concurrent use: input edits, submission
// building and job bookkeeping are serialised on an internal mutex.  Callers
// mutating a Field obtained from an Input directly bypass that serialisation
// and must synchronise themselves.
type Handle struct {
	document *model.Document
	queue    repository.Queue
	models   repository.Models

	pollInterval time.Duration
	waitTimeout  time.Duration
	events       *event.Service
	recorder     func(ctx context.Context, snapshot *queue.Snapshot)
	types        *extension.Types

	inputs []*Input
	// modelSlots holds a live ModelIdentifier per model field of the graph,
	// exposed or not, so SyncModelFields can rewrite all of them.
	modelSlots map[string]map[string]*field.ModelIdentifier

	// mu guards field values, jobs and the submitting flag.  The flag keeps
	// the one-in-flight contract while the enqueue call runs unlocked.
	mu         sync.Mutex
	submitting bool
	jobs       []*queue.Job
}

// Option customises a handle.
type Option func(*Handle)

// WithPollInterval overrides the queue poll interval used by Wait.
func WithPollInterval(interval time.Duration) Option {
	return func(h *Handle) {
		h.pollInterval = interval
	}
}

// WithWaitTimeout overrides the default WaitForCompletion timeout.
func WithWaitTimeout(timeout time.Duration) Option {
	return func(h *Handle) {
		h.waitTimeout = timeout
	}
}

// WithEvents publishes job lifecycle events to the given event service.
func WithEvents(events *event.Service) Option {
	return func(h *Handle) {
		h.events = events
	}
}

// WithRecorder registers a callback invoked with every snapshot the handle
// observes, so callers can keep a run history.
func WithRecorder(recorder func(ctx context.Context, snapshot *queue.Snapshot)) Option {
	return func(h *Handle) {
		h.recorder = recorder
	}
}

// WithTypes supplies the registry used to decode node result payloads;
// custom payload types registered there extend MapOutputs.
func WithTypes(types *extension.Types) Option {
	return func(h *Handle) {
		h.types = types
	}
}

// New creates a handle over the document.  Every exposed field is
// materialised into a live field instance; a field whose declared default
// violates its own constraints makes the document malformed.
func New(document *model.Document, transport repository.Queue, catalog repository.Models, options ...Option) (*Handle, error) {
	if document == nil {
		return nil, fmt.Errorf("document was nil")
	}
	h := &Handle{
		document:     document,
		queue:        transport,
		models:       catalog,
		pollInterval: 500 * time.Millisecond,
		waitTimeout:  5 * time.Minute,
		modelSlots:   map[string]map[string]*field.ModelIdentifier{},
	}
	for _, option := range options {
		option(h)
	}
	if err := h.materializeInputs(); err != nil {
		return nil, err
	}
	return h, nil
}

// materializeInputs builds the live input list from the document's exposed
// fields and registers a model slot for every model field of the graph.
func (h *Handle) materializeInputs() error {
	for _, exposed := range h.document.ExposedFields() {
		instance, err := exposed.Schema.Materialize()
		if err != nil {
			return &model.MalformedWorkflowError{
				Reason: fmt.Sprintf("input %s.%s cannot be materialised", exposed.NodeID, exposed.FieldName),
				Err:    err,
			}
		}
		h.inputs = append(h.inputs, &Input{
			Index:     len(h.inputs),
			NodeID:    exposed.NodeID,
			FieldName: exposed.FieldName,
			ElementID: exposed.ElementID,
			Label:     exposed.Label,
			Field:     instance,
		})
		if identifier, ok := instance.(*field.ModelIdentifier); ok {
			h.registerModelSlot(exposed.NodeID, exposed.FieldName, identifier)
		}
	}
	for _, id := range h.document.NodeOrder {
		node := h.document.Node(id)
		if node == nil {
			continue
		}
		for name, schema := range node.Fields {
			if schema.Type != field.KindModelIdentifier {
				continue
			}
			if h.modelSlot(id, name) != nil {
				continue
			}
			instance, err := schema.Materialize()
			if err != nil {
				return &model.MalformedWorkflowError{
					Reason: fmt.Sprintf("model field %s.%s cannot be materialised", id, name),
					Err:    err,
				}
			}
			h.registerModelSlot(id, name, instance.(*field.ModelIdentifier))
		}
	}
	return nil
}

func (h *Handle) registerModelSlot(nodeID, fieldName string, identifier *field.ModelIdentifier) {
	slots := h.modelSlots[nodeID]
	if slots == nil {
		slots = map[string]*field.ModelIdentifier{}
		h.modelSlots[nodeID] = slots
	}
	slots[fieldName] = identifier
}

func (h *Handle) modelSlot(nodeID, fieldName string) *field.ModelIdentifier {
	return h.modelSlots[nodeID][fieldName]
}

// Document returns the underlying document.  Callers must treat it as
// read-only.
func (h *Handle) Document() *model.Document { return h.document }

// Name returns the workflow name.
func (h *Handle) Name() string { return h.document.Name }

// Inputs returns the exposed inputs in stable index order.
func (h *Handle) Inputs() []*Input {
	return append([]*Input(nil), h.inputs...)
}

// Input returns the input at the given stable index.
func (h *Handle) Input(index int) (*Input, error) {
	if index < 0 || index >= len(h.inputs) {
		return nil, fmt.Errorf("%w: %d (have %d inputs)", ErrIndexOutOfRange, index, len(h.inputs))
	}
	return h.inputs[index], nil
}

// SetInput assigns a value to the input at the given index.  Constraint
// violations surface as *field.ValidationError and leave the input unchanged.
func (h *Handle) SetInput(index int, value interface{}) error {
	input, err := h.Input(index)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return input.Field.Set(value)
}

// InputByLabel returns the first input with the given label, or nil.  Labels
// are not guaranteed unique; indices are the authoritative address.
func (h *Handle) InputByLabel(label string) *Input {
	for _, input := range h.inputs {
		if input.Label == label {
			return input
		}
	}
	return nil
}

// Validate re-checks every input against its constraints.
func (h *Handle) Validate() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.validate()
}

func (h *Handle) validate() []error {
	var issues []error
	for _, input := range h.inputs {
		if err := input.Field.Validate(); err != nil {
			issues = append(issues, err)
		}
	}
	return issues
}

// Jobs returns the jobs created by the most recent Submit.
func (h *Handle) Jobs() []*queue.Job {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*queue.Job(nil), h.jobs...)
}

// inFlight reports whether any job of the last submission is non-terminal.
func (h *Handle) inFlight() bool {
	for _, job := range h.jobs {
		if !job.IsDone() {
			return true
		}
	}
	return false
}

// Submit builds the wire graph from the current input values and hands it to
// the remote queue.  One handle drives one run at a time: while a previous
// job is non-terminal Submit fails with ErrJobInFlight.  The submitted graph
// is a snapshot; later input edits do not affect an accepted run.
func (h *Handle) Submit(ctx context.Context, options ...SubmitOption) (*queue.Job, error) {
	opts := newSubmitOptions(options)
	ctx, span := tracing.StartSpan(ctx, "workflow.submit", "CLIENT")
	var err error
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"workflow": h.document.Name})

	h.mu.Lock()
	if h.submitting || h.inFlight() {
		h.mu.Unlock()
		err = ErrJobInFlight
		return nil, err
	}
	if issues := h.validate(); len(issues) > 0 {
		h.mu.Unlock()
		err = fmt.Errorf("workflow has invalid inputs: %v", issues[0])
		return nil, err
	}
	submission, err := h.buildSubmission(opts.boardID)
	if err != nil {
		h.mu.Unlock()
		return nil, err
	}
	submission.ID = idgen.New()
	h.submitting = true
	h.mu.Unlock()

	result, enqueueErr := h.queue.Enqueue(ctx, submission, opts.runs)
	h.mu.Lock()
	h.submitting = false
	if enqueueErr != nil {
		h.mu.Unlock()
		err = &SubmissionError{Workflow: h.document.Name, Err: enqueueErr}
		return nil, err
	}
	if len(result.ItemIDs) == 0 {
		h.mu.Unlock()
		err = &SubmissionError{Workflow: h.document.Name, Err: fmt.Errorf("queue accepted batch %s without items", result.BatchID)}
		return nil, err
	}
	h.jobs = h.jobs[:0]
	for _, itemID := range result.ItemIDs {
		h.jobs = append(h.jobs, queue.New(h.queue, itemID, result.BatchID))
	}
	job := h.jobs[0]
	h.mu.Unlock()
	h.publish(ctx, event.TypeSubmitted, job.Snapshot())
	h.record(ctx, job.Snapshot())
	return job, nil
}

func (h *Handle) record(ctx context.Context, snapshot *queue.Snapshot) {
	if h.recorder != nil && snapshot != nil {
		h.recorder(ctx, snapshot)
	}
}

// publish emits one job lifecycle event when an event service is configured.
func (h *Handle) publish(ctx context.Context, eventType string, snapshot *queue.Snapshot) {
	if h.events == nil || snapshot == nil {
		return
	}
	publisher, err := event.PublisherOf[queue.Snapshot](h.events)
	if err != nil {
		return
	}
	_ = publisher.Publish(ctx, event.NewEvent(&event.Context{
		Workflow:    h.document.Name,
		BatchID:     snapshot.BatchID,
		ItemID:      snapshot.ItemID,
		EventType:   eventType,
		TimeTakenMs: int(snapshot.TimeTaken.Milliseconds()),
	}, *snapshot))
}

// WaitForCompletion polls the last submitted job until a terminal status or
// the timeout.  A zero timeout uses the handle default.  On timeout the last
// snapshot is returned with its Timeout flag set; the run keeps executing
// remotely.
func (h *Handle) WaitForCompletion(ctx context.Context, timeout time.Duration) (*queue.Snapshot, error) {
	h.mu.Lock()
	var job *queue.Job
	if len(h.jobs) > 0 {
		job = h.jobs[0]
	}
	h.mu.Unlock()
	if job == nil {
		return nil, fmt.Errorf("no job submitted")
	}
	if timeout <= 0 {
		timeout = h.waitTimeout
	}
	// the poll loop runs without holding the handle mutex
	ctx, span := tracing.StartSpan(ctx, "workflow.wait", "CLIENT")
	snapshot, err := job.Wait(ctx, timeout, h.pollInterval)
	tracing.EndSpan(span, err)
	if err == nil && snapshot != nil {
		switch snapshot.Status {
		case queue.StatusCompleted:
			h.publish(ctx, event.TypeCompleted, snapshot)
		case queue.StatusFailed:
			h.publish(ctx, event.TypeFailed, snapshot)
		case queue.StatusCanceled:
			h.publish(ctx, event.TypeCanceled, snapshot)
		}
		h.record(ctx, snapshot)
	}
	return snapshot, err
}

// SubmitOption customises one submission.
type SubmitOption func(*submitOptions)

type submitOptions struct {
	boardID string
	runs    int
}

func newSubmitOptions(options []SubmitOption) *submitOptions {
	opts := &submitOptions{runs: 1}
	for _, option := range options {
		option(opts)
	}
	if opts.runs < 1 {
		opts.runs = 1
	}
	return opts
}

// WithBoard routes the run's outputs to the given board by overriding the
// board field of every output-capable node whose board the form exposes.
func WithBoard(boardID string) SubmitOption {
	return func(o *submitOptions) {
		o.boardID = boardID
	}
}

// WithRuns enqueues the graph n times within one batch.
func WithRuns(n int) SubmitOption {
	return func(o *submitOptions) {
		o.runs = n
	}
}
