package invokeai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/CodeGandee/invokeai-go-client/model"
	"github.com/CodeGandee/invokeai-go-client/model/graph"
	"github.com/CodeGandee/invokeai-go-client/queue"
	"github.com/CodeGandee/invokeai-go-client/service/dao"
	"github.com/CodeGandee/invokeai-go-client/service/repository"
	"github.com/CodeGandee/invokeai-go-client/workflow"
)

type stubQueue struct {
	status string
}

func (q *stubQueue) Enqueue(ctx context.Context, submission *graph.Submission, runs int) (*repository.EnqueueResult, error) {
	return &repository.EnqueueResult{BatchID: "batch-1", ItemIDs: []string{"item-1"}}, nil
}

func (q *stubQueue) GetItem(ctx context.Context, itemID string) (*repository.ItemSnapshot, error) {
	status := q.status
	if status == "" {
		status = "completed"
	}
	return &repository.ItemSnapshot{ItemID: itemID, BatchID: "batch-1", Status: status}, nil
}

func (q *stubQueue) CancelItem(ctx context.Context, itemID string) (bool, error) {
	return true, nil
}

type stubModels struct{}

func (m *stubModels) ListInstalled(ctx context.Context) ([]*repository.ModelRecord, error) {
	return nil, nil
}

func testDocument() *model.Document {
	document := model.NewDocument("t2i")
	document.AddNode("positive", "compel").WithField("prompt", "string", "a castle")
	document.AddNode("decode", "l2i")
	document.Expose("positive", "prompt", "Prompt")
	return document
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New()
	assert.NotNil(t, err, "a base URL is required")

	_, err = New(WithConfig(&Config{BaseURL: "http://localhost:9090"}))
	assert.NotNil(t, err, "zero poll settings do not pass validation")

	service, err := New(WithBaseURL("http://localhost:9090"))
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, "default", service.Config().Queue.ID)
	assert.EqualValues(t, 500*time.Millisecond, service.Config().Poll.Interval)
	assert.NotNil(t, service.Boards())
	assert.NotNil(t, service.Images())
	assert.NotNil(t, service.Models())
	assert.NotNil(t, service.Queue())
	assert.NotNil(t, service.Runtime().Documents())
	assert.NotNil(t, service.Runtime().Validator())
}

func TestOpenWorkflowDocument(t *testing.T) {
	service, err := New(
		WithBaseURL("http://localhost:9090"),
		WithQueue(&stubQueue{}),
		WithModels(&stubModels{}),
	)
	if !assert.Nil(t, err) {
		return
	}

	handle, err := service.Runtime().OpenWorkflowDocument(testDocument())
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, 1, len(handle.Inputs()))

	_, err = service.Runtime().OpenWorkflowDocument(nil)
	assert.NotNil(t, err)

	// envelope violations are rejected before a handle exists
	broken := testDocument()
	broken.Nodes = nil
	_, err = service.Runtime().OpenWorkflowDocument(broken)
	var malformed *model.MalformedWorkflowError
	assert.ErrorAs(t, err, &malformed)
}

func TestRunHistory(t *testing.T) {
	service, err := New(
		WithBaseURL("http://localhost:9090"),
		WithQueue(&stubQueue{}),
		WithModels(&stubModels{}),
	)
	if !assert.Nil(t, err) {
		return
	}
	handle, err := service.Runtime().OpenWorkflowDocument(testDocument())
	if !assert.Nil(t, err) {
		return
	}

	_, err = handle.Submit(context.Background(), workflow.WithBoard("b1"))
	assert.Nil(t, err)
	snapshot, err := handle.WaitForCompletion(context.Background(), time.Second)
	assert.Nil(t, err)
	assert.EqualValues(t, queue.StatusCompleted, snapshot.Status)

	runs, err := service.Runtime().Runs(context.Background())
	assert.Nil(t, err)
	if assert.EqualValues(t, 1, len(runs)) {
		assert.EqualValues(t, "item-1", runs[0].ItemID)
		assert.EqualValues(t, queue.StatusCompleted, runs[0].Status)
	}

	completed, err := service.Runtime().Runs(context.Background(), dao.NewParameter("Status", "completed"))
	assert.Nil(t, err)
	assert.EqualValues(t, 1, len(completed))

	failed, err := service.Runtime().Runs(context.Background(), dao.NewParameter("Status", "failed"))
	assert.Nil(t, err)
	assert.Empty(t, failed)
}

func TestUpsertDefinition(t *testing.T) {
	service, err := New(WithBaseURL("http://localhost:9090"))
	if !assert.Nil(t, err) {
		return
	}
	runtime := service.Runtime()

	data := []byte(`{"nodes": {"n1": {"type": "noise"}}}`)
	assert.Nil(t, runtime.UpsertDefinition(context.Background(), "mem/t2i.json", data))

	cached, err := runtime.Documents().Lookup("mem/t2i.json")
	assert.Nil(t, err)
	assert.EqualValues(t, "mem/t2i.json", cached.Name, "name defaults to the cache location")

	loaded, err := runtime.LoadWorkflow(context.Background(), "mem/t2i.json")
	assert.Nil(t, err)
	assert.Same(t, cached, loaded, "loads are served from the cache")

	assert.NotNil(t, runtime.UpsertDefinition(context.Background(), "mem/bad.json", []byte("nope")))
}
