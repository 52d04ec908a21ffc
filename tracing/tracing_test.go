package tracing

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpanExportToFile(t *testing.T) {
	fname := "testdata/span_test.txt"
	_ = os.Remove(fname)

	err := Init("invokeai-client", "0.0.1", fname)
	if !assert.Nil(t, err) {
		return
	}

	ctx, span := StartSpan(context.Background(), "workflow.submit", "CLIENT")
	span.WithAttributes(map[string]string{"batch_id": "b-1"})

	// a child span records its parent's identifiers
	_, child := StartSpan(ctx, "rest.do", "CLIENT")
	child.SetStatusFromHTTPCode(200)
	EndSpan(child, nil)
	EndSpan(span, fmt.Errorf("boom"))

	data, err := os.ReadFile(fname)
	assert.Nil(t, err)
	assert.NotEmpty(t, data, "spans should be flushed to the trace file")
}

func TestNilSpanIsSafe(t *testing.T) {
	var span *Span
	assert.Nil(t, span.WithAttributes(map[string]string{"k": "v"}))
	span.SetStatus(nil)
	span.SetStatusFromHTTPCode(503)
	EndSpan(span, nil)
}
