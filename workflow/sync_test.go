package workflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CodeGandee/invokeai-go-client/service/repository"
)

func TestSyncModelFieldsByName(t *testing.T) {
	catalog := &fakeModels{records: []*repository.ModelRecord{
		{Key: "k-new", Hash: "h-new", Name: "juggernaut", Base: "sdxl", Type: "main"},
		{Key: "k-other", Hash: "h-other", Name: "dreamshaper", Base: "sd-1", Type: "main"},
	}}
	handle := newTestHandle(t, newFakeQueue(), catalog)

	report, err := handle.SyncModelFields(context.Background())
	if !assert.Nil(t, err) {
		return
	}
	if assert.EqualValues(t, 1, len(report.Matched)) {
		assert.EqualValues(t, "loader", report.Matched[0].NodeID)
		assert.EqualValues(t, "k-new", report.Matched[0].ModelKey)
	}
	assert.Empty(t, report.Unmatched)

	// the refreshed key flows into the next submission
	submission, err := handle.BuildSubmission("")
	assert.Nil(t, err)
	wired, ok := submission.Nodes["loader"]["model"].(map[string]interface{})
	if assert.True(t, ok) {
		assert.EqualValues(t, "k-new", wired["key"])
		assert.EqualValues(t, "h-new", wired["hash"])
	}
}

func TestSyncModelFieldsByKey(t *testing.T) {
	catalog := &fakeModels{records: []*repository.ModelRecord{
		{Key: "k-123", Hash: "h-1", Name: "renamed upstream", Base: "sdxl", Type: "main"},
	}}
	handle := newTestHandle(t, newFakeQueue(), catalog)
	handle.modelSlot("loader", "model").Ref().Key = "k-123"

	report, err := handle.SyncModelFields(context.Background())
	assert.Nil(t, err)
	if assert.EqualValues(t, 1, len(report.Matched)) {
		assert.EqualValues(t, "renamed upstream", report.Matched[0].ModelName, "an exact key match wins regardless of name")
	}
}

func TestSyncModelFieldsBaseMismatch(t *testing.T) {
	catalog := &fakeModels{records: []*repository.ModelRecord{
		{Key: "k-sd1", Name: "juggernaut", Base: "sd-1", Type: "main"},
	}}

	handle := newTestHandle(t, newFakeQueue(), catalog)
	report, err := handle.SyncModelFields(context.Background())
	assert.Nil(t, err)
	assert.Empty(t, report.Matched, "same name on a different base does not match")
	assert.EqualValues(t, 1, len(report.Unmatched))
	assert.EqualValues(t, "juggernaut", handle.modelSlot("loader", "model").Ref().Name, "unmatched references stay untouched")

	// unless the caller opts out of base checking
	handle = newTestHandle(t, newFakeQueue(), catalog)
	report, err = handle.SyncModelFields(context.Background(), SyncIgnoreBase())
	assert.Nil(t, err)
	assert.EqualValues(t, 1, len(report.Matched))
}

func TestSyncModelFieldsFallbackToBase(t *testing.T) {
	catalog := &fakeModels{records: []*repository.ModelRecord{
		{Key: "k-alt", Name: "some other sdxl model", Base: "sdxl", Type: "main"},
	}}

	handle := newTestHandle(t, newFakeQueue(), catalog)
	report, err := handle.SyncModelFields(context.Background())
	assert.Nil(t, err)
	assert.EqualValues(t, 1, len(report.Unmatched))

	handle = newTestHandle(t, newFakeQueue(), catalog)
	report, err = handle.SyncModelFields(context.Background(), SyncFallbackToBase())
	assert.Nil(t, err)
	if assert.EqualValues(t, 1, len(report.Matched)) {
		assert.EqualValues(t, "k-alt", report.Matched[0].ModelKey)
	}
}

func TestSyncModelFieldsListFailure(t *testing.T) {
	handle := newTestHandle(t, newFakeQueue(), &fakeModels{err: fmt.Errorf("catalog offline")})
	_, err := handle.SyncModelFields(context.Background())
	assert.NotNil(t, err)
}
