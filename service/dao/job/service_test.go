package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CodeGandee/invokeai-go-client/queue"
	"github.com/CodeGandee/invokeai-go-client/service/dao"
)

func TestService(t *testing.T) {
	history := New()
	ctx := context.Background()

	assert.ErrorIs(t, history.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, history.Save(ctx, &queue.Snapshot{}), dao.ErrInvalidID)

	_, err := history.Load(ctx, "")
	assert.ErrorIs(t, err, dao.ErrInvalidID)
	_, err = history.Load(ctx, "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)

	assert.Nil(t, history.Save(ctx, &queue.Snapshot{ItemID: "i1", Status: queue.StatusPending}))
	assert.Nil(t, history.Save(ctx, &queue.Snapshot{ItemID: "i2", Status: queue.StatusCompleted}))
	assert.Nil(t, history.Save(ctx, &queue.Snapshot{ItemID: "i3", Status: queue.StatusFailed, Error: "oom"}))

	// later snapshots overwrite earlier ones for the same item
	assert.Nil(t, history.Save(ctx, &queue.Snapshot{ItemID: "i1", Status: queue.StatusCompleted}))
	loaded, err := history.Load(ctx, "i1")
	if assert.Nil(t, err) {
		assert.EqualValues(t, queue.StatusCompleted, loaded.Status)
	}

	all, err := history.List(ctx)
	assert.Nil(t, err)
	assert.EqualValues(t, 3, len(all))

	completed, err := history.List(ctx, dao.NewParameter("Status", "completed"))
	assert.Nil(t, err)
	assert.EqualValues(t, 2, len(completed))

	terminalBad, err := history.List(ctx, dao.NewParameter("Status", "failed", "canceled"))
	assert.Nil(t, err)
	if assert.EqualValues(t, 1, len(terminalBad)) {
		assert.EqualValues(t, "oom", terminalBad[0].Error)
	}
}
