package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CodeGandee/invokeai-go-client/model/graph"
	"github.com/CodeGandee/invokeai-go-client/service/rest"
)

func newTestServer(t *testing.T) (*httptest.Server, *rest.Client) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/boards/b1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Board{BoardID: "b1", BoardName: "portraits", ImageCount: 2})
	})
	mux.HandleFunc("/api/v1/boards/b1/image_names", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]string{"a.png", "b.png"})
	})
	mux.HandleFunc("/api/v1/images/i/a.png", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ImageMeta{ImageName: "a.png", BoardID: "b1", Width: 512, Height: 768})
	})
	mux.HandleFunc("/api/v2/models/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"models": []ModelRecord{
				{Key: "k1", Name: "juggernaut", Base: "sdxl", Type: "main"},
			},
		})
	})
	mux.HandleFunc("/api/v1/queue/default/enqueue_batch", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		batch, _ := body["batch"].(map[string]interface{})
		if batch["graph"] == nil {
			http.Error(w, "missing graph", http.StatusUnprocessableEntity)
			return
		}
		_ = json.NewEncoder(w).Encode(EnqueueResult{BatchID: "batch-1", ItemIDs: []string{"item-1", "item-2"}})
	})
	mux.HandleFunc("/api/v1/queue/default/i/item-1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ItemSnapshot{ItemID: "item-1", BatchID: "batch-1", Status: "in_progress", Progress: 0.5})
	})
	mux.HandleFunc("/api/v1/queue/default/i/item-1/cancel", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/v1/queue/default/i/item-done/cancel", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "already finished", http.StatusConflict)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "not found"}`, http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, rest.New(server.URL)
}

func TestBoardService(t *testing.T) {
	_, client := newTestServer(t)
	boards := NewBoardService(client)

	board, err := boards.GetBoard(context.Background(), "b1")
	if assert.Nil(t, err) {
		assert.EqualValues(t, "portraits", board.BoardName)
	}

	names, err := boards.ListImages(context.Background(), "b1")
	assert.Nil(t, err)
	assert.EqualValues(t, []string{"a.png", "b.png"}, names)

	_, err = boards.GetBoard(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestImageService(t *testing.T) {
	_, client := newTestServer(t)
	images := NewImageService(client)

	meta, err := images.GetImage(context.Background(), "a.png")
	if assert.Nil(t, err) {
		assert.EqualValues(t, 512, meta.Width)
		assert.EqualValues(t, "b1", meta.BoardID)
	}

	_, err = images.GetImage(context.Background(), "missing.png")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestModelService(t *testing.T) {
	_, client := newTestServer(t)
	models := NewModelService(client)

	records, err := models.ListInstalled(context.Background())
	if assert.Nil(t, err) && assert.EqualValues(t, 1, len(records)) {
		assert.EqualValues(t, "juggernaut", records[0].Name)
	}
}

func TestQueueService(t *testing.T) {
	_, client := newTestServer(t)
	queue := NewQueueService(client, "")

	submission := &graph.Submission{
		ID:    "sub-1",
		Nodes: map[string]map[string]interface{}{"n1": {"id": "n1", "type": "noise"}},
	}
	result, err := queue.Enqueue(context.Background(), submission, 2)
	if assert.Nil(t, err) {
		assert.EqualValues(t, "batch-1", result.BatchID)
		assert.EqualValues(t, []string{"item-1", "item-2"}, result.ItemIDs)
	}

	_, err = queue.Enqueue(context.Background(), nil, 1)
	assert.NotNil(t, err)

	snapshot, err := queue.GetItem(context.Background(), "item-1")
	if assert.Nil(t, err) {
		assert.EqualValues(t, "in_progress", snapshot.Status)
		assert.EqualValues(t, 0.5, snapshot.Progress)
	}

	canceled, err := queue.CancelItem(context.Background(), "item-1")
	assert.Nil(t, err)
	assert.True(t, canceled)

	// a remote that already finished the item is not an error
	canceled, err = queue.CancelItem(context.Background(), "item-done")
	assert.Nil(t, err)
	assert.False(t, canceled)

	_, err = queue.GetItem(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}
