// Package repository defines the collaborator interfaces the workflow
// subsystem consumes – boards, images, installed models and the job queue –
// together with their HTTP implementations.  The workflow handle and job
// tracker depend on these interfaces only, so tests substitute in-memory
// fakes.
package repository

import (
	"context"

	"github.com/CodeGandee/invokeai-go-client/model/graph"
)

type (
	// Board is a server-side image collection.
	Board struct {
		BoardID    string `json:"board_id"`
		BoardName  string `json:"board_name"`
		ImageCount int    `json:"image_count"`
	}

	// ImageMeta is the metadata record of one server-side image.
	ImageMeta struct {
		ImageName string `json:"image_name"`
		BoardID   string `json:"board_id,omitempty"`
		Width     int    `json:"width,omitempty"`
		Height    int    `json:"height,omitempty"`
	}

	// ModelRecord is one entry of the installed-model catalog.
	ModelRecord struct {
		Key  string `json:"key"`
		Hash string `json:"hash"`
		Name string `json:"name"`
		Base string `json:"base"`
		Type string `json:"type"`
	}

	// EnqueueResult is what the queue returns when it accepts a batch.
	EnqueueResult struct {
		BatchID string   `json:"batch_id"`
		ItemIDs []string `json:"item_ids"`
	}

	// ItemSnapshot is the remote view of one queue item at poll time.
	// Results maps node id to that node's raw output payload.
	ItemSnapshot struct {
		ItemID   string                            `json:"item_id"`
		BatchID  string                            `json:"batch_id,omitempty"`
		Status   string                            `json:"status"`
		Error    string                            `json:"error,omitempty"`
		Results  map[string]map[string]interface{} `json:"results,omitempty"`
		Progress float64                           `json:"progress,omitempty"`
	}
)

// Boards resolves board identifiers and their image listings.
type Boards interface {
	GetBoard(ctx context.Context, id string) (*Board, error)
	ListImages(ctx context.Context, boardID string) ([]string, error)
}

// Images resolves image metadata by name.
type Images interface {
	GetImage(ctx context.Context, name string) (*ImageMeta, error)
}

// Models lists the server's currently installed models.  The catalog is
// read-only from the client's perspective; callers always refetch.
type Models interface {
	ListInstalled(ctx context.Context) ([]*ModelRecord, error)
}

// Queue is the submission transport: it accepts a wire-format graph and
// exposes per-item status and best-effort cancellation.
type Queue interface {
	Enqueue(ctx context.Context, submission *graph.Submission, runs int) (*EnqueueResult, error)
	GetItem(ctx context.Context, itemID string) (*ItemSnapshot, error)
	CancelItem(ctx context.Context, itemID string) (bool, error)
}
