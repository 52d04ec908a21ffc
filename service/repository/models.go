package repository

import (
	"context"
	"fmt"
	"net/http"

	"github.com/CodeGandee/invokeai-go-client/service/rest"
)

// ModelService implements Models over the REST API.
type ModelService struct {
	client *rest.Client
}

var _ Models = (*ModelService)(nil)

// NewModelService creates a model repository bound to the given client.
func NewModelService(client *rest.Client) *ModelService {
	return &ModelService{client: client}
}

// ListInstalled fetches the current installed-model catalog.  No caching:
// model sync always sees the live catalog.
func (s *ModelService) ListInstalled(ctx context.Context) ([]*ModelRecord, error) {
	var listing struct {
		Models []*ModelRecord `json:"models"`
	}
	if err := s.client.Do(ctx, http.MethodGet, "api/v2/models/", nil, &listing); err != nil {
		return nil, fmt.Errorf("list installed models: %w", err)
	}
	return listing.Models, nil
}
