package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/CodeGandee/invokeai-go-client/service/rest"
)

// ErrNotFound is returned when the requested entity does not exist on the
// remote service.
var ErrNotFound = errors.New("repository: not found")

// BoardService implements Boards over the REST API.
type BoardService struct {
	client *rest.Client
}

var _ Boards = (*BoardService)(nil)

// NewBoardService creates a board repository bound to the given client.
func NewBoardService(client *rest.Client) *BoardService {
	return &BoardService{client: client}
}

// GetBoard fetches one board by id.
func (s *BoardService) GetBoard(ctx context.Context, id string) (*Board, error) {
	var board Board
	endpoint := fmt.Sprintf("api/v1/boards/%s", url.PathEscape(id))
	if err := s.client.Do(ctx, http.MethodGet, endpoint, nil, &board); err != nil {
		return nil, wrapNotFound(err, "board %s", id)
	}
	return &board, nil
}

// ListImages returns the names of every image filed under the board.
func (s *BoardService) ListImages(ctx context.Context, boardID string) ([]string, error) {
	var names []string
	endpoint := fmt.Sprintf("api/v1/boards/%s/image_names", url.PathEscape(boardID))
	if err := s.client.Do(ctx, http.MethodGet, endpoint, nil, &names); err != nil {
		return nil, wrapNotFound(err, "board %s images", boardID)
	}
	return names, nil
}

// ImageService implements Images over the REST API.
type ImageService struct {
	client *rest.Client
}

var _ Images = (*ImageService)(nil)

// NewImageService creates an image repository bound to the given client.
func NewImageService(client *rest.Client) *ImageService {
	return &ImageService{client: client}
}

// GetImage fetches the metadata record of one image.
func (s *ImageService) GetImage(ctx context.Context, name string) (*ImageMeta, error) {
	var meta ImageMeta
	endpoint := fmt.Sprintf("api/v1/images/i/%s", url.PathEscape(name))
	if err := s.client.Do(ctx, http.MethodGet, endpoint, nil, &meta); err != nil {
		return nil, wrapNotFound(err, "image %s", name)
	}
	return &meta, nil
}

// wrapNotFound converts a remote 404 into ErrNotFound with entity context;
// other errors pass through wrapped.
func wrapNotFound(err error, format string, args ...interface{}) error {
	var apiErr *rest.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
