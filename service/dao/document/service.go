// Package document loads workflow documents from local or remote storage and
// keeps a hot-swappable in-memory cache keyed by URL.
package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/CodeGandee/invokeai-go-client/model"
	"github.com/CodeGandee/invokeai-go-client/service/dao"
)

// Service loads and caches workflow documents.  The abstract file system
// resolves file, embed and remote URLs alike.
type Service struct {
	fs    afs.Service
	mu    sync.RWMutex
	cache map[string]*model.Document
}

// New creates a document service.
func New() *Service {
	return &Service{
		fs:    afs.New(),
		cache: map[string]*model.Document{},
	}
}

// Load fetches and decodes the document at the given URL, serving repeated
// loads from the cache.  A URL without extension defaults to .json.
func (s *Service) Load(ctx context.Context, URL string) (*model.Document, error) {
	if URL == "" {
		return nil, dao.ErrInvalidID
	}
	URL = expandEnvExpr(URL)
	if filepath.Ext(URL) == "" {
		URL += ".json"
	}
	s.mu.RLock()
	cached, ok := s.cache[URL]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}
	return s.Refresh(ctx, URL)
}

// Refresh re-downloads the document at the given URL and replaces the cached
// entry, so a changed upstream document takes effect without restart.
func (s *Service) Refresh(ctx context.Context, URL string) (*model.Document, error) {
	URL = expandEnvExpr(URL)
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow from %s: %w", URL, err)
	}
	document, err := s.decode(URL, data)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cache[URL] = document
	s.mu.Unlock()
	return document, nil
}

// Upsert places a programmatically built document in the cache under the
// given key.
func (s *Service) Upsert(key string, document *model.Document) error {
	if key == "" {
		return dao.ErrInvalidID
	}
	if document == nil {
		return dao.ErrNilEntity
	}
	s.mu.Lock()
	s.cache[key] = document
	s.mu.Unlock()
	return nil
}

// Lookup returns the cached document under the given key, or dao.ErrNotFound.
func (s *Service) Lookup(key string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if document, ok := s.cache[key]; ok {
		return document, nil
	}
	return nil, fmt.Errorf("document %s: %w", key, dao.ErrNotFound)
}

func (s *Service) decode(URL string, data []byte) (*model.Document, error) {
	var document *model.Document
	var err error
	switch strings.ToLower(filepath.Ext(URL)) {
	case ".yaml", ".yml":
		document, err = s.DecodeYAML(data)
	default:
		document, err = s.DecodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse workflow from %s: %w", URL, err)
	}
	if document.Name == "" {
		document.Name = documentNameFromURL(URL)
	}
	return document, nil
}

// DecodeJSON decodes a workflow document from JSON.
func (s *Service) DecodeJSON(data []byte) (*model.Document, error) {
	document, err := model.Parse(data)
	if err != nil {
		return nil, err
	}
	if len(document.Nodes) == 0 {
		return nil, &model.MalformedWorkflowError{Reason: "document has no nodes"}
	}
	return document, nil
}

// DecodeYAML decodes a workflow document from YAML.  The YAML is rendered to
// JSON first so node declaration order survives the translation.
func (s *Service) DecodeYAML(data []byte) (*model.Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &model.MalformedWorkflowError{Reason: "invalid document YAML", Err: err}
	}
	encoded, err := yamlNodeToJSON(&node)
	if err != nil {
		return nil, &model.MalformedWorkflowError{Reason: "invalid document YAML", Err: err}
	}
	return s.DecodeJSON(encoded)
}

// documentNameFromURL extracts the document name from a URL (file name
// without extension).
func documentNameFromURL(URL string) string {
	base := filepath.Base(URL)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// yamlNodeToJSON renders a parsed YAML node as JSON, preserving mapping key
// order, which encoding/json maps would lose.
func yamlNodeToJSON(node *yaml.Node) ([]byte, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return []byte("null"), nil
		}
		return yamlNodeToJSON(node.Content[0])
	case yaml.AliasNode:
		return yamlNodeToJSON(node.Alias)
	case yaml.MappingNode:
		var buffer bytes.Buffer
		buffer.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				buffer.WriteByte(',')
			}
			key, err := json.Marshal(node.Content[i].Value)
			if err != nil {
				return nil, err
			}
			buffer.Write(key)
			buffer.WriteByte(':')
			value, err := yamlNodeToJSON(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			buffer.Write(value)
		}
		buffer.WriteByte('}')
		return buffer.Bytes(), nil
	case yaml.SequenceNode:
		var buffer bytes.Buffer
		buffer.WriteByte('[')
		for i, item := range node.Content {
			if i > 0 {
				buffer.WriteByte(',')
			}
			value, err := yamlNodeToJSON(item)
			if err != nil {
				return nil, err
			}
			buffer.Write(value)
		}
		buffer.WriteByte(']')
		return buffer.Bytes(), nil
	case yaml.ScalarNode:
		var value interface{}
		if err := node.Decode(&value); err != nil {
			return nil, err
		}
		return json.Marshal(value)
	}
	return []byte("null"), nil
}
