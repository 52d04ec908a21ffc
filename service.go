package invokeai

import (
	"fmt"

	"github.com/CodeGandee/invokeai-go-client/schema"
	"github.com/CodeGandee/invokeai-go-client/service/dao/document"
	jobdao "github.com/CodeGandee/invokeai-go-client/service/dao/job"
	"github.com/CodeGandee/invokeai-go-client/service/repository"
	"github.com/CodeGandee/invokeai-go-client/service/rest"
)

// Service is the high-level client façade: it wires the HTTP transport, the
// remote repositories and the document layer, and exposes a Runtime for
// workflow operations.
type Service struct {
	runtime *Runtime
	config  *Config
	client  *rest.Client
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	return s.ensureBaseSetup()
}

func (s *Service) ensureBaseSetup() error {
	if s.client == nil {
		s.client = rest.New(s.config.BaseURL)
		s.client.APIKey = s.config.APIKey
	}
	if s.runtime.documents == nil {
		s.runtime.documents = document.New()
	}
	if s.runtime.validator == nil {
		validator, err := schema.New()
		if err != nil {
			return fmt.Errorf("compile document schema: %w", err)
		}
		s.runtime.validator = validator
	}
	if s.runtime.boards == nil {
		s.runtime.boards = repository.NewBoardService(s.client)
	}
	if s.runtime.images == nil {
		s.runtime.images = repository.NewImageService(s.client)
	}
	if s.runtime.models == nil {
		s.runtime.models = repository.NewModelService(s.client)
	}
	if s.runtime.queue == nil {
		s.runtime.queue = repository.NewQueueService(s.client, s.config.Queue.ID)
	}
	if s.runtime.history == nil {
		s.runtime.history = jobdao.New()
	}
	s.runtime.pollInterval = s.config.Poll.Interval
	s.runtime.waitTimeout = s.config.Poll.Timeout
	return nil
}

// Runtime returns the workflow runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Boards returns the board repository.
func (s *Service) Boards() repository.Boards { return s.runtime.boards }

// Images returns the image repository.
func (s *Service) Images() repository.Images { return s.runtime.images }

// Models returns the installed-model repository.
func (s *Service) Models() repository.Models { return s.runtime.models }

// Queue returns the submission queue repository.
func (s *Service) Queue() repository.Queue { return s.runtime.queue }

// New creates a fully wired client service.
func New(options ...Option) (*Service, error) {
	ret := &Service{runtime: &Runtime{}}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
