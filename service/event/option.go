package event

import (
	"github.com/CodeGandee/invokeai-go-client/service/messaging/memory"
)

type Option func(s *Service)

// WithQueueConfig sets the per-stream memory queue configuration
func WithQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.queueConfig = newConfig
	}
}
