package invokeai

import (
	"github.com/viant/x"

	"github.com/CodeGandee/invokeai-go-client/extension"
	"github.com/CodeGandee/invokeai-go-client/schema"
	"github.com/CodeGandee/invokeai-go-client/service/dao/document"
	"github.com/CodeGandee/invokeai-go-client/service/event"
	"github.com/CodeGandee/invokeai-go-client/service/repository"
	"github.com/CodeGandee/invokeai-go-client/service/rest"
	"github.com/CodeGandee/invokeai-go-client/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the client service.
type Option func(s *Service)

// WithConfig sets the whole configuration at once.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithBaseURL sets the remote service base URL.
func WithBaseURL(baseURL string) Option {
	return func(s *Service) {
		if s.config == nil {
			s.config = DefaultConfig()
		}
		s.config.BaseURL = baseURL
	}
}

// WithAPIKey sets the bearer token sent on every request.
func WithAPIKey(apiKey string) Option {
	return func(s *Service) {
		if s.config == nil {
			s.config = DefaultConfig()
		}
		s.config.APIKey = apiKey
	}
}

// WithQueueID selects the server-side queue.
func WithQueueID(id string) Option {
	return func(s *Service) {
		if s.config == nil {
			s.config = DefaultConfig()
		}
		s.config.Queue.ID = id
	}
}

// WithRESTClient sets the HTTP transport.
func WithRESTClient(client *rest.Client) Option {
	return func(s *Service) { s.client = client }
}

// WithDocumentService sets the workflow document loader.
func WithDocumentService(service *document.Service) Option {
	return func(s *Service) { s.runtime.documents = service }
}

// WithValidator sets the envelope schema validator.
func WithValidator(validator *schema.Validator) Option {
	return func(s *Service) { s.runtime.validator = validator }
}

// WithBoards overrides the board repository.
func WithBoards(boards repository.Boards) Option {
	return func(s *Service) { s.runtime.boards = boards }
}

// WithImages overrides the image repository.
func WithImages(images repository.Images) Option {
	return func(s *Service) { s.runtime.images = images }
}

// WithModels overrides the installed-model repository.
func WithModels(models repository.Models) Option {
	return func(s *Service) { s.runtime.models = models }
}

// WithQueue overrides the submission queue repository.
func WithQueue(queue repository.Queue) Option {
	return func(s *Service) { s.runtime.queue = queue }
}

// WithExtensionTypes registers Go types for custom node result payloads;
// each type must carry its wire tag via x.WithName.
func WithExtensionTypes(goTypes ...*x.Type) Option {
	return func(s *Service) {
		if s.runtime.types == nil {
			s.runtime.types = extension.NewTypes()
		}
		for _, t := range goTypes {
			if t != nil {
				s.runtime.types.Register(t)
			}
		}
	}
}

// WithEventService publishes job lifecycle events to the given service.
func WithEventService(service *event.Service) Option {
	return func(s *Service) { s.runtime.events = service }
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The function is
// safe to call multiple times – the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter. This enables
// integrations with exporters other than the built-in stdout exporter, for example OTLP, Jaeger or
// Zipkin. The function is safe to call multiple times – the first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
