package schedsim

import (
	"io"

	"github.com/viant/afs"
	"github.com/viant/schedsim/policy"
	"github.com/viant/schedsim/service/event"
	"github.com/viant/schedsim/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures the simulator service
type Option func(s *Service)

// WithConfig sets the engine configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithPolicy overrides the policy named by the configuration
func WithPolicy(policy policy.Policy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithOutput sets where console lines are written; nil discards them
func WithOutput(w io.Writer) Option {
	return func(s *Service) {
		if w == nil {
			w = io.Discard
		}
		s.output = w
	}
}

// WithEventHandler registers a handler receiving every scheduling event
func WithEventHandler(handler func(*event.Event[event.Scheduling])) Option {
	return func(s *Service) {
		if handler != nil {
			s.handlers = append(s.handlers, handler)
		}
	}
}

// WithFs sets the storage used for programs, simulations and reports
func WithFs(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. The first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracingErr = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, for example OTLP or an in-memory recorder.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracingErr = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
