package simulation

// Option configures the simulation loader
type Option func(*Service)

// WithProcDir sets the directory program paths are resolved against
func WithProcDir(dir string) Option {
	return func(s *Service) {
		s.procDir = dir
	}
}

// WithConfiguredPriority expects a priority after every process path
func WithConfiguredPriority(enabled bool) Option {
	return func(s *Service) {
		s.configuredPriority = enabled
	}
}

// WithPaging expects a memory line after the first line
func WithPaging(enabled bool) Option {
	return func(s *Service) {
		s.paging = enabled
	}
}
