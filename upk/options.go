package upk

import "go.uber.org/zap"

type config struct {
	log          *zap.Logger
	skipTagCheck bool
}

// Option configures a single Parse call.
type Option func(*config)

// WithoutTagCheck accepts any tag at offset 0 instead of requiring PackageTag.
func WithoutTagCheck() Option {
	return func(c *config) {
		c.skipTagCheck = true
	}
}

// WithLogger overrides the package logger for one Parse call.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = Logger()
	}
	return c
}
