//go:build linux

package tracer

import (
	"log/slog"

	"k8s.io/utils/clock"
)

// Option overrides a tracer collaborator, mainly for tests.
type Option func(*Tracer)

// WithLogger sets the logger used by the tracer.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracer) {
		if l != nil {
			t.log = l.With("service", "tracer")
		}
	}
}

// WithClock injects the clock driving the sampling loop.
func WithClock(c clock.WithTicker) Option {
	return func(t *Tracer) {
		if c != nil {
			t.clk = c
		}
	}
}
