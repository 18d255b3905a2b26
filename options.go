package codeassist

import (
	"log/slog"

	"github.com/gozephyr/codeassist/config"
	"github.com/gozephyr/codeassist/metrics"
	"github.com/gozephyr/codeassist/trigger"
)

type options struct {
	cfg     *config.Config
	handler trigger.Handler
	metrics *metrics.EngineMetrics
	logger  *slog.Logger
}

// Option is a function that configures the engine
type Option func(*options)

func defaultOptions() *options {
	return &options{
		cfg:     config.Default(),
		metrics: metrics.New(),
	}
}

// WithConfig sets the engine configuration
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		if cfg != nil {
			o.cfg = cfg
		}
	}
}

// WithHandler sets the callback that receives debounced completion results
func WithHandler(h trigger.Handler) Option {
	return func(o *options) { o.handler = h }
}

// WithMetrics sets the metrics collector shared with exporters
func WithMetrics(m *metrics.EngineMetrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}
