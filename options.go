package lz4stream

import (
	"go.uber.org/zap"

	"github.com/84codes/lz4stream/internal/stats"
)

// Option configures an adapter.
type Option interface {
	apply(*options)
}

// options holds the adapter configuration.
type options struct {
	prefs  Preferences
	logger *zap.Logger
	stats  stats.Collector
	owned  bool
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		prefs:  DefaultPreferences(),
		logger: zap.NewNop(),
		stats:  stats.NewNoop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithPreferences sets the frame preferences for encoding.
// If not set, DefaultPreferences is used.
func WithPreferences(p Preferences) Option {
	return optionFunc(func(o *options) {
		o.prefs = p
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithOwnedStream makes the adapter own the underlying stream: Close also
// closes the stream and permanently disables the adapter. Adapters built
// from a filesystem path always own their file.
func WithOwnedStream() Option {
	return optionFunc(func(o *options) {
		o.owned = true
	})
}
