// Package logger provides a zap-based stats collector. It writes the
// codec's byte counters and frame metrics to the log at debug level,
// which is useful when no Prometheus registry is wired up.
package logger

import (
	"go.uber.org/zap"

	"github.com/84codes/lz4stream/internal/stats"
)

// Collector implements stats.Collector by logging every metric update.
// Counter deltas are emitted as-is rather than accumulated, so totals
// such as lz4stream_compressed_bytes_out_total have to be summed by
// whoever reads the log.
type Collector struct {
	logger *zap.Logger
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a collector that logs to the given logger.
// If logger is nil, a no-op logger is used and all updates are dropped.
func New(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{logger: logger}
}

// IncCounter logs a counter increment.
func (c *Collector) IncCounter(name string, delta int64) {
	c.logger.Debug("counter",
		zap.String("metric", name),
		zap.Int64("delta", delta),
	)
}

// SetGauge logs a gauge value.
func (c *Collector) SetGauge(name string, value int64) {
	c.logger.Debug("gauge",
		zap.String("metric", name),
		zap.Int64("value", value),
	)
}

// ObserveHistogram logs a histogram observation.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.logger.Debug("histogram",
		zap.String("metric", name),
		zap.Float64("value", value),
	)
}
