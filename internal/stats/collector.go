// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Reader metrics.
	MetricCompressedBytesIn   = "lz4stream_compressed_bytes_in_total"
	MetricUncompressedBytesIn = "lz4stream_uncompressed_bytes_in_total"

	// Writer metrics.
	MetricCompressedBytesOut   = "lz4stream_compressed_bytes_out_total"
	MetricUncompressedBytesOut = "lz4stream_uncompressed_bytes_out_total"
	MetricFramesStarted        = "lz4stream_frames_started_total"
	MetricFramesEnded          = "lz4stream_frames_ended_total"

	// Derived observation recorded when a frame ends.
	MetricFrameRatio = "lz4stream_frame_compression_ratio"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
