// Package lz4codecfx provides an fx module for an LZ4 frame codec.
package lz4codecfx

import (
	prom "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/84codes/lz4stream"
	"github.com/84codes/lz4stream/internal/stats"
	"github.com/84codes/lz4stream/internal/stats/logger"
	"github.com/84codes/lz4stream/internal/stats/prometheus"
)

// Config holds configuration for the codec.
type Config struct {
	// Preferences configure the frames the codec's writers produce.
	// The zero value means lz4stream.DefaultPreferences.
	Preferences *lz4stream.Preferences

	// Registry receives the codec's metrics. If nil, metrics are logged
	// at debug level instead of exported.
	Registry prom.Registerer
}

// Module provides an LZ4 frame codec.
// Requires a Config and a *zap.Logger to be supplied by the application.
var Module = fx.Module("lz4codec",
	fx.Provide(
		newStatsCollector,
		newCodec,
	),
)

func newStatsCollector(cfg Config, log *zap.Logger) stats.Collector {
	if cfg.Registry != nil {
		return prometheus.New(cfg.Registry)
	}
	return logger.New(log.Named("lz4stream.stats"))
}

// Params holds dependencies for creating the codec.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
}

// Result holds the provided codec.
type Result struct {
	fx.Out

	Codec *lz4stream.Codec
}

func newCodec(p Params) Result {
	prefs := lz4stream.DefaultPreferences()
	if p.Config.Preferences != nil {
		prefs = *p.Config.Preferences
	}

	codec := lz4stream.NewCodec(
		lz4stream.WithPreferences(prefs),
		lz4stream.WithStats(p.Collector),
		lz4stream.WithLogger(p.Logger.Named("lz4stream")),
	)
	return Result{Codec: codec}
}
