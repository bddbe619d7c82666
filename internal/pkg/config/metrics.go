package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"news-aggregator/internal/observability/metrics"
)

// ConfigMetrics reports how a component's settings were loaded. Every
// rejected value falls back to its default, so a fallback is the only kind of
// configuration error there is:
//
//	news_<component>_config_loaded_timestamp_seconds
//	news_<component>_config_fallbacks_total{field}
//	news_<component>_config_degraded
//
// Registration goes to the default registry and panics on a repeated name.
type ConfigMetrics struct {
	LoadedAt  prometheus.Gauge
	Fallbacks *prometheus.CounterVec
	Degraded  prometheus.Gauge

	component string
}

func NewConfigMetrics(component string) *ConfigMetrics {
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace: metrics.Namespace,
			Subsystem: component,
			Name:      name,
			Help:      help,
		}
	}
	return &ConfigMetrics{
		LoadedAt: promauto.NewGauge(prometheus.GaugeOpts(
			opts("config_loaded_timestamp_seconds", "When the configuration was last loaded."))),
		Fallbacks: promauto.NewCounterVec(prometheus.CounterOpts(
			opts("config_fallbacks_total", "Settings replaced by their default because the value was rejected.")),
			[]string{"field"}),
		Degraded: promauto.NewGauge(prometheus.GaugeOpts(
			opts("config_degraded", "1 while at least one setting runs on a fallback default."))),
		component: component,
	}
}

func (m *ConfigMetrics) Component() string {
	return m.component
}

// RecordLoad marks a completed load. fellBack names the settings that were
// replaced by defaults; an empty list clears the degraded flag.
func (m *ConfigMetrics) RecordLoad(fellBack []string) {
	for _, field := range fellBack {
		m.Fallbacks.WithLabelValues(field).Inc()
	}
	if len(fellBack) > 0 {
		m.Degraded.Set(1)
	} else {
		m.Degraded.Set(0)
	}
	m.LoadedAt.SetToCurrentTime()
}
