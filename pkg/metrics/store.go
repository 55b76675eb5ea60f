package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StoreMetrics instruments a Store backend (appends by direction).
// Mirrors the teacher's badgerMetrics gating: nil until InitRegistry is
// called, so a caller can always do `if s.metrics != nil { ... }`.
type StoreMetrics struct {
	appends *prometheus.CounterVec
}

// NewStoreMetrics returns nil if metrics are not enabled.
func NewStoreMetrics() *StoreMetrics {
	if !IsEnabled() {
		return nil
	}
	reg := GetRegistry()
	return &StoreMetrics{
		appends: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fix_store_appends_total",
				Help: "Total number of durable Store.Append calls by direction",
			},
			[]string{"direction"},
		),
	}
}

func (m *StoreMetrics) RecordAppend(direction string) {
	if m == nil {
		return
	}
	m.appends.WithLabelValues(direction).Inc()
}
