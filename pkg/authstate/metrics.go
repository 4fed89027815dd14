package authstate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts resolution outcomes for the auth state store.
type Metrics struct {
	resolutions      *prometheus.CounterVec
	staleDiscards    prometheus.Counter
	subProfileErrors prometheus.Counter
	phase            prometheus.Gauge
}

// NewMetrics builds store metrics registered with reg. A nil registerer
// yields working but unregistered collectors, which keeps tests quiet.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gatekeeper",
			Subsystem: "authstate",
			Name:      "resolutions_total",
			Help:      "Profile resolution runs by outcome.",
		}, []string{"outcome"}),
		staleDiscards: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gatekeeper",
			Subsystem: "authstate",
			Name:      "stale_resolutions_discarded_total",
			Help:      "Resolution runs discarded because a newer session event superseded them.",
		}),
		subProfileErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gatekeeper",
			Subsystem: "authstate",
			Name:      "sub_profile_errors_total",
			Help:      "Vendor or staff sub-profile fetches that failed non-fatally.",
		}),
		phase: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "gatekeeper",
			Subsystem: "authstate",
			Name:      "phase",
			Help:      "Current resolution phase as its enum value.",
		}),
	}
}
