// Package metrics registers the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values
const (
	OutcomeSuccess      = "success"
	OutcomeConnectivity = "connectivity"
	OutcomeError        = "error"
	OutcomeSkipped      = "skipped"
)

var (
	// AuthOperations counts auth adapter calls.
	// Labels:
	//   - operation: "sign_in", "register", "sign_out", "resume", "expire"
	//   - outcome: "success", "connectivity", "error"
	AuthOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_auth_operations_total",
			Help: "Total number of authentication operations",
		},
		[]string{"operation", "outcome"},
	)

	// ProfileWrites counts profile merge-writes, including skipped no-op updates
	ProfileWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_profile_writes_total",
			Help: "Total number of profile document writes",
		},
		[]string{"outcome"},
	)

	// ProfileFetches counts profile loads during session bootstrap
	ProfileFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_profile_fetches_total",
			Help: "Total number of profile document fetches",
		},
		[]string{"outcome"},
	)

	// Advisories counts advisory messages published to users
	Advisories = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_advisories_total",
			Help: "Total number of advisory messages published",
		},
		[]string{"kind"},
	)

	// NetworkOnline is 1 while the document store network layer is enabled
	NetworkOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "travel_store_network_online",
			Help: "Whether the document store network layer is enabled",
		},
	)
)
