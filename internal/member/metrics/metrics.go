package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the registration stage machine.
type Metrics struct {
	StageTransitions        *prometheus.CounterVec
	StageViolations         prometheus.Counter
	TicketsIssued           prometheus.Counter
	SpecialVoteApplications prometheus.Counter
	ConcurrentModifications prometheus.Counter
}

// New creates the stage-machine metrics and registers them with reg. Tests
// pass a fresh registry so parallel fixtures never collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StageTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bmmhub_stage_transitions_total",
			Help: "Stage transitions applied, by target stage",
		}, []string{"to"}),
		StageViolations: factory.NewCounter(prometheus.CounterOpts{
			Name: "bmmhub_stage_violations_total",
			Help: "Rejected illegal stage transition attempts",
		}),
		TicketsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "bmmhub_tickets_issued_total",
			Help: "Ticket tokens generated on attendance confirmation",
		}),
		SpecialVoteApplications: factory.NewCounter(prometheus.CounterOpts{
			Name: "bmmhub_special_vote_applications_total",
			Help: "Special vote applications moved to PENDING",
		}),
		ConcurrentModifications: factory.NewCounter(prometheus.CounterOpts{
			Name: "bmmhub_concurrent_modifications_total",
			Help: "Record mutations lost to an optimistic version race",
		}),
	}
}
