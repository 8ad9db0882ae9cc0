package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the venue assignment engine.
type Metrics struct {
	Assignments          *prometheus.CounterVec
	CapacityRejections   prometheus.Counter
	CrossRegion          prometheus.Counter
	AutoAssignUnassigned prometheus.Counter
}

// New creates the assignment metrics and registers them with reg. Tests
// pass a fresh registry so parallel fixtures never collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Assignments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bmmhub_assignments_total",
			Help: "Venue assignments committed, by mode",
		}, []string{"mode"}),
		CapacityRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "bmmhub_assignment_capacity_rejections_total",
			Help: "Assignment attempts rejected because the venue was full",
		}),
		CrossRegion: factory.NewCounter(prometheus.CounterOpts{
			Name: "bmmhub_assignment_cross_region_total",
			Help: "Manual assignments placing a member outside their home region",
		}),
		AutoAssignUnassigned: factory.NewCounter(prometheus.CounterOpts{
			Name: "bmmhub_auto_assign_unassigned_total",
			Help: "Records an auto-assignment run could not place",
		}),
	}
}
