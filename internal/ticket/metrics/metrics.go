package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for ticket dispatch.
type Metrics struct {
	Dispatched       *prometheus.CounterVec
	NoContactMethod  prometheus.Counter
	DeliveryFailures *prometheus.CounterVec
}

// New creates the ticket metrics and registers them with reg. Tests pass a
// fresh registry so parallel fixtures never collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Dispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bmmhub_tickets_dispatched_total",
			Help: "Ticket delivery requests published, by channel",
		}, []string{"channel"}),
		NoContactMethod: factory.NewCounter(prometheus.CounterOpts{
			Name: "bmmhub_tickets_no_contact_method_total",
			Help: "Confirmed attendees with no usable delivery channel",
		}),
		DeliveryFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bmmhub_ticket_delivery_failures_total",
			Help: "Delivery failures reported by the external worker, by channel",
		}, []string{"channel"}),
	}
}
