package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	JobsQueued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "design",
		Subsystem: "jobs",
		Name:      "queued_total",
		Help:      "Total image generation jobs accepted into the queue.",
	})
	JobsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "design",
		Subsystem: "jobs",
		Name:      "completed_total",
		Help:      "Total jobs that finished and produced images.",
	})
	JobsCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "design",
		Subsystem: "jobs",
		Name:      "cancelled_total",
		Help:      "Total jobs cancelled while still pending.",
	})
	CreditsPurchased = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "design",
		Subsystem: "credits",
		Name:      "purchased_total",
		Help:      "Total credits added through purchases.",
	})
	ProxyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "design",
			Subsystem: "proxy",
			Name:      "requests_total",
			Help:      "Outbound MCP generate_template calls by outcome.",
		},
		[]string{"outcome"},
	)
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(
		JobsQueued,
		JobsCompleted,
		JobsCancelled,
		CreditsPurchased,
		ProxyRequests,
	)
}

// Handler exposes the service metrics in Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
