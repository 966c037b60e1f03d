package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "listing_service"

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Admission metrics
	requestsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participation_requests_created_total",
			Help:      "Participation requests admitted, by initial status",
		},
		[]string{"status"}, // PENDING, CONFIRMED
	)

	admissionRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admission_rejections_total",
			Help:      "Participation requests refused at creation",
		},
		[]string{"reason"}, // not_found, conflict, ...
	)

	statusDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participation_status_decisions_total",
			Help:      "Requests moved out of PENDING by the initiator, by resulting status",
		},
		[]string{"status"},
	)

	requestsCanceledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participation_requests_canceled_total",
			Help:      "Requests canceled by their requester",
		},
	)

	// Moderation metrics
	eventTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_state_transitions_total",
			Help:      "Event lifecycle transitions, by resulting state",
		},
		[]string{"state"},
	)

	// Outbox metrics
	outboxPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_publish_total",
			Help:      "Outbox publish attempts, by result",
		},
		[]string{"result"}, // sent, failed
	)
)

// RecordHTTPRequest takes the chi route pattern, not the raw path, to keep cardinality bounded.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordRequestCreated(status string) {
	requestsCreatedTotal.WithLabelValues(status).Inc()
}

func RecordAdmissionRejected(reason string) {
	if reason == "" {
		reason = "internal"
	}
	admissionRejectionsTotal.WithLabelValues(reason).Inc()
}

func RecordStatusDecisions(status string, n int) {
	if n <= 0 {
		return
	}
	statusDecisionsTotal.WithLabelValues(status).Add(float64(n))
}

func RecordRequestCanceled() {
	requestsCanceledTotal.Inc()
}

func RecordEventTransition(state string) {
	eventTransitionsTotal.WithLabelValues(state).Inc()
}

func RecordOutboxPublish(ok bool) {
	result := "sent"
	if !ok {
		result = "failed"
	}
	outboxPublishedTotal.WithLabelValues(result).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
