package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration records request latency by method, route pattern and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stays_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// BookingsTotal counts booking attempts by outcome.
	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stays_bookings_total",
		Help: "Total number of booking attempts by result",
	}, []string{"result"})

	// ReviewsTotal counts review submissions by outcome.
	ReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stays_reviews_total",
		Help: "Total number of review submissions by result",
	}, []string{"result"})

	// RegistrationsTotal counts registration attempts by outcome.
	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stays_registrations_total",
		Help: "Total number of registration attempts by result",
	}, []string{"result"})

	// RedisErrors counts failed redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stays_redis_errors_total",
		Help: "Total number of redis command errors",
	}, []string{"command"})
)
