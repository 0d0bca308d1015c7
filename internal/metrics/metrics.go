package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "connectsphere_registrations_total",
		Help: "Total number of successful user registrations.",
	})

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connectsphere_logins_total",
			Help: "Total number of login attempts by outcome.",
		},
		[]string{"status"},
	)

	AuthFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connectsphere_auth_failures_total",
			Help: "Total number of rejected authenticated requests by error code.",
		},
		[]string{"code"},
	)

	LikeTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connectsphere_like_toggles_total",
			Help: "Total number of like toggles by resulting state.",
		},
		[]string{"state"},
	)

	MediaCleanupFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "connectsphere_media_cleanup_failures_total",
		Help: "Total number of media objects that could not be deleted.",
	})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "connectsphere_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter.",
	})
)
