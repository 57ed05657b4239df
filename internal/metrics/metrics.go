package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	ToggleTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relationship_toggle_total",
		Help: "Relationship toggles by relation (follow, like) and action (created, removed).",
	}, []string{"relation", "action"})

	SignupTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signup_success_total",
		Help: "Total successful signups",
	})

	LoginFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_failure_total",
		Help: "Total failed login attempts",
	}, []string{"reason"})

	TweetsPosted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweets_posted_total",
		Help: "Total tweets successfully posted, by type",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ToggleTotal)
	prometheus.MustRegister(SignupTotal)
	prometheus.MustRegister(LoginFailure)
	prometheus.MustRegister(TweetsPosted)
}

// Toggled records the outcome of a follow or like toggle.
func Toggled(relation string, created bool) {
	action := "removed"
	if created {
		action = "created"
	}
	ToggleTotal.WithLabelValues(relation, action).Inc()
}

// Middleware tracks request timing and status code per route template.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			RequestDuration.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
