package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AttemptsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skillcred_attempts_started_total",
			Help: "Total number of test attempts started or resumed",
		},
	)

	// result: passed/failed
	AttemptsGraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillcred_attempts_graded_total",
			Help: "Total number of graded test attempts",
		},
		[]string{"result"},
	)

	// action: issued/upgraded/unchanged
	BadgesAwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillcred_badges_awarded_total",
			Help: "Badge ledger decisions for passing attempts",
		},
		[]string{"action", "tier"},
	)

	// key: tests/test, result: hit/miss/error
	CatalogCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillcred_catalog_cache_requests_total",
			Help: "Catalog cache lookups by outcome",
		},
		[]string{"key", "result"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skillcred_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func GradeResult(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}

// Middleware records request latency labelled by the matched route pattern.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		requestDuration.WithLabelValues(
			c.Method(),
			c.Route().Path,
			strconv.Itoa(c.Response().StatusCode()),
		).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
