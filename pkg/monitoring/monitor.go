package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	ProgressRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_records_total",
			Help: "Exercise completions recorded",
		},
		[]string{"exercise_type"},
	)

	XPAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xp_awarded_total",
			Help: "XP awarded, by skill",
		},
		[]string{"skill"},
	)

	LevelUps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Overall level increases",
		},
	)

	ProgressFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_record_failures_total",
			Help: "Progress submissions that were rejected or failed",
		},
		[]string{"reason"},
	)

	ActiveLearners = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_learners_today",
			Help: "Users who completed an exercise today",
		},
	)

	StreaksAtRisk = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "streaks_at_risk",
			Help: "Users whose streak ends unless they study today",
		},
	)

	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Calls to the text model provider",
		},
		[]string{"provider", "purpose", "status"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ProgressRecorded)
	prometheus.MustRegister(XPAwarded)
	prometheus.MustRegister(LevelUps)
	prometheus.MustRegister(ProgressFailures)
	prometheus.MustRegister(ActiveLearners)
	prometheus.MustRegister(StreaksAtRisk)
	prometheus.MustRegister(LLMRequests)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
