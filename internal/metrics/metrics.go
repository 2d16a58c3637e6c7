package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	WarehouseQueries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snowflake_data", Subsystem: "warehouse", Name: "queries_total",
		Help: "Total number of warehouse statements by catalog query and status",
	}, []string{"query", "status"})

	WarehouseQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "snowflake_data", Subsystem: "warehouse", Name: "query_duration_seconds",
		Help:    "Latency of warehouse statements including connect and fetch",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	StorageOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snowflake_data", Subsystem: "storage", Name: "operations_total",
		Help: "Export storage operations by operation and status",
	}, []string{"operation", "status"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snowflake_data", Subsystem: "http", Name: "requests_total",
		Help: "Total HTTP requests",
	}, []string{"path", "method", "code"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "snowflake_data", Subsystem: "http", Name: "request_duration_seconds",
		Help:    "HTTP request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method"})
)

// Register регистрирует метрики в r, по умолчанию в prometheus.DefaultRegisterer.
// Повторные вызовы игнорируются.
func Register(r prometheus.Registerer) {
	once.Do(func() {
		if r == nil {
			r = prometheus.DefaultRegisterer
		}
		r.MustRegister(WarehouseQueries, WarehouseQueryDuration, StorageOperations, HTTPRequests, HTTPDuration)
	})
}

// Handler возвращает обработчик для /metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by route template.
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

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			HTTPRequests.WithLabelValues(path, c.Request().Method, strconv.Itoa(status)).Inc()
			HTTPDuration.WithLabelValues(path, c.Request().Method).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
