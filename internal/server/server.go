package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"snowflake_data/internal/config"
	"snowflake_data/internal/metrics"
	"snowflake_data/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// HTTPServer is the lifecycle surface used by the application wiring
type HTTPServer interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}

var _ HTTPServer = (*Server)(nil)

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	data    *service.DataService
	records *service.RecordService
	exports *service.ExportService
	logger  *logrus.Logger
	cfg     config.Config
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.Config,
	data *service.DataService,
	records *service.RecordService,
	exports *service.ExportService,
	logger *logrus.Logger,
) *Server {
	e := echo.New()
	e.Debug = cfg.IsDevelopment()
	e.HideBanner = true
	e.HidePort = true

	dataPrefix := strings.TrimRight(cfg.Server.BasePath, "/") + "/data"

	// Маршруты /data принимают путь как со слешем на конце, так и без него
	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p != dataPrefix && !strings.HasPrefix(p, dataPrefix+"/")
		},
	}))

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(requestLogger(logger))
	if cfg.Metrics.Enabled {
		e.Use(metrics.Middleware())
	}

	server := &Server{
		echo:    e,
		data:    data,
		records: records,
		exports: exports,
		logger:  logger,
		cfg:     cfg,
	}

	server.setupRoutes(dataPrefix)
	return server
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.WithField("address", address).Info("Starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// setupRoutes configures the server routes
func (s *Server) setupRoutes(dataPrefix string) {
	s.echo.GET("/health", s.healthCheck)
	if s.cfg.Metrics.Enabled {
		s.echo.GET(s.cfg.Metrics.Path, echo.WrapHandler(metrics.Handler()))
	}

	data := s.echo.Group(dataPrefix)
	{
		// Warehouse queries
		data.GET("/get_customers/", s.getCustomers)
		data.GET("/customer_metrics/", s.customerMetrics)
		data.GET("/fetch_from_snowflake/", s.fetchFromSnowflake)
		data.GET("/favorite_sandwiches/", s.favoriteSandwiches)
		data.GET("/get_customer_by_phone/", s.getCustomerByPhone)

		// Query exports
		data.GET("/exports/", s.listExports)
		data.POST("/exports/", s.createExport)
		data.GET("/exports/:name/", s.downloadExport)
		data.DELETE("/exports/:name/", s.deleteExport)

		// Records
		data.GET("/", s.listRecords)
		data.POST("/", s.createRecord)
		data.GET("/:id/", s.getRecord)
		data.PUT("/:id/", s.updateRecord)
		data.PATCH("/:id/", s.partialUpdateRecord)
		data.DELETE("/:id/", s.deleteRecord)
	}
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "snowflake-data",
	})
}

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{
		"error": msg,
	})
}

func requestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency,
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("Request failed")
				return nil
			}
			entry.Info("Request handled")
			return nil
		},
	})
}
