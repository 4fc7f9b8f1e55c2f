package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(correlationMiddleware)
	s.echo.Use(ErrorHandlingMiddleware())
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	s.registerHealthRoutes()
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	analysisLimiter := newAnalysisRateLimiter(s.config.AnalysisRatePerSecond, s.config.AnalysisRateBurst)

	api := s.echo.Group("/api", s.tenantMiddleware)

	api.POST("/analysis", s.handleAnalyzeText, analysisLimiter)

	api.GET("/organization", s.handleOrganizationBranding)
	api.GET("/organizations", s.handleListOrganizations)
	api.POST("/organization/switch", s.handleSwitchOrganization)

	api.POST("/clients", s.handleCreateClient)
	api.GET("/clients", s.handleListClients)
	api.GET("/clients/:id", s.handleGetClient)
	api.PUT("/clients/:id", s.handleUpdateClient)
	api.DELETE("/clients/:id", s.handleArchiveClient)

	api.POST("/clients/:id/interactions", s.handleRecordInteraction)
	api.GET("/clients/:id/interactions", s.handleListInteractions)

	api.POST("/clients/:id/assessments", s.handleCreateAssessment)
	api.GET("/clients/:id/assessments", s.handleListAssessments)

	api.POST("/tasks", s.handleCreateTask)
	api.GET("/tasks", s.handleListTasks)
	api.GET("/tasks/:id", s.handleGetTask)
	api.POST("/tasks/:id/complete", s.handleCompleteTask)
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if tc, ok := tenantFromContext(c); ok {
				attrs = append(attrs, "tenant_id", tc.TenantID)
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.Info("Request", attrs...)
			return nil
		},
	})
}
