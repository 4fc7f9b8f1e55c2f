package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ogmaths/clientpulse/internal/platform/version"
)

const (
	startupProbeTimeout   = 2 * time.Second
	readinessProbeTimeout = 5 * time.Second
)

// HealthCheck is a named dependency probe run by the startup and readiness
// endpoints.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds,omitempty"`
	FailedCheck   string  `json:"failed_check,omitempty"`
	Error         string  `json:"error,omitempty"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/startup", s.handleStartup)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
}

func (s *Server) handleStartup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), startupProbeTimeout)
	defer cancel()

	return s.probeDependencies(c, ctx)
}

// handleLiveness only reports process liveness; dependency state belongs to
// the readiness probe so a flapping Redis does not restart the pod.
func (s *Server) handleLiveness(c echo.Context) error {
	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.startTime).Seconds(),
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write liveness response: %w", err)
	}
	return nil
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessProbeTimeout)
	defer cancel()

	return s.probeDependencies(c, ctx)
}

func (s *Server) probeDependencies(c echo.Context, ctx context.Context) error {
	for _, hc := range s.healthChecks {
		if err := hc.Check(ctx); err != nil {
			resp := healthResponse{
				Status:      "unhealthy",
				FailedCheck: hc.Name,
				Error:       err.Error(),
			}
			if err := c.JSON(http.StatusServiceUnavailable, resp); err != nil {
				return fmt.Errorf("failed to write health response: %w", err)
			}
			return nil
		}
	}

	if err := c.JSON(http.StatusOK, healthResponse{Status: "ready"}); err != nil {
		return fmt.Errorf("failed to write health response: %w", err)
	}
	return nil
}

func (s *Server) handleVersion(c echo.Context) error {
	if err := c.JSON(http.StatusOK, version.Get()); err != nil {
		return fmt.Errorf("failed to write version response: %w", err)
	}
	return nil
}
