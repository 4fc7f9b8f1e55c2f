package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/ogmaths/clientpulse/internal/domain"
	"github.com/ogmaths/clientpulse/internal/platform/config"
)

type appService interface {
	ResolveTenant(ctx context.Context, hostname string) (domain.TenantContext, error)
	AnalyzeText(text string) (domain.AnalysisResult, error)

	CreateClient(ctx context.Context, tc domain.TenantContext, client *domain.Client) error
	GetClient(ctx context.Context, tc domain.TenantContext, id uuid.UUID) (*domain.Client, error)
	ListClients(ctx context.Context, tc domain.TenantContext) ([]domain.Client, error)
	UpdateClient(ctx context.Context, tc domain.TenantContext, client *domain.Client) error
	ArchiveClient(ctx context.Context, tc domain.TenantContext, id uuid.UUID) error

	RecordInteraction(ctx context.Context, tc domain.TenantContext, interaction *domain.Interaction) (domain.AnalysisResult, error)
	ListInteractions(ctx context.Context, tc domain.TenantContext, clientID uuid.UUID) ([]domain.Interaction, error)

	CreateTask(ctx context.Context, tc domain.TenantContext, task *domain.Task) error
	GetTask(ctx context.Context, tc domain.TenantContext, id uuid.UUID) (*domain.Task, error)
	ListTasks(ctx context.Context, tc domain.TenantContext) ([]domain.Task, error)
	CompleteTask(ctx context.Context, tc domain.TenantContext, id uuid.UUID) error

	CreateAssessment(ctx context.Context, tc domain.TenantContext, assessment *domain.Assessment) error
	ListAssessments(ctx context.Context, tc domain.TenantContext, clientID uuid.UUID) ([]domain.Assessment, error)

	GetOrganizationBySlug(ctx context.Context, slug string) (*domain.Organization, error)
	ListOrganizations(ctx context.Context, tc domain.TenantContext) ([]domain.Organization, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app          appService
	sessionStore *sessions.CookieStore
	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, app appService, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		sessionStore: setupSessionStore(cfg),
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Session keys
const (
	sessionName         = "clientpulse-session"
	sessionKeyActiveOrg = "active_org"
)

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}
