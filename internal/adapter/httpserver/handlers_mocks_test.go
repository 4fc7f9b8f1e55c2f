package httpserver

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ogmaths/clientpulse/internal/domain"
	"github.com/ogmaths/clientpulse/internal/platform/config"
	"github.com/ogmaths/clientpulse/internal/sentiment"
	"github.com/ogmaths/clientpulse/internal/tenant"
)

// --- Mock implementations ---

type mockAppService struct {
	resolveTenantFn     func(ctx context.Context, hostname string) (domain.TenantContext, error)
	analyzeTextFn       func(text string) (domain.AnalysisResult, error)
	createClientFn      func(ctx context.Context, tc domain.TenantContext, client *domain.Client) error
	getClientFn         func(ctx context.Context, tc domain.TenantContext, id uuid.UUID) (*domain.Client, error)
	listClientsFn       func(ctx context.Context, tc domain.TenantContext) ([]domain.Client, error)
	updateClientFn      func(ctx context.Context, tc domain.TenantContext, client *domain.Client) error
	archiveClientFn     func(ctx context.Context, tc domain.TenantContext, id uuid.UUID) error
	recordInteractionFn func(ctx context.Context, tc domain.TenantContext, interaction *domain.Interaction) (domain.AnalysisResult, error)
	listInteractionsFn  func(ctx context.Context, tc domain.TenantContext, clientID uuid.UUID) ([]domain.Interaction, error)
	createTaskFn        func(ctx context.Context, tc domain.TenantContext, task *domain.Task) error
	getTaskFn           func(ctx context.Context, tc domain.TenantContext, id uuid.UUID) (*domain.Task, error)
	listTasksFn         func(ctx context.Context, tc domain.TenantContext) ([]domain.Task, error)
	completeTaskFn      func(ctx context.Context, tc domain.TenantContext, id uuid.UUID) error
	createAssessmentFn  func(ctx context.Context, tc domain.TenantContext, assessment *domain.Assessment) error
	listAssessmentsFn   func(ctx context.Context, tc domain.TenantContext, clientID uuid.UUID) ([]domain.Assessment, error)
	getOrgBySlugFn      func(ctx context.Context, slug string) (*domain.Organization, error)
	listOrgsFn          func(ctx context.Context, tc domain.TenantContext) ([]domain.Organization, error)
}

func (m *mockAppService) ResolveTenant(ctx context.Context, hostname string) (domain.TenantContext, error) {
	if m.resolveTenantFn != nil {
		return m.resolveTenantFn(ctx, hostname)
	}
	return tenant.NewResolver(nil, false).Resolve(hostname)
}

func (m *mockAppService) AnalyzeText(text string) (domain.AnalysisResult, error) {
	if m.analyzeTextFn != nil {
		return m.analyzeTextFn(text)
	}
	return sentiment.NewAnalyzer(sentiment.DefaultLexicon()).Analyze(text), nil
}

func (m *mockAppService) CreateClient(ctx context.Context, tc domain.TenantContext, client *domain.Client) error {
	if m.createClientFn != nil {
		return m.createClientFn(ctx, tc, client)
	}
	client.ID = uuid.New()
	client.TenantID = tc.TenantID
	return nil
}

func (m *mockAppService) GetClient(ctx context.Context, tc domain.TenantContext, id uuid.UUID) (*domain.Client, error) {
	if m.getClientFn != nil {
		return m.getClientFn(ctx, tc, id)
	}
	return nil, domain.ErrClientNotFound
}

func (m *mockAppService) ListClients(ctx context.Context, tc domain.TenantContext) ([]domain.Client, error) {
	if m.listClientsFn != nil {
		return m.listClientsFn(ctx, tc)
	}
	return nil, nil
}

func (m *mockAppService) UpdateClient(ctx context.Context, tc domain.TenantContext, client *domain.Client) error {
	if m.updateClientFn != nil {
		return m.updateClientFn(ctx, tc, client)
	}
	return nil
}

func (m *mockAppService) ArchiveClient(ctx context.Context, tc domain.TenantContext, id uuid.UUID) error {
	if m.archiveClientFn != nil {
		return m.archiveClientFn(ctx, tc, id)
	}
	return domain.ErrClientNotFound
}

func (m *mockAppService) RecordInteraction(ctx context.Context, tc domain.TenantContext, interaction *domain.Interaction) (domain.AnalysisResult, error) {
	if m.recordInteractionFn != nil {
		return m.recordInteractionFn(ctx, tc, interaction)
	}
	return domain.AnalysisResult{}, domain.ErrClientNotFound
}

func (m *mockAppService) ListInteractions(ctx context.Context, tc domain.TenantContext, clientID uuid.UUID) ([]domain.Interaction, error) {
	if m.listInteractionsFn != nil {
		return m.listInteractionsFn(ctx, tc, clientID)
	}
	return nil, nil
}

func (m *mockAppService) CreateTask(ctx context.Context, tc domain.TenantContext, task *domain.Task) error {
	if m.createTaskFn != nil {
		return m.createTaskFn(ctx, tc, task)
	}
	task.ID = uuid.New()
	task.TenantID = tc.TenantID
	task.Status = domain.TaskOpen
	return nil
}

func (m *mockAppService) GetTask(ctx context.Context, tc domain.TenantContext, id uuid.UUID) (*domain.Task, error) {
	if m.getTaskFn != nil {
		return m.getTaskFn(ctx, tc, id)
	}
	return nil, domain.ErrTaskNotFound
}

func (m *mockAppService) ListTasks(ctx context.Context, tc domain.TenantContext) ([]domain.Task, error) {
	if m.listTasksFn != nil {
		return m.listTasksFn(ctx, tc)
	}
	return nil, nil
}

func (m *mockAppService) CompleteTask(ctx context.Context, tc domain.TenantContext, id uuid.UUID) error {
	if m.completeTaskFn != nil {
		return m.completeTaskFn(ctx, tc, id)
	}
	return domain.ErrTaskNotFound
}

func (m *mockAppService) CreateAssessment(ctx context.Context, tc domain.TenantContext, assessment *domain.Assessment) error {
	if m.createAssessmentFn != nil {
		return m.createAssessmentFn(ctx, tc, assessment)
	}
	assessment.ID = uuid.New()
	assessment.TenantID = tc.TenantID
	return nil
}

func (m *mockAppService) ListAssessments(ctx context.Context, tc domain.TenantContext, clientID uuid.UUID) ([]domain.Assessment, error) {
	if m.listAssessmentsFn != nil {
		return m.listAssessmentsFn(ctx, tc, clientID)
	}
	return nil, nil
}

func (m *mockAppService) GetOrganizationBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	if m.getOrgBySlugFn != nil {
		return m.getOrgBySlugFn(ctx, slug)
	}
	return nil, domain.ErrOrganizationNotFound
}

func (m *mockAppService) ListOrganizations(ctx context.Context, tc domain.TenantContext) ([]domain.Organization, error) {
	if m.listOrgsFn != nil {
		return m.listOrgsFn(ctx, tc)
	}
	return nil, nil
}

// --- Test server setup ---

type serverOption func(*Server)

func withHealthChecks(checks ...HealthCheck) serverOption {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:                "test",
		Port:                  "8080",
		SessionSecret:         "0123456789abcdef0123456789abcdef",
		SessionMaxAge:         168 * time.Hour,
		AnalysisRatePerSecond: 100,
		AnalysisRateBurst:     100,
	}
}

func newTestServer(t *testing.T, app appService, opts ...serverOption) *Server {
	t.Helper()
	require.NotNil(t, app)

	srv := NewServer(testConfig(), app, nil)
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}
