// Package app is the application layer, the only component that references
// multiple domain components. It orchestrates all use cases.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ogmaths/clientpulse/internal/domain"
	apperrors "github.com/ogmaths/clientpulse/internal/platform/errors"
	"github.com/ogmaths/clientpulse/internal/sentiment"
)

// TenantResolver maps a request hostname to a tenant context.
type TenantResolver interface {
	Resolve(hostname string) (domain.TenantContext, error)
}

type Service struct {
	resolver     TenantResolver
	analyzer     *sentiment.Analyzer
	orgs         domain.OrganizationRepository
	clients      domain.ClientRepository
	interactions domain.InteractionRepository
	tasks        domain.TaskRepository
	assessments  domain.AssessmentRepository
	notifier     domain.Notifier
	clock        clockwork.Clock
}

func NewService(
	resolver TenantResolver,
	analyzer *sentiment.Analyzer,
	orgs domain.OrganizationRepository,
	clients domain.ClientRepository,
	interactions domain.InteractionRepository,
	tasks domain.TaskRepository,
	assessments domain.AssessmentRepository,
	notifier domain.Notifier,
	clock clockwork.Clock,
) *Service {
	return &Service{
		resolver:     resolver,
		analyzer:     analyzer,
		orgs:         orgs,
		clients:      clients,
		interactions: interactions,
		tasks:        tasks,
		assessments:  assessments,
		notifier:     notifier,
		clock:        clock,
	}
}

// ResolveTenant maps a hostname to a tenant context, enriched with
// organization branding from the cache. An organization record that is
// missing for a known tenant id is tolerated; the request proceeds with
// the unenriched context.
func (s *Service) ResolveTenant(ctx context.Context, hostname string) (domain.TenantContext, error) {
	tc, err := s.resolver.Resolve(hostname)
	if err != nil {
		return domain.TenantContext{}, err
	}

	if tc.IsSuperAdmin() || tc.OrganizationSlug == "" {
		return tc, nil
	}

	org, err := s.orgs.GetBySlug(ctx, tc.OrganizationSlug)
	if err != nil {
		if !errors.Is(err, domain.ErrOrganizationNotFound) {
			slog.Warn("Organization enrichment failed", "slug", tc.OrganizationSlug, "error", err)
		}
		return tc, nil
	}

	tc.OrganizationID = org.ID
	tc.OrganizationName = org.Name
	tc.OrganizationColor = org.Color
	return tc, nil
}

// AnalyzeText scores free text against the sentiment lexicon.
func (s *Service) AnalyzeText(text string) (domain.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.AnalysisResult{}, apperrors.ValidationError("text must not be blank")
	}
	return s.analyzer.Analyze(text), nil
}

// --- Clients ---

func (s *Service) CreateClient(ctx context.Context, tc domain.TenantContext, client *domain.Client) error {
	if client.FirstName == "" && client.LastName == "" {
		return apperrors.ValidationError("client needs a first or last name")
	}
	if client.Status == "" {
		client.Status = domain.ClientActive
	}
	return s.clients.Create(ctx, tc, client)
}

func (s *Service) GetClient(ctx context.Context, tc domain.TenantContext, id uuid.UUID) (*domain.Client, error) {
	return s.clients.GetByID(ctx, tc, id)
}

func (s *Service) ListClients(ctx context.Context, tc domain.TenantContext) ([]domain.Client, error) {
	return s.clients.List(ctx, tc)
}

func (s *Service) UpdateClient(ctx context.Context, tc domain.TenantContext, client *domain.Client) error {
	return s.clients.Update(ctx, tc, client)
}

func (s *Service) ArchiveClient(ctx context.Context, tc domain.TenantContext, id uuid.UUID) error {
	return s.clients.Archive(ctx, tc, id)
}

// --- Interactions ---

// RecordInteraction scores the interaction notes and persists the result
// alongside the interaction. The stored sentiment is derived, never
// client-supplied.
func (s *Service) RecordInteraction(ctx context.Context, tc domain.TenantContext, interaction *domain.Interaction) (domain.AnalysisResult, error) {
	if interaction.Kind == "" {
		return domain.AnalysisResult{}, apperrors.ValidationError("interaction kind is required")
	}

	if _, err := s.clients.GetByID(ctx, tc, interaction.ClientID); err != nil {
		return domain.AnalysisResult{}, err
	}

	result := s.analyzer.Analyze(interaction.Notes)
	interaction.Sentiment = result.Sentiment
	interaction.SentimentScore = result.Score

	if interaction.OccurredAt.IsZero() {
		interaction.OccurredAt = s.clock.Now()
	}

	if err := s.interactions.Create(ctx, tc, interaction); err != nil {
		return domain.AnalysisResult{}, err
	}
	return result, nil
}

func (s *Service) ListInteractions(ctx context.Context, tc domain.TenantContext, clientID uuid.UUID) ([]domain.Interaction, error) {
	return s.interactions.ListByClient(ctx, tc, clientID)
}

// --- Tasks ---

// CreateTask persists the task and notifies the assignee if one is set.
// Notification failure is reported in the logs, never to the caller.
func (s *Service) CreateTask(ctx context.Context, tc domain.TenantContext, task *domain.Task) error {
	if task.Title == "" {
		return apperrors.ValidationError("task title is required")
	}

	if err := s.tasks.Create(ctx, tc, task); err != nil {
		return err
	}

	if task.AssigneeEmail != "" {
		subject := fmt.Sprintf("New task: %s", task.Title)
		body := task.Description
		if body == "" {
			body = "You have been assigned a new task."
		}
		if err := s.notifier.Send(ctx, task.AssigneeEmail, subject, body); err != nil {
			slog.Error("Failed to notify task assignee",
				"task_id", task.ID.String(),
				"assignee", task.AssigneeEmail,
				"error", err,
			)
		}
	}
	return nil
}

func (s *Service) GetTask(ctx context.Context, tc domain.TenantContext, id uuid.UUID) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, tc, id)
}

func (s *Service) ListTasks(ctx context.Context, tc domain.TenantContext) ([]domain.Task, error) {
	return s.tasks.List(ctx, tc)
}

func (s *Service) CompleteTask(ctx context.Context, tc domain.TenantContext, id uuid.UUID) error {
	return s.tasks.Complete(ctx, tc, id, s.clock.Now())
}

// --- Assessments ---

func (s *Service) CreateAssessment(ctx context.Context, tc domain.TenantContext, assessment *domain.Assessment) error {
	if assessment.Kind == "" {
		return apperrors.ValidationError("assessment kind is required")
	}

	if _, err := s.clients.GetByID(ctx, tc, assessment.ClientID); err != nil {
		return err
	}

	if assessment.CompletedAt.IsZero() {
		assessment.CompletedAt = s.clock.Now()
	}
	return s.assessments.Create(ctx, tc, assessment)
}

func (s *Service) ListAssessments(ctx context.Context, tc domain.TenantContext, clientID uuid.UUID) ([]domain.Assessment, error) {
	return s.assessments.ListByClient(ctx, tc, clientID)
}

// --- Organizations ---

func (s *Service) GetOrganizationBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	return s.orgs.GetBySlug(ctx, slug)
}

// ListOrganizations is restricted to the super-admin tenant.
func (s *Service) ListOrganizations(ctx context.Context, tc domain.TenantContext) ([]domain.Organization, error) {
	if !tc.IsSuperAdmin() {
		return nil, apperrors.ForbiddenError("organization listing requires super-admin access")
	}
	return s.orgs.List(ctx)
}
