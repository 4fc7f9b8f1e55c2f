package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// --- Model types ---

type Organization struct {
	ID        uuid.UUID `db:"id"`
	TenantID  string    `db:"tenant_id"`
	Slug      string    `db:"slug"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
	ClientArchived ClientStatus = "archived"
)

type Client struct {
	ID             uuid.UUID    `db:"id"`
	TenantID       string       `db:"tenant_id"`
	OrganizationID uuid.UUID    `db:"organization_id"`
	FirstName      string       `db:"first_name"`
	LastName       string       `db:"last_name"`
	Email          string       `db:"email"`
	Phone          string       `db:"phone"`
	Status         ClientStatus `db:"status"`
	Notes          string       `db:"notes"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

type InteractionKind string

const (
	InteractionCall  InteractionKind = "call"
	InteractionVisit InteractionKind = "visit"
	InteractionEmail InteractionKind = "email"
	InteractionNote  InteractionKind = "note"
)

type Interaction struct {
	ID             uuid.UUID       `db:"id"`
	TenantID       string          `db:"tenant_id"`
	ClientID       uuid.UUID       `db:"client_id"`
	Kind           InteractionKind `db:"kind"`
	Notes          string          `db:"notes"`
	Sentiment      Sentiment       `db:"sentiment"`
	SentimentScore float64         `db:"sentiment_score"`
	OccurredAt     time.Time       `db:"occurred_at"`
	CreatedAt      time.Time       `db:"created_at"`
}

type TaskStatus string

const (
	TaskOpen      TaskStatus = "open"
	TaskCompleted TaskStatus = "completed"
)

type Task struct {
	ID            uuid.UUID  `db:"id"`
	TenantID      string     `db:"tenant_id"`
	ClientID      *uuid.UUID `db:"client_id"`
	Title         string     `db:"title"`
	Description   string     `db:"description"`
	AssigneeEmail string     `db:"assignee_email"`
	DueDate       *time.Time `db:"due_date"`
	Status        TaskStatus `db:"status"`
	CompletedAt   *time.Time `db:"completed_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

type Assessment struct {
	ID          uuid.UUID `db:"id"`
	TenantID    string    `db:"tenant_id"`
	ClientID    uuid.UUID `db:"client_id"`
	Kind        string    `db:"kind"`
	Score       int       `db:"score"`
	Summary     string    `db:"summary"`
	CompletedAt time.Time `db:"completed_at"`
	CreatedAt   time.Time `db:"created_at"`
}

// --- Repository interfaces ---

// Tenant-scoped repositories take the TenantContext explicitly on every call.
// Implementations must establish it on the database session before the query
// runs and clear it before the connection returns to the pool.

type OrganizationRepository interface {
	GetBySlug(ctx context.Context, slug string) (*Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	List(ctx context.Context) ([]Organization, error)
}

type ClientRepository interface {
	Create(ctx context.Context, tc TenantContext, client *Client) error
	GetByID(ctx context.Context, tc TenantContext, id uuid.UUID) (*Client, error)
	List(ctx context.Context, tc TenantContext) ([]Client, error)
	Update(ctx context.Context, tc TenantContext, client *Client) error
	Archive(ctx context.Context, tc TenantContext, id uuid.UUID) error
}

type InteractionRepository interface {
	Create(ctx context.Context, tc TenantContext, interaction *Interaction) error
	ListByClient(ctx context.Context, tc TenantContext, clientID uuid.UUID) ([]Interaction, error)
}

type TaskRepository interface {
	Create(ctx context.Context, tc TenantContext, task *Task) error
	GetByID(ctx context.Context, tc TenantContext, id uuid.UUID) (*Task, error)
	List(ctx context.Context, tc TenantContext) ([]Task, error)
	Complete(ctx context.Context, tc TenantContext, id uuid.UUID, completedAt time.Time) error
}

type AssessmentRepository interface {
	Create(ctx context.Context, tc TenantContext, assessment *Assessment) error
	ListByClient(ctx context.Context, tc TenantContext, clientID uuid.UUID) ([]Assessment, error)
}

// Notifier delivers outbound notifications (task assignments). Implementations
// must be safe for concurrent use; a failed delivery is reported, never fatal.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}
