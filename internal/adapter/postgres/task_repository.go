package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogmaths/clientpulse/internal/domain"
)

const taskColumns = `id, tenant_id, client_id, title, description, assignee_email, due_date, status, completed_at, created_at, updated_at`

// TaskRepo implements domain.TaskRepository.
type TaskRepo struct {
	scopedStore
}

func NewTaskRepo(pool *pgxpool.Pool, session *TenantSession) *TaskRepo {
	return &TaskRepo{scopedStore{pool: pool, session: session}}
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID, &t.TenantID, &t.ClientID, &t.Title, &t.Description,
		&t.AssigneeEmail, &t.DueDate, &t.Status, &t.CompletedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return &t, nil
}

func (r *TaskRepo) Create(ctx context.Context, tc domain.TenantContext, task *domain.Task) error {
	return r.withTenant(ctx, tc, func(conn *pgxpool.Conn) error {
		created, err := scanTask(conn.QueryRow(ctx, `
			INSERT INTO tasks (tenant_id, client_id, title, description, assignee_email, due_date, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+taskColumns+`
		`, tc.TenantID, task.ClientID, task.Title, task.Description,
			task.AssigneeEmail, task.DueDate, domain.TaskOpen))
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		*task = *created
		return nil
	})
}

func (r *TaskRepo) GetByID(ctx context.Context, tc domain.TenantContext, id uuid.UUID) (*domain.Task, error) {
	var task *domain.Task
	err := r.withTenant(ctx, tc, func(conn *pgxpool.Conn) error {
		var err error
		task, err = scanTask(conn.QueryRow(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
		return err
	})
	return task, err
}

func (r *TaskRepo) List(ctx context.Context, tc domain.TenantContext) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.withTenant(ctx, tc, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+taskColumns+`
			FROM tasks
			ORDER BY due_date NULLS LAST, created_at
		`)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var t domain.Task
			if err := rows.Scan(
				&t.ID, &t.TenantID, &t.ClientID, &t.Title, &t.Description,
				&t.AssigneeEmail, &t.DueDate, &t.Status, &t.CompletedAt,
				&t.CreatedAt, &t.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to scan task row: %w", err)
			}
			tasks = append(tasks, t)
		}
		return rows.Err()
	})
	return tasks, err
}

func (r *TaskRepo) Complete(ctx context.Context, tc domain.TenantContext, id uuid.UUID, completedAt time.Time) error {
	return r.withTenant(ctx, tc, func(conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE tasks
			SET status = $1, completed_at = $2, updated_at = NOW()
			WHERE id = $3 AND status = $4
		`, domain.TaskCompleted, completedAt, id, domain.TaskOpen)
		if err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrTaskNotFound
		}
		return nil
	})
}
