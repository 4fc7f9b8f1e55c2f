package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogmaths/clientpulse/internal/domain"
)

const assessmentColumns = `id, tenant_id, client_id, kind, score, summary, completed_at, created_at`

// AssessmentRepo implements domain.AssessmentRepository.
type AssessmentRepo struct {
	scopedStore
}

func NewAssessmentRepo(pool *pgxpool.Pool, session *TenantSession) *AssessmentRepo {
	return &AssessmentRepo{scopedStore{pool: pool, session: session}}
}

func (r *AssessmentRepo) Create(ctx context.Context, tc domain.TenantContext, assessment *domain.Assessment) error {
	return r.withTenant(ctx, tc, func(conn *pgxpool.Conn) error {
		err := conn.QueryRow(ctx, `
			INSERT INTO assessments (tenant_id, client_id, kind, score, summary, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`, tc.TenantID, assessment.ClientID, assessment.Kind, assessment.Score,
			assessment.Summary, assessment.CompletedAt,
		).Scan(&assessment.ID, &assessment.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create assessment: %w", err)
		}
		assessment.TenantID = tc.TenantID
		return nil
	})
}

func (r *AssessmentRepo) ListByClient(ctx context.Context, tc domain.TenantContext, clientID uuid.UUID) ([]domain.Assessment, error) {
	var assessments []domain.Assessment
	err := r.withTenant(ctx, tc, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+assessmentColumns+`
			FROM assessments
			WHERE client_id = $1
			ORDER BY completed_at DESC
		`, clientID)
		if err != nil {
			return fmt.Errorf("failed to list assessments: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var a domain.Assessment
			if err := rows.Scan(
				&a.ID, &a.TenantID, &a.ClientID, &a.Kind, &a.Score,
				&a.Summary, &a.CompletedAt, &a.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to scan assessment row: %w", err)
			}
			assessments = append(assessments, a)
		}
		return rows.Err()
	})
	return assessments, err
}
