package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogmaths/clientpulse/internal/domain"
)

const interactionColumns = `id, tenant_id, client_id, kind, notes, sentiment, sentiment_score, occurred_at, created_at`

// InteractionRepo implements domain.InteractionRepository.
type InteractionRepo struct {
	scopedStore
}

func NewInteractionRepo(pool *pgxpool.Pool, session *TenantSession) *InteractionRepo {
	return &InteractionRepo{scopedStore{pool: pool, session: session}}
}

func (r *InteractionRepo) Create(ctx context.Context, tc domain.TenantContext, interaction *domain.Interaction) error {
	return r.withTenant(ctx, tc, func(conn *pgxpool.Conn) error {
		err := conn.QueryRow(ctx, `
			INSERT INTO interactions (tenant_id, client_id, kind, notes, sentiment, sentiment_score, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at
		`, tc.TenantID, interaction.ClientID, interaction.Kind, interaction.Notes,
			interaction.Sentiment, interaction.SentimentScore, interaction.OccurredAt,
		).Scan(&interaction.ID, &interaction.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create interaction: %w", err)
		}
		interaction.TenantID = tc.TenantID
		return nil
	})
}

func (r *InteractionRepo) ListByClient(ctx context.Context, tc domain.TenantContext, clientID uuid.UUID) ([]domain.Interaction, error) {
	var interactions []domain.Interaction
	err := r.withTenant(ctx, tc, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+interactionColumns+`
			FROM interactions
			WHERE client_id = $1
			ORDER BY occurred_at DESC
		`, clientID)
		if err != nil {
			return fmt.Errorf("failed to list interactions: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var i domain.Interaction
			if err := rows.Scan(
				&i.ID, &i.TenantID, &i.ClientID, &i.Kind, &i.Notes,
				&i.Sentiment, &i.SentimentScore, &i.OccurredAt, &i.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to scan interaction row: %w", err)
			}
			interactions = append(interactions, i)
		}
		return rows.Err()
	})
	return interactions, err
}
