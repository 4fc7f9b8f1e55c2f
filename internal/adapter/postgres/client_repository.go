package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogmaths/clientpulse/internal/domain"
)

// clientColumns must match the Scan order in scanClient.
const clientColumns = `id, tenant_id, organization_id, first_name, last_name, email, phone, status, notes, created_at, updated_at`

// ClientRepo implements domain.ClientRepository backed by PostgreSQL with
// row-level-security tenant scoping.
type ClientRepo struct {
	scopedStore
}

func NewClientRepo(pool *pgxpool.Pool, session *TenantSession) *ClientRepo {
	return &ClientRepo{scopedStore{pool: pool, session: session}}
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	err := row.Scan(
		&c.ID, &c.TenantID, &c.OrganizationID, &c.FirstName, &c.LastName,
		&c.Email, &c.Phone, &c.Status, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	return &c, nil
}

func (r *ClientRepo) Create(ctx context.Context, tc domain.TenantContext, client *domain.Client) error {
	return r.withTenant(ctx, tc, func(conn *pgxpool.Conn) error {
		created, err := scanClient(conn.QueryRow(ctx, `
			INSERT INTO clients (tenant_id, organization_id, first_name, last_name, email, phone, status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+clientColumns+`
		`, tc.TenantID, client.OrganizationID, client.FirstName, client.LastName,
			client.Email, client.Phone, client.Status, client.Notes))
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		*client = *created
		return nil
	})
}

func (r *ClientRepo) GetByID(ctx context.Context, tc domain.TenantContext, id uuid.UUID) (*domain.Client, error) {
	var client *domain.Client
	err := r.withTenant(ctx, tc, func(conn *pgxpool.Conn) error {
		var err error
		client, err = scanClient(conn.QueryRow(ctx,
			`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
		return err
	})
	return client, err
}

func (r *ClientRepo) List(ctx context.Context, tc domain.TenantContext) ([]domain.Client, error) {
	var clients []domain.Client
	err := r.withTenant(ctx, tc, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+clientColumns+` FROM clients ORDER BY last_name, first_name`)
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var c domain.Client
			if err := rows.Scan(
				&c.ID, &c.TenantID, &c.OrganizationID, &c.FirstName, &c.LastName,
				&c.Email, &c.Phone, &c.Status, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to scan client row: %w", err)
			}
			clients = append(clients, c)
		}
		return rows.Err()
	})
	return clients, err
}

func (r *ClientRepo) Update(ctx context.Context, tc domain.TenantContext, client *domain.Client) error {
	return r.withTenant(ctx, tc, func(conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE clients
			SET first_name = $1, last_name = $2, email = $3, phone = $4, status = $5, notes = $6, updated_at = NOW()
			WHERE id = $7
		`, client.FirstName, client.LastName, client.Email, client.Phone,
			client.Status, client.Notes, client.ID)
		if err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrClientNotFound
		}
		return nil
	})
}

func (r *ClientRepo) Archive(ctx context.Context, tc domain.TenantContext, id uuid.UUID) error {
	return r.withTenant(ctx, tc, func(conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE clients SET status = $1, updated_at = NOW() WHERE id = $2
		`, domain.ClientArchived, id)
		if err != nil {
			return fmt.Errorf("failed to archive client: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrClientNotFound
		}
		return nil
	})
}
