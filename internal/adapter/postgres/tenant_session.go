package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogmaths/clientpulse/internal/domain"
	"github.com/ogmaths/clientpulse/internal/metrics"
)

const clearTimeout = 2 * time.Second

// TenantSession binds a TenantContext to a pooled connection as Postgres
// session settings (app.tenant_id, app.organization_id) so row-level-security
// policies can scope every subsequent query on that connection.
//
// In the default fail-open mode a failed bind is logged and absorbed: the
// caller proceeds and RLS sees an empty tenant id, so policies match nothing
// rather than leaking rows. Strict mode surfaces the failure instead.
type TenantSession struct {
	timeout time.Duration
	strict  bool
}

func NewTenantSession(timeout time.Duration, strict bool) *TenantSession {
	return &TenantSession{timeout: timeout, strict: strict}
}

// Bind sets both tenant session variables in a single round trip, bounded by
// the configured timeout. It must complete before any tenant-scoped query
// runs on the same connection.
func (s *TenantSession) Bind(ctx context.Context, conn *pgxpool.Conn, tc domain.TenantContext) error {
	bindCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	orgID := ""
	if tc.OrganizationID != uuid.Nil {
		orgID = tc.OrganizationID.String()
	}

	_, err := conn.Exec(bindCtx,
		`SELECT set_config('app.tenant_id', $1, false), set_config('app.organization_id', $2, false)`,
		tc.TenantID, orgID)
	if err == nil {
		return nil
	}

	metrics.TenantBindFailuresTotal.Inc()
	if s.strict {
		return fmt.Errorf("failed to bind tenant context: %w", err)
	}

	slog.Error("Failed to set tenant session variables, proceeding unscoped",
		"tenant_id", tc.TenantID, "error", err)
	return nil
}

// Clear resets both session variables. It must run before the connection is
// reused under a different tenant; best-effort, on its own deadline so it
// still runs when the request context is already cancelled.
func (s *TenantSession) Clear(ctx context.Context, conn *pgxpool.Conn) {
	clearCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), clearTimeout)
	defer cancel()

	_, err := conn.Exec(clearCtx,
		`SELECT set_config('app.tenant_id', '', false), set_config('app.organization_id', '', false)`)
	if err != nil {
		slog.Error("Failed to clear tenant session variables", "error", err)
	}
}

// scopedStore is the shared helper embedded by tenant-scoped repositories.
// It enforces the bind → query → clear ordering on a single connection.
type scopedStore struct {
	pool    *pgxpool.Pool
	session *TenantSession
}

func (s scopedStore) withTenant(ctx context.Context, tc domain.TenantContext, fn func(conn *pgxpool.Conn) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	if err := s.session.Bind(ctx, conn, tc); err != nil {
		return err
	}
	defer s.session.Clear(ctx, conn)

	return fn(conn)
}
