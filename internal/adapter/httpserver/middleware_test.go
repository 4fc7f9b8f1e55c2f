package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogmaths/clientpulse/internal/domain"
	"github.com/ogmaths/clientpulse/internal/metrics"
	apperrors "github.com/ogmaths/clientpulse/internal/platform/errors"
	"github.com/ogmaths/clientpulse/internal/tenant"
)

func runTenantMiddleware(t *testing.T, srv *Server, host string) (domain.TenantContext, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.Host = host
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured domain.TenantContext
	handler := srv.tenantMiddleware(func(c echo.Context) error {
		tc, ok := tenantFromContext(c)
		require.True(t, ok, "tenant context should be set")
		captured = tc
		return nil
	})
	return captured, handler(c)
}

func TestTenantMiddleware_Subdomain(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	tc, err := runTenantMiddleware(t, srv, "b3.clientpulse.app")
	require.NoError(t, err)
	assert.Equal(t, "1", tc.TenantID)
	assert.Equal(t, "b3", tc.OrganizationSlug)
}

func TestTenantMiddleware_StripsPort(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	tc, err := runTenantMiddleware(t, srv, "horizon.clientpulse.app:8080")
	require.NoError(t, err)
	assert.Equal(t, "2", tc.TenantID)
}

func TestTenantMiddleware_LocalhostIsSuperAdmin(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	tc, err := runTenantMiddleware(t, srv, "localhost:8080")
	require.NoError(t, err)
	assert.True(t, tc.IsSuperAdmin())
}

func TestTenantMiddleware_UnknownSubdomainFailsOpen(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	tc, err := runTenantMiddleware(t, srv, "ghost.clientpulse.app")
	require.NoError(t, err)
	assert.True(t, tc.IsSuperAdmin(), "unknown subdomain should fall back to sentinel")
}

func TestTenantMiddleware_StrictModeRejects(t *testing.T) {
	strict := tenant.NewResolver(nil, true)
	srv := newTestServer(t, &mockAppService{
		resolveTenantFn: func(_ context.Context, hostname string) (domain.TenantContext, error) {
			return strict.Resolve(hostname)
		},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.Host = "ghost.clientpulse.app"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := srv.tenantMiddleware(func(c echo.Context) error {
		t.Fatal("handler should not run for rejected tenant")
		return nil
	})
	err := handler(c)
	require.Error(t, err)
}

func TestTenantMiddleware_SuperAdminActsAsSwitchedOrg(t *testing.T) {
	org := &domain.Organization{TenantID: "2", Slug: "horizon", Name: "Horizon Outreach", Color: "#16a34a"}
	srv := newTestServer(t, &mockAppService{
		getOrgBySlugFn: func(_ context.Context, slug string) (*domain.Organization, error) {
			if slug == "horizon" {
				return org, nil
			}
			return nil, domain.ErrOrganizationNotFound
		},
	})

	// Build a request carrying a session cookie with an active org.
	e := echo.New()
	seed := httptest.NewRequest(http.MethodPost, "/api/organization/switch", nil)
	seedRec := httptest.NewRecorder()
	session, err := srv.sessionStore.Get(seed, sessionName)
	require.NoError(t, err)
	session.Values[sessionKeyActiveOrg] = "horizon"
	require.NoError(t, session.Save(seed, seedRec))
	cookie := seedRec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.Host = "localhost"
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured domain.TenantContext
	handler := srv.tenantMiddleware(func(c echo.Context) error {
		captured, _ = tenantFromContext(c)
		return nil
	})
	require.NoError(t, handler(c))

	assert.Equal(t, "2", captured.TenantID)
	assert.Equal(t, "Horizon Outreach", captured.OrganizationName)
}

func TestTenantMiddleware_TenantHostIgnoresSwitch(t *testing.T) {
	srv := newTestServer(t, &mockAppService{
		getOrgBySlugFn: func(_ context.Context, _ string) (*domain.Organization, error) {
			t.Fatal("tenant requests must not consult the session")
			return nil, nil
		},
	})

	tc, err := runTenantMiddleware(t, srv, "b3.clientpulse.app")
	require.NoError(t, err)
	assert.Equal(t, "1", tc.TenantID)
}

func TestStripPort(t *testing.T) {
	assert.Equal(t, "localhost", stripPort("localhost:8080"))
	assert.Equal(t, "localhost", stripPort("localhost"))
	assert.Equal(t, "b3.clientpulse.app", stripPort("b3.clientpulse.app:443"))
	assert.Equal(t, "127.0.0.1", stripPort("127.0.0.1:3000"))
}

func runErrorMiddleware(t *testing.T, handlerErr error) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return handlerErr
	})
	return rec, handler(c)
}

func TestErrorHandlingMiddleware_StructuredError(t *testing.T) {
	metrics.HTTPErrorsTotal.Reset()

	rec, err := runErrorMiddleware(t, apperrors.NotFoundError("client not found"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "client not found", resp.Error)
	assert.Equal(t, apperrors.TypeNotFound, resp.Type)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPErrorsTotal.WithLabelValues("not_found")))
}

func TestErrorHandlingMiddleware_EchoErrorPassesThroughCounted(t *testing.T) {
	metrics.HTTPErrorsTotal.Reset()

	routerErr := echo.NewHTTPError(http.StatusNotFound, "Not Found")
	_, err := runErrorMiddleware(t, routerErr)

	// Echo's default handler owns the response, so the error comes back out.
	require.ErrorIs(t, err, routerErr)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPErrorsTotal.WithLabelValues("not_found")))
}

func TestWrapHTTPError(t *testing.T) {
	tests := []struct {
		name     string
		httpErr  *echo.HTTPError
		wantType apperrors.ErrorType
		wantMsg  string
	}{
		{"bad request", echo.NewHTTPError(http.StatusBadRequest, "bad body"), apperrors.TypeValidation, "bad body"},
		{"forbidden", echo.NewHTTPError(http.StatusForbidden, "nope"), apperrors.TypeForbidden, "nope"},
		{"not found", echo.NewHTTPError(http.StatusNotFound, "Not Found"), apperrors.TypeNotFound, "Not Found"},
		{"method not allowed", echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), apperrors.TypeInternal, "Method Not Allowed"},
		{"conflict", echo.NewHTTPError(http.StatusConflict, "dup"), apperrors.TypeConflict, "dup"},
		{"bad gateway", echo.NewHTTPError(http.StatusBadGateway, "upstream"), apperrors.TypeExternal, "upstream"},
		{"non-string message", echo.NewHTTPError(http.StatusInternalServerError, 42), apperrors.TypeInternal, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapHTTPError(tt.httpErr)
			assert.Equal(t, tt.wantType, wrapped.Type)
			assert.Equal(t, tt.wantMsg, wrapped.Message)
		})
	}
}

func TestWrapHTTPError_PreservesInternalCause(t *testing.T) {
	cause := assert.AnError
	httpErr := echo.NewHTTPError(http.StatusInternalServerError, "boom").SetInternal(cause)

	wrapped := WrapHTTPError(httpErr)
	assert.Equal(t, cause, wrapped.Cause)
}
