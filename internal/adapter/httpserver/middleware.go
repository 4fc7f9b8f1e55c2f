package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ogmaths/clientpulse/internal/domain"
	"github.com/ogmaths/clientpulse/internal/metrics"
	"github.com/ogmaths/clientpulse/internal/platform/correlation"
	apperrors "github.com/ogmaths/clientpulse/internal/platform/errors"
)

const tenantContextKey = "tenantContext"

func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// tenantMiddleware resolves the request's Host header to a tenant context and
// stores it on the echo context. A super-admin session that has switched into
// an organization acts as that organization's tenant for the request.
func (s *Server) tenantMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		host := stripPort(c.Request().Host)

		tc, err := s.app.ResolveTenant(c.Request().Context(), host)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownTenant) {
				return apperrors.ForbiddenError("unknown tenant").WithField("host", host)
			}
			return apperrors.InternalError("tenant resolution failed", err).WithField("host", host)
		}

		if tc.IsSuperAdmin() {
			if switched, ok := s.activeOrganization(c); ok {
				tc = switched
			}
		}

		c.Set(tenantContextKey, tc)
		return next(c)
	}
}

// activeOrganization loads the organization a super-admin session switched
// into, if any. Session errors just mean no switch is active.
func (s *Server) activeOrganization(c echo.Context) (domain.TenantContext, bool) {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return domain.TenantContext{}, false
	}

	slug, ok := session.Values[sessionKeyActiveOrg].(string)
	if !ok || slug == "" {
		return domain.TenantContext{}, false
	}

	org, err := s.app.GetOrganizationBySlug(c.Request().Context(), slug)
	if err != nil {
		slog.Warn("Stale active organization in session", "slug", slug, "error", err)
		return domain.TenantContext{}, false
	}

	return domain.TenantContext{
		TenantID:          org.TenantID,
		OrganizationID:    org.ID,
		OrganizationSlug:  org.Slug,
		OrganizationName:  org.Name,
		OrganizationColor: org.Color,
	}, true
}

func tenantFromContext(c echo.Context) (domain.TenantContext, bool) {
	tc, ok := c.Get(tenantContextKey).(domain.TenantContext)
	return tc, ok
}

// requireTenant fetches the tenant context set by tenantMiddleware.
func requireTenant(c echo.Context) (domain.TenantContext, error) {
	tc, ok := tenantFromContext(c)
	if !ok {
		return domain.TenantContext{}, apperrors.InternalError("no tenant context on request", nil)
	}
	return tc, nil
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// Echo HTTPErrors (router 404/405, built-in middleware) pass
			// through to echo's default handler, but still get counted.
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				metrics.HTTPErrorsTotal.WithLabelValues(string(WrapHTTPError(httpErr).Type)).Inc()
				return err
			}

			structuredErr := apperrors.AsStructuredError(err)
			logError(c, structuredErr)
			metrics.HTTPErrorsTotal.WithLabelValues(string(structuredErr.Type)).Inc()

			if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

func logError(c echo.Context, err *apperrors.Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	if tc, ok := tenantFromContext(c); ok {
		attrs = append(attrs, "tenant_id", tc.TenantID)
	}

	switch err.Type {
	case apperrors.TypeValidation:
		slog.Info("Validation error", attrs...)
	case apperrors.TypeNotFound:
		slog.Info("Not found", attrs...)
	case apperrors.TypeForbidden:
		slog.Warn("Forbidden", attrs...)
	case apperrors.TypeConflict:
		slog.Warn("Conflict", attrs...)
	case apperrors.TypeRateLimited:
		slog.Info("Rate limited", attrs...)
	case apperrors.TypeInternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.Error("Internal error", attrs...)
	case apperrors.TypeExternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.Error("External service error", attrs...)
	default:
		slog.Error("Unknown error type", attrs...)
	}
}

func WrapHTTPError(httpErr *echo.HTTPError) *apperrors.Error {
	message := "internal server error"
	if httpErr.Message != nil {
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}

	var errType apperrors.ErrorType
	switch httpErr.Code {
	case http.StatusBadRequest:
		errType = apperrors.TypeValidation
	case http.StatusForbidden:
		errType = apperrors.TypeForbidden
	case http.StatusNotFound:
		errType = apperrors.TypeNotFound
	case http.StatusConflict:
		errType = apperrors.TypeConflict
	case http.StatusTooManyRequests:
		errType = apperrors.TypeRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		errType = apperrors.TypeExternal
	default:
		errType = apperrors.TypeInternal
	}

	err := &apperrors.Error{
		Type:    errType,
		Message: message,
		Context: make(map[string]any),
	}

	if httpErr.Internal != nil {
		err.Cause = httpErr.Internal
	}

	return err
}
