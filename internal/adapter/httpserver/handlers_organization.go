package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ogmaths/clientpulse/internal/domain"
	apperrors "github.com/ogmaths/clientpulse/internal/platform/errors"
)

type brandingResponse struct {
	TenantID string `json:"tenant_id"`
	Slug     string `json:"slug,omitempty"`
	Name     string `json:"name,omitempty"`
	Color    string `json:"color,omitempty"`
}

// handleOrganizationBranding returns the branding of the request's tenant,
// used by the frontend to theme itself per subdomain.
func (s *Server) handleOrganizationBranding(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	response := brandingResponse{
		TenantID: tc.TenantID,
		Slug:     tc.OrganizationSlug,
		Name:     tc.OrganizationName,
		Color:    tc.OrganizationColor,
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListOrganizations(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	orgs, err := s.app.ListOrganizations(c.Request().Context(), tc)
	if err != nil {
		return err
	}
	if orgs == nil {
		orgs = []domain.Organization{}
	}

	if err := c.JSON(http.StatusOK, orgs); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type switchOrganizationRequest struct {
	Slug string `json:"slug"`
}

// handleSwitchOrganization lets a super-admin session act as a specific
// organization. An empty slug switches back to the sentinel scope.
func (s *Server) handleSwitchOrganization(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	// Only the sentinel tenant (or a session already switched by it) may switch.
	host := stripPort(c.Request().Host)
	resolved, err := s.app.ResolveTenant(c.Request().Context(), host)
	if err != nil || !resolved.IsSuperAdmin() {
		return apperrors.ForbiddenError("organization switching requires super-admin access").
			WithField("tenant_id", tc.TenantID)
	}

	var req switchOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	if req.Slug != "" {
		if _, err := s.app.GetOrganizationBySlug(c.Request().Context(), req.Slug); err != nil {
			if errors.Is(err, domain.ErrOrganizationNotFound) {
				return apperrors.NotFoundError("organization not found").WithField("slug", req.Slug)
			}
			return err
		}
	}

	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		// A corrupted cookie yields a fresh session; keep going.
		session.Values = make(map[any]any)
	}
	session.Values[sessionKeyActiveOrg] = req.Slug
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return apperrors.InternalError("failed to save session", err)
	}

	if err := c.JSON(http.StatusOK, map[string]string{"active_org": req.Slug}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
