package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ogmaths/clientpulse/internal/domain"
	apperrors "github.com/ogmaths/clientpulse/internal/platform/errors"
)

type clientRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
}

func pathID(c echo.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid UUID format").WithField("id", raw)
	}
	return id, nil
}

func (s *Server) handleCreateClient(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	client := &domain.Client{
		OrganizationID: tc.OrganizationID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Status:         domain.ClientStatus(req.Status),
		Notes:          req.Notes,
	}
	if err := s.app.CreateClient(c.Request().Context(), tc, client); err != nil {
		return err
	}

	if err := c.JSON(http.StatusCreated, client); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListClients(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	clients, err := s.app.ListClients(c.Request().Context(), tc)
	if err != nil {
		return err
	}
	if clients == nil {
		clients = []domain.Client{}
	}

	if err := c.JSON(http.StatusOK, clients); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetClient(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	client, err := s.app.GetClient(c.Request().Context(), tc, id)
	if errors.Is(err, domain.ErrClientNotFound) {
		return apperrors.NotFoundError("client not found").WithField("client_id", id.String())
	}
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, client); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateClient(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	existing, err := s.app.GetClient(c.Request().Context(), tc, id)
	if errors.Is(err, domain.ErrClientNotFound) {
		return apperrors.NotFoundError("client not found").WithField("client_id", id.String())
	}
	if err != nil {
		return err
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	existing.FirstName = req.FirstName
	existing.LastName = req.LastName
	existing.Email = req.Email
	existing.Phone = req.Phone
	existing.Notes = req.Notes
	if req.Status != "" {
		existing.Status = domain.ClientStatus(req.Status)
	}

	if err := s.app.UpdateClient(c.Request().Context(), tc, existing); err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, existing); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleArchiveClient(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	err = s.app.ArchiveClient(c.Request().Context(), tc, id)
	if errors.Is(err, domain.ErrClientNotFound) {
		return apperrors.NotFoundError("client not found").WithField("client_id", id.String())
	}
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, map[string]string{"status": "archived"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
