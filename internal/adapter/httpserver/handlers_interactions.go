package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ogmaths/clientpulse/internal/domain"
	apperrors "github.com/ogmaths/clientpulse/internal/platform/errors"
)

type interactionRequest struct {
	Kind       string     `json:"kind"`
	Notes      string     `json:"notes"`
	OccurredAt *time.Time `json:"occurred_at"`
}

type interactionResponse struct {
	Interaction *domain.Interaction   `json:"interaction"`
	Analysis    domain.AnalysisResult `json:"analysis"`
}

func (s *Server) handleRecordInteraction(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	clientID, err := pathID(c)
	if err != nil {
		return err
	}

	var req interactionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	interaction := &domain.Interaction{
		ClientID: clientID,
		Kind:     domain.InteractionKind(req.Kind),
		Notes:    req.Notes,
	}
	if req.OccurredAt != nil {
		interaction.OccurredAt = *req.OccurredAt
	}

	analysis, err := s.app.RecordInteraction(c.Request().Context(), tc, interaction)
	if err != nil {
		return err
	}

	response := interactionResponse{Interaction: interaction, Analysis: analysis}
	if err := c.JSON(http.StatusCreated, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListInteractions(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	clientID, err := pathID(c)
	if err != nil {
		return err
	}

	interactions, err := s.app.ListInteractions(c.Request().Context(), tc, clientID)
	if err != nil {
		return err
	}
	if interactions == nil {
		interactions = []domain.Interaction{}
	}

	if err := c.JSON(http.StatusOK, interactions); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type assessmentRequest struct {
	Kind        string     `json:"kind"`
	Score       int        `json:"score"`
	Summary     string     `json:"summary"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (s *Server) handleCreateAssessment(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	clientID, err := pathID(c)
	if err != nil {
		return err
	}

	var req assessmentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	assessment := &domain.Assessment{
		ClientID: clientID,
		Kind:     req.Kind,
		Score:    req.Score,
		Summary:  req.Summary,
	}
	if req.CompletedAt != nil {
		assessment.CompletedAt = *req.CompletedAt
	}

	if err := s.app.CreateAssessment(c.Request().Context(), tc, assessment); err != nil {
		return err
	}

	if err := c.JSON(http.StatusCreated, assessment); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListAssessments(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	clientID, err := pathID(c)
	if err != nil {
		return err
	}

	assessments, err := s.app.ListAssessments(c.Request().Context(), tc, clientID)
	if err != nil {
		return err
	}
	if assessments == nil {
		assessments = []domain.Assessment{}
	}

	if err := c.JSON(http.StatusOK, assessments); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
