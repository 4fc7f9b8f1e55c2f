package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ogmaths/clientpulse/internal/domain"
	apperrors "github.com/ogmaths/clientpulse/internal/platform/errors"
)

type taskRequest struct {
	ClientID      *uuid.UUID `json:"client_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	AssigneeEmail string     `json:"assignee_email"`
	DueDate       *time.Time `json:"due_date"`
}

func (s *Server) handleCreateTask(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	task := &domain.Task{
		ClientID:      req.ClientID,
		Title:         req.Title,
		Description:   req.Description,
		AssigneeEmail: req.AssigneeEmail,
		DueDate:       req.DueDate,
	}
	if err := s.app.CreateTask(c.Request().Context(), tc, task); err != nil {
		return err
	}

	if err := c.JSON(http.StatusCreated, task); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListTasks(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	tasks, err := s.app.ListTasks(c.Request().Context(), tc)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}

	if err := c.JSON(http.StatusOK, tasks); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetTask(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	task, err := s.app.GetTask(c.Request().Context(), tc, id)
	if errors.Is(err, domain.ErrTaskNotFound) {
		return apperrors.NotFoundError("task not found").WithField("task_id", id.String())
	}
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, task); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleCompleteTask(c echo.Context) error {
	tc, err := requireTenant(c)
	if err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	err = s.app.CompleteTask(c.Request().Context(), tc, id)
	if errors.Is(err, domain.ErrTaskNotFound) {
		return apperrors.NotFoundError("open task not found").WithField("task_id", id.String())
	}
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, map[string]string{"status": "completed"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
