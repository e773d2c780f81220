package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"luna.app/internal/core/cycle"
	"luna.app/pkg/errors"
)

// CreateCycleRequest represents the HTTP request for starting a cycle.
// A missing start_date means today.
type CreateCycleRequest struct {
	StartDate   *string `json:"start_date" binding:"omitempty,isodate"`
	Description string  `json:"description"`
}

// UpdateCycleRequest represents a partial cycle update
type UpdateCycleRequest struct {
	UserID      *uint   `json:"user_id" binding:"omitempty,min=1"`
	StartDate   *string `json:"start_date" binding:"omitempty,isodate"`
	EndDate     *string `json:"end_date" binding:"omitempty,isodate"`
	Description *string `json:"description"`
}

// createCycle handles POST /api/users/:user_id/cycles requests
func (s *HTTPServerAdapter) createCycle(c *gin.Context) {
	userID, err := uintParam(c, "user_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	var req CreateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Debug("Request binding error", "error", err)
		s.handleError(c, errors.NewValidationError("Invalid request format"))
		return
	}

	start, err := optionalDate("start_date", req.StartDate)
	if err != nil {
		s.handleError(c, err)
		return
	}

	created, err := s.cycleUseCase.Create(c.Request.Context(), cycle.CreateParams{
		UserID:      userID,
		StartDate:   start,
		Description: req.Description,
	})
	if err != nil {
		slog.Debug("Cycle creation rejected", "user_id", userID, "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// listCycles handles GET /api/users/:user_id/cycles requests
func (s *HTTPServerAdapter) listCycles(c *gin.Context) {
	userID, err := uintParam(c, "user_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	page, limit, err := pagination(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	var until *string
	if raw, ok := c.GetQuery("start_until"); ok {
		until = &raw
	}
	startUntil, err := optionalDate("start_until", until)
	if err != nil {
		s.handleError(c, err)
		return
	}

	result, err := s.cycleUseCase.List(c.Request.Context(), cycle.ListParams{
		UserID:     userID,
		StartUntil: startUntil,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// getCycle handles GET /api/users/:user_id/cycles/:cycle_id requests
func (s *HTTPServerAdapter) getCycle(c *gin.Context) {
	userID, cycleID, err := ownedRoute(c, "cycle_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	found, err := s.cycleUseCase.Get(c.Request.Context(), userID, cycleID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

// updateCycle handles PUT /api/users/:user_id/cycles/:cycle_id requests
func (s *HTTPServerAdapter) updateCycle(c *gin.Context) {
	userID, cycleID, err := ownedRoute(c, "cycle_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	var req UpdateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Debug("Request binding error", "error", err)
		s.handleError(c, errors.NewValidationError("Invalid request format"))
		return
	}

	start, err := optionalDate("start_date", req.StartDate)
	if err != nil {
		s.handleError(c, err)
		return
	}
	end, err := optionalDate("end_date", req.EndDate)
	if err != nil {
		s.handleError(c, err)
		return
	}

	updated, err := s.cycleUseCase.Update(c.Request.Context(), cycle.UpdateParams{
		ID:          cycleID,
		UserID:      userID,
		NewUserID:   req.UserID,
		StartDate:   start,
		EndDate:     end,
		Description: req.Description,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// deleteCycle handles DELETE /api/users/:user_id/cycles/:cycle_id requests
func (s *HTTPServerAdapter) deleteCycle(c *gin.Context) {
	userID, cycleID, err := ownedRoute(c, "cycle_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	if err := s.cycleUseCase.Delete(c.Request.Context(), userID, cycleID); err != nil {
		s.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
