package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"luna.app/internal/core/periodday"
	"luna.app/pkg/dateutil"
	"luna.app/pkg/errors"
)

// LogPeriodDayRequest represents the HTTP request for logging a bleeding day
type LogPeriodDayRequest struct {
	CycleID     uint   `json:"cycle_id" binding:"required,min=1"`
	Date        string `json:"date" binding:"required,isodate"`
	FlowLevel   string `json:"flow_level" binding:"required,flowlevel"`
	Description string `json:"description"`
}

// UpdatePeriodDayRequest represents a partial period day update
type UpdatePeriodDayRequest struct {
	Date        *string `json:"date" binding:"omitempty,isodate"`
	FlowLevel   *string `json:"flow_level" binding:"omitempty,flowlevel"`
	Description *string `json:"description"`
}

// logPeriodDay handles POST /api/users/:user_id/period-days requests
func (s *HTTPServerAdapter) logPeriodDay(c *gin.Context) {
	userID, err := uintParam(c, "user_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	var req LogPeriodDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Debug("Request binding error", "error", err)
		s.handleError(c, errors.NewValidationError("Invalid request format"))
		return
	}

	day, err := dateutil.Parse(req.Date)
	if err != nil {
		s.handleError(c, errors.NewValidationError("date must be a date in YYYY-MM-DD format"))
		return
	}

	logged, err := s.periodDayUseCase.Log(c.Request.Context(), periodday.LogParams{
		UserID:      userID,
		CycleID:     req.CycleID,
		Date:        day,
		FlowLevel:   periodday.FlowLevelFromString(req.FlowLevel),
		Description: req.Description,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, logged)
}

// listPeriodDays handles GET /api/users/:user_id/period-days requests
func (s *HTTPServerAdapter) listPeriodDays(c *gin.Context) {
	userID, err := uintParam(c, "user_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	var cycleID *uint
	if raw := c.Query("cycle_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 {
			s.handleError(c, errors.NewValidationError("cycle_id must be a positive integer"))
			return
		}
		id := uint(n)
		cycleID = &id
	}

	days, err := s.periodDayUseCase.List(c.Request.Context(), userID, cycleID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": days})
}

// getPeriodDay handles GET /api/users/:user_id/period-days/:period_day_id requests
func (s *HTTPServerAdapter) getPeriodDay(c *gin.Context) {
	userID, id, err := ownedRoute(c, "period_day_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	day, err := s.periodDayUseCase.Get(c.Request.Context(), userID, id)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, day)
}

// updatePeriodDay handles PATCH /api/users/:user_id/period-days/:period_day_id requests
func (s *HTTPServerAdapter) updatePeriodDay(c *gin.Context) {
	userID, id, err := ownedRoute(c, "period_day_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	var req UpdatePeriodDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Debug("Request binding error", "error", err)
		s.handleError(c, errors.NewValidationError("Invalid request format"))
		return
	}

	date, err := optionalDate("date", req.Date)
	if err != nil {
		s.handleError(c, err)
		return
	}
	var flow *periodday.FlowLevel
	if req.FlowLevel != nil {
		level := periodday.FlowLevelFromString(*req.FlowLevel)
		flow = &level
	}

	updated, err := s.periodDayUseCase.Update(c.Request.Context(), periodday.UpdateParams{
		UserID:      userID,
		ID:          id,
		Date:        date,
		FlowLevel:   flow,
		Description: req.Description,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// deletePeriodDay handles DELETE /api/users/:user_id/period-days/:period_day_id requests
func (s *HTTPServerAdapter) deletePeriodDay(c *gin.Context) {
	userID, id, err := ownedRoute(c, "period_day_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	if err := s.periodDayUseCase.Delete(c.Request.Context(), userID, id); err != nil {
		s.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
