package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"luna.app/internal/core/user"
	"luna.app/pkg/errors"
)

// RegisterUserRequest represents the HTTP request for creating a user
type RegisterUserRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	AvgCycleLength  int    `json:"avg_cycle_length" binding:"omitempty,min=1"`
	AvgPeriodLength int    `json:"avg_period_length" binding:"omitempty,min=1"`
	FCMToken        string `json:"fcm_token"`
}

// UpdateSettingsRequest represents a partial profile update
type UpdateSettingsRequest struct {
	Name            *string `json:"name"`
	AvgCycleLength  *int    `json:"avg_cycle_length" binding:"omitempty,min=1"`
	AvgPeriodLength *int    `json:"avg_period_length" binding:"omitempty,min=1"`
	FCMToken        *string `json:"fcm_token"`
}

// registerUser handles POST /api/users requests
func (s *HTTPServerAdapter) registerUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Debug("Request binding error", "error", err)
		s.handleError(c, errors.NewValidationError("Invalid request format"))
		return
	}

	u, err := s.userUseCase.Register(c.Request.Context(), user.RegisterParams{
		Name:            req.Name,
		Email:           req.Email,
		AvgCycleLength:  req.AvgCycleLength,
		AvgPeriodLength: req.AvgPeriodLength,
		FCMToken:        req.FCMToken,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, u)
}

// getUser handles GET /api/users/:user_id requests
func (s *HTTPServerAdapter) getUser(c *gin.Context) {
	userID, err := uintParam(c, "user_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	u, err := s.userUseCase.Get(c.Request.Context(), userID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// deleteUser handles DELETE /api/users/:user_id requests
func (s *HTTPServerAdapter) deleteUser(c *gin.Context) {
	userID, err := uintParam(c, "user_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	if err := s.userUseCase.Delete(c.Request.Context(), userID); err != nil {
		s.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// updateSettings handles PATCH /api/users/:user_id/settings requests
func (s *HTTPServerAdapter) updateSettings(c *gin.Context) {
	userID, err := uintParam(c, "user_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Debug("Request binding error", "error", err)
		s.handleError(c, errors.NewValidationError("Invalid request format"))
		return
	}

	u, err := s.userUseCase.UpdateSettings(c.Request.Context(), user.SettingsParams{
		UserID:          userID,
		Name:            req.Name,
		AvgCycleLength:  req.AvgCycleLength,
		AvgPeriodLength: req.AvgPeriodLength,
		FCMToken:        req.FCMToken,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}
