package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"luna.app/internal/core/notification"
)

// listNotifications handles GET /api/users/:user_id/notifications requests
func (s *HTTPServerAdapter) listNotifications(c *gin.Context) {
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

	result, err := s.notificationUseCase.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// markNotificationsRead handles POST /api/users/:user_id/notifications/read requests
func (s *HTTPServerAdapter) markNotificationsRead(c *gin.Context) {
	userID, err := uintParam(c, "user_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	updated, err := s.notificationUseCase.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// checkNotifications handles POST /api/users/:user_id/notifications/check requests.
// The report is returned as-is; an unsuccessful evaluation is not an HTTP error.
func (s *HTTPServerAdapter) checkNotifications(c *gin.Context) {
	userID, err := uintParam(c, "user_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	report := s.notificationUseCase.Evaluate(c.Request.Context(), userID, notification.TriggerDailyCheck)
	c.JSON(http.StatusOK, report)
}

// runDailyCheck handles POST /api/notifications/daily-check requests
func (s *HTTPServerAdapter) runDailyCheck(c *gin.Context) {
	summary, err := s.notificationUseCase.DailyCheckAll(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	slog.Info("Daily check triggered over HTTP", "users", summary.Users, "sent", summary.Sent)
	c.JSON(http.StatusOK, summary)
}
