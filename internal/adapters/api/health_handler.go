package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"luna.app/internal/adapters/infrastructure"
)

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	Status     string      `json:"status"`
	Components interface{} `json:"components"`
}

// getHealth handles GET /api/health requests
func (s *HTTPServerAdapter) getHealth(c *gin.Context) {
	results := s.healthChecker.CheckAll(c.Request.Context())
	overall := infrastructure.Overall(results)

	code := http.StatusOK
	if overall == "unhealthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{Status: overall, Components: results})
}
