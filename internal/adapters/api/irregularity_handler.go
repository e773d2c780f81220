package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// listIrregularities handles GET /api/users/:user_id/irregularities requests
func (s *HTTPServerAdapter) listIrregularities(c *gin.Context) {
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

	result, err := s.irregularityUseCase.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// getIrregularity handles GET /api/users/:user_id/irregularities/:irregularity_id requests
func (s *HTTPServerAdapter) getIrregularity(c *gin.Context) {
	userID, id, err := ownedRoute(c, "irregularity_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	found, err := s.irregularityUseCase.Get(c.Request.Context(), userID, id)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

// deleteIrregularity handles DELETE /api/users/:user_id/irregularities/:irregularity_id requests
func (s *HTTPServerAdapter) deleteIrregularity(c *gin.Context) {
	userID, id, err := ownedRoute(c, "irregularity_id")
	if err != nil {
		s.handleError(c, err)
		return
	}

	if err := s.irregularityUseCase.Delete(c.Request.Context(), userID, id); err != nil {
		s.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
