package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"luna.app/pkg/dateutil"
	"luna.app/pkg/errors"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

func uintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError(fmt.Sprintf("%s must be a positive integer", name))
	}
	return uint(id), nil
}

// ownedRoute reads :user_id and the child resource ID named by param
func ownedRoute(c *gin.Context, param string) (uint, uint, error) {
	userID, err := uintParam(c, "user_id")
	if err != nil {
		return 0, 0, err
	}
	id, err := uintParam(c, param)
	if err != nil {
		return 0, 0, err
	}
	return userID, id, nil
}

// pagination reads page and limit, clamping limit to maxLimit
func pagination(c *gin.Context) (int, int, error) {
	page, limit := defaultPage, defaultLimit

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, 0, errors.NewValidationError("page must be a positive integer")
		}
		page = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, 0, errors.NewValidationError("limit must be a positive integer")
		}
		limit = n
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, nil
}

// optionalDate parses a YYYY-MM-DD value; nil input yields nil
func optionalDate(field string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	d, err := dateutil.Parse(*value)
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field))
	}
	return &d, nil
}
