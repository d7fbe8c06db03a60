package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/validation"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
	"github.com/noah-isme/sma-timetable/pkg/response"
)

// pathID parses a positive integer path parameter. It writes the error response itself
// and reports false when the value is unusable.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := validation.RequireID(c.Param(name), name)
	if err != nil {
		response.Error(c, err)
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (int64, bool) {
	id, err := validation.RequireID(c.Query(name), name)
	if err != nil {
		response.Error(c, err)
		return 0, false
	}
	return id, true
}

// optionalQueryID returns zero when the parameter is absent.
func optionalQueryID(c *gin.Context, name string) (int64, bool) {
	id, err := validation.OptionalID(c.Query(name), name)
	if err != nil {
		response.Error(c, err)
		return 0, false
	}
	if id == nil {
		return 0, true
	}
	return *id, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// respondError writes err and attaches the blocking assignment for schedule conflicts.
func respondError(c *gin.Context, err error) {
	var conflictErr *models.ScheduleConflictError
	if errors.As(err, &conflictErr) {
		response.Error(c, err, map[string]interface{}{"conflict": conflictErr.Conflict})
		return
	}
	response.Error(c, err)
}
