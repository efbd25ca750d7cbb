package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/constants"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
	"github.com/homechef-inc/mealsub/internal/shared/utils"
)

// principalID reads the id set by the auth middleware. It writes the 401
// response itself when the request is unauthenticated.
func principalID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(constants.ContextKeyPrincipalID)
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "principal not authenticated")
		return 0, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		utils.ErrorResponse(c, http.StatusUnauthorized, "principal not authenticated")
		return 0, false
	}
	return id, true
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// dateOrToday parses a YYYY-MM-DD field; an empty value means today in the
// business timezone.
func dateOrToday(c *gin.Context, raw, field string) (time.Time, bool) {
	if raw == "" {
		return biztime.Today(), true
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, field+" must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

// bindJSON decodes and validates a request body. An empty body leaves req
// at its zero value, which is then validated as usual.
func bindJSON(c *gin.Context, req any) bool {
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
			return false
		}
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return false
	}
	return true
}
