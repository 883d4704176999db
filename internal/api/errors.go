package api

import (
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"weeklygrind/plan-tracker/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrValidationFailed, http.StatusBadRequest},
	{service.ErrAuthenticationFailed, http.StatusUnauthorized},
	{service.ErrNotPlanOwner, http.StatusForbidden},
	{service.ErrPlanNotFound, http.StatusNotFound},
	{service.ErrPlanDayNotFound, http.StatusNotFound},
	{service.ErrDayExerciseNotFound, http.StatusNotFound},
	{service.ErrLibraryExerciseNotFound, http.StatusNotFound},
	{service.ErrUserPlanNotFound, http.StatusNotFound},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrShareInvalid, http.StatusNotFound},
	{service.ErrUserAlreadyExists, http.StatusConflict},
	{service.ErrPlanActive, http.StatusConflict},
	{service.ErrBackendUnavailable, http.StatusServiceUnavailable},
}

// respondError maps service errors to a status code. Anything unknown is
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			abortWithError(c, e.status, capitalize(err.Error()))
			return
		}
	}
	log.WithField("request_id", c.GetString(ContextRequestIDKey)).
		Errorf("%s %s: %s", c.Request.Method, c.FullPath(), err)
	abortWithError(c, http.StatusInternalServerError, "Internal server error")
}

func capitalize(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

func bindError(c *gin.Context, err error) {
	abortWithError(c, http.StatusBadRequest, "Validation error: "+strings.TrimSpace(err.Error()))
}

// paramObjectID reads a hex id path parameter. It writes a 400 and
// returns false when the id is malformed.
func paramObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

// currentUser reads the authenticated user. It writes a 401 and returns
// false when the route was not guarded.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Authentication required")
		return primitive.NilObjectID, false
	}
	return userID, true
}
