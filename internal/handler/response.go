// Package handler provides the HTTP handlers of the bankroll API.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"poker-bankroll/internal/auth"
	"poker-bankroll/internal/model"
	"poker-bankroll/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: message})
}

// fail maps a service error to a status code. Internal failures are logged
// and reported with a generic message.
func fail(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, model.ErrInvalidSession):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(c, http.StatusNotFound, "session not found")
	default:
		userID, _ := auth.UserID(c)
		log.Error().Err(err).Str("op", op).Str("user_id", userID).Msg("Request failed")
		writeError(c, http.StatusInternalServerError, "failed to "+op)
	}
}

// currentUser returns the authenticated user ID, writing a 401 when absent.
func currentUser(c *gin.Context) (string, bool) {
	id, ok := auth.UserID(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "unauthorized")
	}
	return id, ok
}

// dateRange parses the optional from/to query parameters.
func dateRange(c *gin.Context) (from, to *model.Date, ok bool) {
	parse := func(name string) (*model.Date, bool) {
		v := strings.TrimSpace(c.Query(name))
		if v == "" {
			return nil, true
		}
		d, err := model.ParseDate(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid "+name+" date, want YYYY-MM-DD")
			return nil, false
		}
		return &d, true
	}

	if from, ok = parse("from"); !ok {
		return nil, nil, false
	}
	if to, ok = parse("to"); !ok {
		return nil, nil, false
	}
	if from != nil && to != nil && from.After(*to) {
		writeError(c, http.StatusBadRequest, "from must not be after to")
		return nil, nil, false
	}
	return from, to, true
}
