package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"poker-bankroll/internal/model"
	"poker-bankroll/internal/service"
)

// SessionHandler serves /sessions.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Register mounts the session routes on r.
func (h *SessionHandler) Register(r gin.IRoutes) {
	r.GET("/sessions", h.list)
	r.POST("/sessions", h.create)
	r.PUT("/sessions/:id", h.update)
	r.DELETE("/sessions/:id", h.delete)
}

func (h *SessionHandler) list(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	sessions, err := h.sessions.List(c.Request.Context(), userID, from, to)
	if err != nil {
		fail(c, err, "list sessions")
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *SessionHandler) create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var in model.SessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.sessions.Create(c.Request.Context(), userID, in)
	if err != nil {
		fail(c, err, "create session")
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *SessionHandler) update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var in model.SessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.sessions.Update(c.Request.Context(), userID, c.Param("id"), in)
	if err != nil {
		fail(c, err, "update session")
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SessionHandler) delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.sessions.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		fail(c, err, "delete session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
