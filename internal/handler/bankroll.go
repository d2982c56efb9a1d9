package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"poker-bankroll/internal/model"
	"poker-bankroll/internal/service"
)

// BankrollHandler serves /bankroll and /stats.
type BankrollHandler struct {
	bankrolls *service.BankrollService
	stats     *service.StatsService
}

// NewBankrollHandler creates a new BankrollHandler.
func NewBankrollHandler(bankrolls *service.BankrollService, stats *service.StatsService) *BankrollHandler {
	return &BankrollHandler{bankrolls: bankrolls, stats: stats}
}

// Register mounts the bankroll and stats routes on r.
func (h *BankrollHandler) Register(r gin.IRoutes) {
	r.GET("/bankroll", h.get)
	r.PUT("/bankroll", h.put)
	r.GET("/stats", h.report)
}

func (h *BankrollHandler) get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	b, err := h.bankrolls.Get(c.Request.Context(), userID)
	if err != nil {
		fail(c, err, "get bankroll")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BankrollHandler) put(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var b model.Bankroll
	if err := c.ShouldBindJSON(&b); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.bankrolls.Set(c.Request.Context(), userID, b)
	if err != nil {
		fail(c, err, "set bankroll")
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *BankrollHandler) report(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	r, err := h.stats.Report(c.Request.Context(), userID, from, to)
	if err != nil {
		fail(c, err, "compute stats")
		return
	}
	c.JSON(http.StatusOK, r)
}
