package order

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/refresh"
)

type Handler struct {
	snapshots *refresh.Store
	repo      Repository
}

func NewHandler(snapshots *refresh.Store, repo Repository) *Handler {
	return &Handler{snapshots: snapshots, repo: repo}
}

// --------------------------------------------------
// POST /orders/normalize
// --------------------------------------------------
func (h *Handler) Normalize(c *gin.Context) {
	var req struct {
		Lines []Line `json:"lines"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lines are required"})
		return
	}
	if len(req.Lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lines are required"})
		return
	}

	snap := h.snapshots.Current()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog not loaded yet"})
		return
	}

	ord, clar := Normalize(req.Lines, snap.Catalog, snap.Index, snap.Rules)
	if clar != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"clarification": clar})
		return
	}

	c.JSON(http.StatusOK, ord)
}

// --------------------------------------------------
// GET /orders/history?phone=+1555...
// --------------------------------------------------
func (h *Handler) History(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	receipts, err := h.repo.ListByPhone(c.Request.Context(), phone, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipts": receipts})
}
