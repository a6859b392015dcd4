package refresh

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	store   *Store
}

func NewHandler(service *Service, store *Store) *Handler {
	return &Handler{service: service, store: store}
}

// --------------------------------------------------
// POST /admin/catalog/refresh
// --------------------------------------------------
func (h *Handler) Refresh(c *gin.Context) {
	snap, err := h.service.RefreshFromPOS(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"catalog_version": snap.Catalog.Version(),
		"items":           snap.Catalog.Len(),
		"built_at":        snap.BuiltAt,
	})
}

// --------------------------------------------------
// GET /admin/catalog/status
// --------------------------------------------------
func (h *Handler) Status(c *gin.Context) {
	snap := h.store.Current()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog not loaded yet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"catalog_version": snap.Catalog.Version(),
		"items":           snap.Catalog.Len(),
		"built_at":        snap.BuiltAt,
	})
}
