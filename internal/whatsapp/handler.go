package whatsapp

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	adapter Adapter
	service *Service
}

func NewHandler(adapter Adapter, service *Service) *Handler {
	return &Handler{adapter: adapter, service: service}
}

// --------------------------------------------------
// Inbound webhook
// --------------------------------------------------
func (h *Handler) Webhook(c *gin.Context) {
	in, err := h.adapter.ParseWebhook(c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}

	reply, err := h.service.HandleMessage(c.Request.Context(), in)
	if err != nil {
		log.Printf("message handling failed for %s: %v", in.From, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "message handling failed"})
		return
	}

	if reply != "" {
		if err := h.adapter.SendText(c.Request.Context(), in.From, reply); err != nil {
			log.Printf("send reply failed for %s: %v", in.From, err)
		}
	}

	c.Status(http.StatusOK)
}
