package handlers

import (
	"net/http"
	"time"

	"smart-shopper/internal/admin"
	applog "smart-shopper/internal/log"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "online", "timestamp": time.Now().UTC()})
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// --- Outlets (entrance QR) ---

func (h *Handler) GetOutlets(c *gin.Context) {
	c.JSON(http.StatusOK, h.Admin.Outlets())
}

func (h *Handler) GetOutlet(c *gin.Context) {
	o, err := h.Admin.Outlet(c.Param("id"))
	if err != nil {
		writeError(c, "outlet.lookup", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// --- Store settings ---

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.Admin.Settings())
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var patch admin.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	settings, err := h.Admin.UpdateSettings(patch)
	if err != nil {
		writeError(c, "settings.update", err)
		return
	}
	applog.Audit(c, "settings.update", nil)
	c.JSON(http.StatusOK, settings)
}
