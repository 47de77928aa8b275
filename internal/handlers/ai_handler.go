package handlers

import (
	"net/http"

	applog "smart-shopper/internal/log"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

type imageRequest struct {
	Image string `json:"image" binding:"required"`
}

func (h *Handler) AskAI(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Message is required")
		return
	}

	response, err := h.Assistant.Ask(c.Request.Context(), req.Message)
	if err != nil {
		writeError(c, "assistant.ask", err)
		return
	}
	applog.Audit(c, "assistant.ask", nil)
	c.JSON(http.StatusOK, gin.H{"reply": response})
}

func (h *Handler) IdentifyProducts(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "No image provided")
		return
	}

	products, err := h.Vision.Identify(c.Request.Context(), req.Image)
	if err != nil {
		writeError(c, "vision.identify", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) ExploreProduct(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "No image provided")
		return
	}

	draft, err := h.Vision.Explore(c.Request.Context(), req.Image)
	if err != nil {
		writeError(c, "vision.explore", err)
		return
	}
	c.JSON(http.StatusOK, draft)
}
