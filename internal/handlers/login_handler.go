package handlers

import (
	"net/http"

	"smart-shopper/internal/admin"
	applog "smart-shopper/internal/log"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges a staff password for a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var input LoginRequest
	// 1. Validate Input JSON
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	// 2. Verify password and issue the token
	token, member, err := h.Guard.Login(input.Username, input.Password)
	if err != nil {
		applog.Security(c, "staff.login_failed", map[string]any{"username": input.Username})
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// 3. Success! Return Token and Role
	c.Set("staff", member.Username)
	applog.Audit(c, "staff.login", nil)
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"role":     member.Role,
		"username": member.Username,
	})
}

// --- Staff management (super admin) ---

func (h *Handler) ListStaff(c *gin.Context) {
	c.JSON(http.StatusOK, h.Admin.ListStaff())
}

func (h *Handler) AddStaff(c *gin.Context) {
	var input admin.NewStaff
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "username and role are required")
		return
	}

	member, err := h.Admin.AddStaff(input)
	if err != nil {
		writeError(c, "staff.add", err)
		return
	}
	applog.Audit(c, "staff.add", map[string]any{"username": member.Username, "role": member.Role})
	c.JSON(http.StatusCreated, member)
}

func (h *Handler) DeleteStaff(c *gin.Context) {
	username := c.Param("username")
	if err := h.Admin.DeleteStaff(username); err != nil {
		writeError(c, "staff.delete", err)
		return
	}
	applog.Audit(c, "staff.delete", map[string]any{"username": username})
	c.JSON(http.StatusOK, gin.H{"message": "Staff removed"})
}
