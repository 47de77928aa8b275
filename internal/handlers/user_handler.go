package handlers

import (
	"errors"
	"net/http"

	"smart-shopper/internal/accounts"
	applog "smart-shopper/internal/log"
	"smart-shopper/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RegisterUser(c *gin.Context) {
	var req accounts.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "userId and name are required")
		return
	}

	u, err := h.Accounts.Register(req)
	if err != nil {
		writeError(c, "user.register", err)
		return
	}
	applog.Audit(c, "user.register", map[string]any{"user": u.UserID})
	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful", "loginCode": u.LoginCode})
}

func (h *Handler) LoginUser(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
		Code   string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "userId and code are required")
		return
	}

	u, err := h.Accounts.Login(req.UserID, req.Code)
	if errors.Is(err, models.ErrUnauthorized) {
		applog.Security(c, "user.login_failed", map[string]any{"user": req.UserID})
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid security code"})
		return
	}
	if err != nil {
		writeError(c, "user.login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "name": u.Name})
}

func (h *Handler) LogoutUser(c *gin.Context) {
	var req struct {
		UserID string `json:"userId"`
	}
	_ = c.ShouldBindJSON(&req)
	if err := h.Accounts.Logout(req.UserID); err != nil {
		writeError(c, "user.logout", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) CheckUser(c *gin.Context) {
	c.JSON(http.StatusOK, h.Accounts.Check(c.Param("userId")))
}

// --- Wallet ---

func (h *Handler) GetWallet(c *gin.Context) {
	w, err := h.Wallet.Wallet(c.Param("userId"))
	if err != nil {
		writeError(c, "wallet.read", err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) FundWallet(c *gin.Context) {
	// amount is a JSON integer in minor currency units; strings and fractions are rejected.
	var req struct {
		Amount    int64  `json:"amount"`
		Method    string `json:"method"`
		Reference string `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "amount must be a whole number in minor currency units, e.g. 5000")
		return
	}

	userID := c.Param("userId")
	balance, err := h.Wallet.Fund(userID, req.Amount, req.Method, req.Reference)
	if err != nil {
		writeError(c, "wallet.fund", err)
		return
	}
	applog.Audit(c, "wallet.fund", map[string]any{"user": userID, "amount": req.Amount, "method": req.Method})
	c.JSON(http.StatusOK, gin.H{"message": "Wallet funded successfully", "balance": balance})
}
