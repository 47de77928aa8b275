package handlers

import (
	"net/http"

	"smart-shopper/internal/checkout"
	applog "smart-shopper/internal/log"

	"github.com/gin-gonic/gin"
)

type addToCartRequest struct {
	UserID   string `json:"userId"`
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.Checkout.Cart(c.Param("userId")))
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	view, err := h.Checkout.AddItem(req.UserID, req.Barcode, req.Quantity)
	if err != nil {
		writeError(c, "cart.add", err)
		return
	}
	applog.Info(c, "cart.add", map[string]any{"user": req.UserID, "barcode": req.Barcode, "lines": len(view.Items)})
	c.JSON(http.StatusOK, gin.H{"message": "Added to cart", "cart": view, "cartCount": len(view.Items)})
}

func (h *Handler) ClearCart(c *gin.Context) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if err := h.Checkout.Clear(req.UserID); err != nil {
		writeError(c, "cart.clear", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

func (h *Handler) CheckoutCart(c *gin.Context) {
	var req checkout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing checkout details")
		return
	}

	receipt, err := h.Checkout.Checkout(c.Request.Context(), req)
	if err != nil {
		writeError(c, "checkout", err)
		return
	}
	applog.Audit(c, "checkout", map[string]any{
		"order":  receipt.OrderID,
		"user":   req.UserID,
		"total":  req.TotalAmount,
		"method": req.PaymentMethod,
	})

	resp := gin.H{
		"message":    "Payment Successful",
		"orderId":    receipt.OrderID,
		"exitQrCode": receipt.OrderID,
		"order":      receipt.Order,
	}
	if receipt.NewBalance != nil {
		resp["newBalance"] = *receipt.NewBalance
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) GetUserOrders(c *gin.Context) {
	c.JSON(http.StatusOK, h.Checkout.OrdersForUser(c.Param("userId")))
}

func (h *Handler) GetUserTransactions(c *gin.Context) {
	c.JSON(http.StatusOK, h.Checkout.TransactionsForUser(c.Param("userId")))
}
