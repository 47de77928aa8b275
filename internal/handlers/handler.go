package handlers

import (
	"errors"
	"net/http"

	"smart-shopper/internal/accounts"
	"smart-shopper/internal/admin"
	"smart-shopper/internal/ai"
	"smart-shopper/internal/auth"
	"smart-shopper/internal/catalog"
	"smart-shopper/internal/checkout"
	applog "smart-shopper/internal/log"
	"smart-shopper/internal/middleware"
	"smart-shopper/internal/models"
	"smart-shopper/internal/wallet"

	"github.com/gin-gonic/gin"
)

// Deps are the services the HTTP layer calls into.
type Deps struct {
	Guard     *auth.Guard
	Catalog   *catalog.Manager
	Checkout  *checkout.Engine
	Wallet    *wallet.Ledger
	Accounts  *accounts.Service
	Admin     *admin.Service
	Vision    *ai.Vision
	Assistant *ai.Assistant
	UploadDir string
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	return &Handler{Deps: d}
}

// Routes mounts every endpoint under /api.
func (h *Handler) Routes(r *gin.Engine) {
	if h.UploadDir != "" {
		r.Static("/uploads", h.UploadDir)
	}

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/ping", h.Ping)

	// --- PUBLIC: shopper-facing ---
	api.GET("/products/all", h.GetProducts)
	api.GET("/products/:barcode", h.GetProduct)
	api.GET("/outlets", h.GetOutlets)
	api.GET("/outlets/:id", h.GetOutlet)

	api.POST("/users/register", h.RegisterUser)
	api.POST("/users/login", h.LoginUser)
	api.POST("/users/logout", h.LogoutUser)
	api.GET("/users/check/:userId", h.CheckUser)
	api.GET("/users/:userId/wallet", h.GetWallet)
	api.POST("/users/:userId/wallet/fund", h.FundWallet)

	api.GET("/cart/:userId", h.GetCart)
	api.POST("/cart/add", h.AddToCart)
	api.POST("/cart/clear", h.ClearCart)
	api.POST("/checkout", h.CheckoutCart)
	api.GET("/orders/user/:userId", h.GetUserOrders)
	api.GET("/transactions/:userId", h.GetUserTransactions)

	api.POST("/vision/identify", h.IdentifyProducts)
	api.POST("/vision/explore", h.ExploreProduct)

	api.POST("/admin/login", h.Login)

	// --- ROLE-GATED: dashboard ---
	adm := api.Group("/admin")
	{
		manage := middleware.RequireCapability(h.Guard, auth.ManageProducts)
		adm.POST("/products", manage, h.AddProduct)
		adm.PUT("/products/:barcode", manage, h.UpdateProduct)
		adm.DELETE("/products/:barcode", middleware.RequireCapability(h.Guard, auth.DeleteProducts), h.DeleteProduct)
		adm.POST("/products/bulk", manage, h.BulkUpsert)
		adm.POST("/products/import", manage, h.ImportProducts)
		adm.GET("/products/template", manage, h.DownloadTemplate)
		adm.POST("/products/:barcode/image", manage, h.UploadImage)

		stats := middleware.RequireCapability(h.Guard, auth.ViewStats)
		adm.GET("/stats", stats, h.GetStats)
		adm.GET("/reports", stats, h.GetSalesReport)
		adm.GET("/reports/categories", stats, h.GetSalesByCategory)
		adm.GET("/orders", middleware.RequireCapability(h.Guard, auth.ViewOrders), h.SearchOrders)
		adm.GET("/users", middleware.RequireCapability(h.Guard, auth.ViewUsers), h.SearchUsers)
		adm.GET("/analytics", middleware.RequireCapability(h.Guard, auth.ViewAnalytics), h.GetAnalytics)
		adm.GET("/orders/:orderId/verify", middleware.RequireCapability(h.Guard, auth.VerifyExit), h.VerifyExit)

		staff := middleware.RequireCapability(h.Guard, auth.ManageStaff)
		adm.GET("/staff", staff, h.ListStaff)
		adm.POST("/staff", staff, h.AddStaff)
		adm.DELETE("/staff/:username", staff, h.DeleteStaff)

		settings := middleware.RequireCapability(h.Guard, auth.ManageSettings)
		adm.GET("/settings", settings, h.GetSettings)
		adm.POST("/settings", settings, h.UpdateSettings)

		adm.POST("/ask", middleware.RequireCapability(h.Guard, auth.UseAssistant), h.AskAI)
	}
}

// writeError maps domain errors to a status and a {"error": "..."} body.
func writeError(c *gin.Context, action string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateBarcode),
		errors.Is(err, models.ErrDuplicateUsername),
		errors.Is(err, models.ErrDuplicateUser),
		errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrInsufficientBalance):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrProtectedAccount), errors.Is(err, models.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrPaymentFailed):
		status = http.StatusPaymentRequired
	case errors.Is(err, models.ErrAINotConfigured):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		applog.Error(c, action, err, nil)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	applog.Info(c, action, map[string]any{"status": status, "reason": err.Error()})
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
