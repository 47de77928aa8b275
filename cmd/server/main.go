package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart-shopper/internal/accounts"
	"smart-shopper/internal/admin"
	"smart-shopper/internal/ai"
	"smart-shopper/internal/auth"
	"smart-shopper/internal/catalog"
	"smart-shopper/internal/checkout"
	"smart-shopper/internal/config"
	"smart-shopper/internal/database"
	"smart-shopper/internal/handlers"
	applog "smart-shopper/internal/log"
	"smart-shopper/internal/middleware"
	"smart-shopper/internal/models"
	"smart-shopper/internal/store"
	"smart-shopper/internal/wallet"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal("Cannot open log file:", err)
		}
		defer f.Close()
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	// --- 1. Persistence ---
	gateway, closeGateway := openGateway(cfg)
	defer closeGateway()

	initial, err := gateway.Load()
	if err != nil {
		log.Fatal("Failed to load store:", err)
	}
	s := store.New(initial, gateway, store.WithVerification(cfg.StoreVerify))

	if cfg.SuperAdminPassword != "" {
		if err := auth.SetPassword(s, models.SuperAdminUsername, cfg.SuperAdminPassword); err != nil {
			log.Fatal("Failed to set super admin password:", err)
		}
	}

	// --- 2. Access control ---
	var tokens *auth.Tokens
	if cfg.JWTSecret != "" {
		tokens = auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	}
	var verifier auth.Verifier = auth.HeaderVerifier{}
	if cfg.AuthMode == "jwt" {
		verifier = auth.TokenVerifier{Tokens: tokens}
	} else {
		log.Println("⚠️ WARNING: AUTH_MODE=header trusts the X-Admin-Username header. Do not expose this publicly!")
	}
	guard := auth.NewGuard(s, verifier, tokens)

	// --- 3. AI (optional) ---
	var client *genai.Client
	var generator ai.Generator
	if cfg.GeminiAPIKey != "" {
		client, err = ai.NewClient(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			log.Println("Warning: Gemini client unavailable:", err)
		} else {
			defer client.Close()
			generator = &ai.GeminiGenerator{Client: client, Model: cfg.GeminiModel}
		}
	} else {
		log.Println("Warning: GEMINI_API_KEY not set, vision runs in fallback mode")
	}

	cat := catalog.NewManager(s)
	adm := admin.NewService(s)
	h := handlers.New(handlers.Deps{
		Guard:     guard,
		Catalog:   cat,
		Checkout:  checkout.NewEngine(s, checkout.WithPaymentVerifier(checkout.ReferenceVerifier{}, cfg.PaymentTimeout)),
		Wallet:    wallet.NewLedger(s),
		Accounts:  accounts.NewService(s),
		Admin:     adm,
		Vision:    ai.NewVision(generator, cat, cfg.AITimeout),
		Assistant: ai.NewAssistant(client, cfg.GeminiModel, cfg.AITimeout, cat, adm),
		UploadDir: cfg.UploadDir,
	})

	// --- 4. HTTP ---
	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", auth.AdminHeader, "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	h.Routes(r)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("🚀 Server starting on :" + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.Error(nil, "server.shutdown", err, nil)
	}
	if err := s.Flush(); err != nil {
		applog.Error(nil, "store.flush", err, nil)
	}
	log.Println("Server stopped")
}

func openGateway(cfg config.Config) (database.Gateway, func()) {
	switch cfg.StoreDriver {
	case "mysql", "sqlite":
		g, err := database.Connect(cfg.StoreDriver, cfg.DBDSN)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		return g, func() { _ = g.Close() }
	default:
		return database.NewFileGateway(cfg.DBPath), func() {}
	}
}
