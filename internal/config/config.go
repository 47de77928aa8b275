package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	StoreDriver string // file | mysql | sqlite
	DBPath      string
	DBDSN       string
	StoreVerify bool

	AuthMode           string // header | jwt
	JWTSecret          string
	JWTTTL             time.Duration
	SuperAdminPassword string

	GeminiAPIKey string
	GeminiModel  string
	AITimeout    time.Duration

	PaymentTimeout time.Duration
	CORSOrigins    []string
	LogFile        string
	UploadDir      string
}

// ErrJWTSecretMissing is returned when token auth is requested without a signing secret.
var ErrJWTSecretMissing = errors.New("AUTH_MODE=jwt requires JWT_SECRET")

// Load reads .env (if present) and then the process environment. Settings that would
// weaken authentication are reported as errors rather than silently downgraded.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}

	cfg := Config{
		Port:        env("PORT", "5000"),
		StoreDriver: strings.ToLower(env("STORE_DRIVER", "file")),
		DBPath:      env("DB_PATH", "db.json"),
		DBDSN:       os.Getenv("DB_DSN"),
		StoreVerify: envBool("STORE_VERIFY", true),

		AuthMode:           strings.ToLower(env("AUTH_MODE", "header")),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTTTL:             envDuration("JWT_TTL", 24*time.Hour),
		SuperAdminPassword: os.Getenv("SUPER_ADMIN_PASSWORD"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  env("GEMINI_MODEL", "gemini-2.0-flash-001"),
		AITimeout:    envDuration("AI_TIMEOUT", 15*time.Second),

		PaymentTimeout: envDuration("PAYMENT_TIMEOUT", 10*time.Second),
		CORSOrigins:    splitList(env("CORS_ORIGINS", "http://localhost:5173")),
		LogFile:        os.Getenv("LOG_FILE"),
		UploadDir:      env("UPLOAD_DIR", "uploads"),
	}

	if cfg.AuthMode == "jwt" && cfg.JWTSecret == "" {
		return cfg, ErrJWTSecretMissing
	}
	log.Printf("[config] PORT=%s STORE_DRIVER=%s DB_PATH=%s AUTH_MODE=%s STORE_VERIFY=%t",
		cfg.Port, cfg.StoreDriver, cfg.DBPath, cfg.AuthMode, cfg.StoreVerify)
	return cfg, nil
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
