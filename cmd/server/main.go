package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/adigold/splitbook/internal/auth"
	"github.com/adigold/splitbook/internal/middleware"
	"github.com/adigold/splitbook/internal/routes"
	"github.com/adigold/splitbook/internal/service"
	"github.com/adigold/splitbook/internal/storage/sqlite"
	"github.com/adigold/splitbook/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/splitbook.db")
	port := getEnvInt("PORT", 8080)
	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	tokenTTL := time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour
	rateLimit := getEnvInt("RATE_LIMIT", 120)
	rateWindow := time.Duration(getEnvInt("RATE_WINDOW_SECONDS", 60)) * time.Second

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	jwtManager := auth.NewJWTManager(jwtSecret, tokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	r := routes.Setup(routes.Deps{
		Store:      store,
		JWTManager: jwtManager,
		Limiter:    middleware.NewLimiter(rateLimit, rateWindow),
		Auth:       service.NewAuthService(authenticator, jwtManager, store),
		Ledger:     service.NewLedgerService(store),
		Requests:   service.NewRequestService(store),
		Expenses:   service.NewExpenseService(store),
		Recurring:  service.NewRecurringService(store),
	})

	addr := fmt.Sprintf(":%d", port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
