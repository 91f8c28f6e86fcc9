package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/raven2t2/importiq-backend/audit"
	"github.com/raven2t2/importiq-backend/monitoring"
	"github.com/raven2t2/importiq-backend/shared/utils"
	v1 "github.com/raven2t2/importiq-backend/v1"
	v1handlers "github.com/raven2t2/importiq-backend/v1/handlers"
	v1middleware "github.com/raven2t2/importiq-backend/v1/middleware"
	v1models "github.com/raven2t2/importiq-backend/v1/models"
)

func main() {
	// Load .env file if it exists (optional - fails silently if not found)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	slog.SetDefault(logger)

	slog.Info("Starting ImportIQ Backend initialization")

	dbConfig := v1.NewDatabaseConfig()
	gormDB, err := v1.ConnectGormDB(dbConfig)
	if err != nil {
		slog.Error("Failed to connect to GORM database", "error", err)
		os.Exit(1)
	}

	if err := v1.AutoMigrate(gormDB); err != nil {
		slog.Error("Failed to migrate database schema", "error", err)
		os.Exit(1)
	}

	jwtSecret := os.Getenv("IMPORTIQ_JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("IMPORTIQ_JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	sessionTTL, err := utils.ParseExpiryTime(utils.GetEnvOrDefault("SESSION_TTL", v1models.DefaultSessionTTL))
	if err != nil {
		slog.Error("Invalid SESSION_TTL", "error", err)
		os.Exit(1)
	}

	// Audit events go to a Redis stream; the publisher degrades to a noop
	// when Redis is not configured or unreachable.
	auditPublisher := audit.NewRedisPublisher(audit.ConfigFromEnv())
	audit.InitializeGlobalAuditor(auditPublisher)

	v1Handler := v1handlers.NewV1Handler(gormDB, []byte(jwtSecret), sessionTTL)

	// Create a mux for API routes
	apiMux := http.NewServeMux()
	v1Handler.SetupV1Routes(apiMux) // All /api/v1/... routes go here

	// Register routes for metrics normalization before traffic arrives
	monitoring.RegisterRoutes([]string{
		"/health",
		"/metrics",
		"/api/v1/users/register",
		"/api/v1/users/login",
		"/api/v1/users/logout",
		"/api/v1/users/password-reset",
		"/api/v1/users/password-reset/confirm",
		"/api/v1/auth/user",
		"/api/v1/calculate",
		"/api/v1/calculate-us",
		"/api/v1/check-compliance",
		"/api/v1/mod-estimate",
		"/api/v1/port-intelligence",
		"/api/v1/port-recommendations",
		"/api/v1/port-cost-calculator",
		"/api/v1/port-comparison",
		"/api/v1/vehicles",
		"/api/v1/vehicles/:id",
		"/api/v1/compliance-rules",
		"/api/v1/compliance-rules/:id",
		"/api/v1/duty-rates",
		"/api/v1/mod-shops",
		"/api/v1/mod-shops/:id",
		"/api/v1/mod-shops/:id/reviews",
		"/api/v1/save-report",
		"/api/v1/reports",
		"/api/v1/reports/:id",
		"/api/v1/bookings",
		"/api/v1/bookings/:id",
		"/api/v1/affiliate/signup",
		"/api/v1/affiliate/:id",
	})

	// Setup middleware chain (CORS -> session auth) applied to the API mux ONLY
	corsMiddleware := v1middleware.NewCORSMiddleware()
	sessionAuth := v1middleware.NewSessionAuthMiddleware(v1Handler.AuthService())

	protectedAPIHandler := monitoring.HTTPMetricsMiddleware(
		corsMiddleware(
			sessionAuth.Authenticate(apiMux),
		),
	)

	// Create the MAIN (top-level) mux for all incoming traffic
	topLevelMux := http.NewServeMux()

	topLevelMux.Handle("/health", utils.PanicRecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		type DBHealth struct {
			Status   string `json:"status"`
			Error    string `json:"error,omitempty"`
			Database string `json:"database,omitempty"`
		}
		type HealthStatus struct {
			Status   string   `json:"status"`
			Service  string   `json:"service"`
			Database DBHealth `json:"database"`
			Audit    string   `json:"audit"`
		}

		status := HealthStatus{
			Status:   "healthy",
			Service:  "importiq-backend",
			Database: DBHealth{Status: "unknown"},
			Audit:    "disabled",
		}
		if auditPublisher.IsEnabled() {
			status.Audit = "enabled"
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		sqlDB, err := gormDB.DB()
		if err != nil {
			status.Database = DBHealth{Status: "unhealthy", Error: fmt.Sprintf("failed to get sql.DB: %v", err)}
			status.Status = "unhealthy"
		} else if err := sqlDB.PingContext(ctx); err != nil {
			status.Database = DBHealth{Status: "unhealthy", Error: err.Error()}
			status.Status = "unhealthy"
		} else {
			status.Database = DBHealth{Status: "healthy", Database: dbConfig.Database}
		}

		statusCode := http.StatusOK
		if status.Status != "healthy" {
			statusCode = http.StatusServiceUnavailable
		}

		utils.RespondWithJSON(w, statusCode, status)
	})))

	topLevelMux.Handle("/metrics", monitoring.Handler())

	// All traffic to /api/v1/ (and its sub-paths) passes through the middleware chain
	topLevelMux.Handle("/api/v1/", protectedAPIHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	addr := ":" + port
	server := &http.Server{
		Addr:         addr,
		Handler:      topLevelMux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("ImportIQ Backend starting", "port", port, "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start ImportIQ Backend", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down ImportIQ Backend...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := auditPublisher.Close(); err != nil {
		slog.Error("Failed to close audit publisher", "error", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}

	slog.Info("ImportIQ Backend exited")
}
