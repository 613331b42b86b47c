package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/accountdoctor/accountdoctor/internal/audit"
	"github.com/accountdoctor/accountdoctor/internal/config"
	"github.com/accountdoctor/accountdoctor/internal/notifications"
	"github.com/accountdoctor/accountdoctor/internal/scheduler"
	"github.com/accountdoctor/accountdoctor/internal/scoring"
	"github.com/accountdoctor/accountdoctor/internal/scraper"
	"github.com/accountdoctor/accountdoctor/internal/storage"
	"github.com/accountdoctor/accountdoctor/internal/strategy"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting AccountDoctor")

	// Connect to the database and run migrations
	db, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := storage.AutoMigrate(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}
	store := storage.NewPostgresStore(db)

	// Optional raw-snapshot archive
	var archive storage.Archive
	if cfg.StorageAccount != "" {
		azureArchive, err := storage.NewAzureArchive(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize snapshot archive: %v", err)
		}
		archive = azureArchive
	} else {
		logrus.Info("Snapshot archive disabled - no storage account configured")
	}

	// Initialize the profile provider
	provider := scraper.NewApifySource(cfg.ApifyToken, cfg.ApifyActorID)

	// Initialize the scoring engine
	engine := scoring.NewEngine(scoring.Config{BioKeywords: cfg.BioKeywords})

	// Optional strategy generation
	var generator strategy.Generator
	if llm := strategy.NewService(cfg.LLMProxyURL, cfg.LLMAPIKey, cfg.LLMModel); llm.IsEnabled() {
		generator = llm
	} else {
		logrus.Info("Strategy generation disabled - no LLM proxy configured")
	}

	// Initialize notification services
	notificationService := notifications.NewService(cfg)

	// Initialize the audit service
	auditService := audit.NewService(cfg, provider, engine, generator, store, archive, notificationService)

	// Initialize scheduler
	schedulerService := scheduler.NewService(cfg, auditService)

	// Start scheduler
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Set up HTTP server
	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Metrics endpoint
	router.HandleFunc("/metrics", metricsHandler(auditService)).Methods("GET")

	// Audit endpoints
	router.HandleFunc("/api/accounts/{username}/audit", auditHandler(auditService, false)).Methods("GET")
	router.HandleFunc("/api/accounts/{username}/refresh", auditHandler(auditService, true)).Methods("POST")
	router.HandleFunc("/api/accounts/{username}/history", historyHandler(auditService)).Methods("GET")
	router.HandleFunc("/api/accounts/{username}/watch", watchHandler(auditService)).Methods("POST")
	router.HandleFunc("/api/accounts/{username}/watch", unwatchHandler(auditService)).Methods("DELETE")

	// Manual trigger endpoint (for testing)
	router.HandleFunc("/trigger", triggerHandler(auditService)).Methods("POST")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func metricsHandler(auditService *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics := auditService.GetMetrics()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(metrics))
	}
}

func auditHandler(auditService *audit.Service, force bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := mux.Vars(r)["username"]

		record, err := auditService.AuditAccount(r.Context(), username, force)
		if err != nil {
			writeAuditError(w, username, err)
			return
		}

		writeJSON(w, http.StatusOK, record)
	}
}

func historyHandler(auditService *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := mux.Vars(r)["username"]

		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		records, err := auditService.History(r.Context(), username, limit)
		if err != nil {
			logrus.Errorf("Failed to load history for %s: %v", username, err)
			writeError(w, http.StatusInternalServerError, "failed to load audit history")
			return
		}

		writeJSON(w, http.StatusOK, records)
	}
}

func watchHandler(auditService *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := mux.Vars(r)["username"]

		if err := auditService.Watch(r.Context(), username); err != nil {
			logrus.Errorf("Failed to watch %s: %v", username, err)
			writeError(w, http.StatusInternalServerError, "failed to watch account")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "account watched"})
	}
}

func unwatchHandler(auditService *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := mux.Vars(r)["username"]

		if err := auditService.Unwatch(r.Context(), username); err != nil {
			logrus.Errorf("Failed to unwatch %s: %v", username, err)
			writeError(w, http.StatusInternalServerError, "failed to unwatch account")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "account unwatched"})
	}
}

func triggerHandler(auditService *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			if err := auditService.RefreshWatchedAccounts(); err != nil {
				logrus.Errorf("Manual refresh trigger failed: %v", err)
			}
		}()

		writeJSON(w, http.StatusOK, map[string]string{"message": "refresh triggered successfully"})
	}
}

// writeAuditError maps audit failures onto HTTP statuses: a profile that does
// not exist is the caller's problem, corrupt scraper output is upstream's,
// and everything else is ours.
func writeAuditError(w http.ResponseWriter, username string, err error) {
	switch {
	case errors.Is(err, scraper.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "profile not found")
	case errors.Is(err, scoring.ErrInvalidInput):
		logrus.Errorf("Scraper returned corrupt data for %s: %v", username, err)
		writeError(w, http.StatusBadGateway, "scraped profile data was invalid")
	case errors.Is(err, scraper.ErrRateLimited):
		writeError(w, http.StatusServiceUnavailable, "scraper rate limited, try again later")
	default:
		logrus.Errorf("Audit failed for %s: %v", username, err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
