package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dreamlens/api/rest/routes"
	"dreamlens/config"
	"dreamlens/core/housekeeping"
	"dreamlens/core/repository"
	"dreamlens/core/status"
	"dreamlens/providers/huggingface"
	"dreamlens/providers/replicate"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	// Initialize database
	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Database connected successfully")

	jobRepo := repository.NewJobRepository(db)
	modelRepo := repository.NewModelRepository(db)

	// External collaborators
	provider := replicate.NewClient(cfg.ReplicateAPIToken)
	hub := huggingface.NewClient(cfg.HuggingFaceToken, cfg.HuggingFaceUsername)

	// Status resolution core
	aggregator := status.NewAggregator(modelRepo, provider, cfg.ProviderTimeout())
	resolver := status.NewResolver()
	var reconciler *status.Reconciler
	if cfg.ReconcileEnabled {
		reconciler = status.NewReconciler(jobRepo, modelRepo)
	}
	statusService := status.NewService(jobRepo, aggregator, resolver, reconciler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Registry housekeeping sweep
	janitor := housekeeping.NewJanitor(hub, modelRepo, cfg.CleanupSchedule, cfg.CleanupGrace(), cfg.CleanupDryRun)
	go func() {
		if err := janitor.Start(ctx); err != nil {
			log.Printf("Janitor failed to start: %v", err)
		}
	}()

	// Setup routes
	r := mux.NewRouter()
	routes.SetupRoutes(r, db, statusService)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := server.Shutdown(context.Background()); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
