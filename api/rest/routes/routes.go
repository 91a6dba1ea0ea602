package routes

import (
	"dreamlens/api/rest/handlers"
	"dreamlens/core/repository"
	"dreamlens/core/status"
	"dreamlens/core/upload"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, db *repository.DB, svc *status.Service) {
	jobRepo := repository.NewJobRepository(db)
	modelRepo := repository.NewModelRepository(db)
	eventRepo := repository.NewEventRepository(db)

	statusHandler := handlers.NewStatusHandler(svc, jobRepo, eventRepo)
	uploadHandler := handlers.NewUploadHandler(svc, upload.NewRequester(jobRepo, modelRepo))

	api := r.PathPrefix("/v1").Subrouter()

	// Training status endpoints
	api.HandleFunc("/models/training-status", statusHandler.ListTrainingStatuses).Methods("GET")
	api.HandleFunc("/models/{id}/training-status", statusHandler.GetTrainingStatus).Methods("GET")
	api.HandleFunc("/models/{id}/events", statusHandler.GetJobEvents).Methods("GET")
	api.HandleFunc("/models/{id}/retry-upload", uploadHandler.RetryUpload).Methods("POST")
}
