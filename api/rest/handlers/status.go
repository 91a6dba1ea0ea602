package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"dreamlens/core/models"
	"dreamlens/core/status"

	"github.com/gorilla/mux"
)

// EventLister reads a job's event trail
type EventLister interface {
	GetJobEvents(jobID string, limit int) ([]models.JobEvent, error)
}

// StatusHandler handles training-status HTTP requests
type StatusHandler struct {
	service *status.Service
	jobs    status.JobFinder
	events  EventLister
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(service *status.Service, jobs status.JobFinder, events EventLister) *StatusHandler {
	return &StatusHandler{service: service, jobs: jobs, events: events}
}

// GetTrainingStatus handles GET /v1/models/{id}/training-status
func (h *StatusHandler) GetTrainingStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["id"]

	view, err := h.service.JobStatus(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, status.ErrJobNotFound) {
			http.Error(w, "Training job not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to resolve status: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// ListTrainingStatuses handles GET /v1/models/training-status
func (h *StatusHandler) ListTrainingStatuses(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = "default-user" // TODO: Extract from auth token
	}

	limit := 0
	offset := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		fmt.Sscanf(limitParam, "%d", &limit)
	}
	if offsetParam := r.URL.Query().Get("offset"); offsetParam != "" {
		fmt.Sscanf(offsetParam, "%d", &offset)
	}

	page, err := h.service.UserStatuses(r.Context(), userID, limit, offset)
	if err != nil {
		http.Error(w, "Failed to list statuses: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

// GetJobEvents handles GET /v1/models/{id}/events
func (h *StatusHandler) GetJobEvents(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["id"]

	if _, err := h.jobs.GetJob(jobID); err != nil {
		http.Error(w, "Training job not found", http.StatusNotFound)
		return
	}

	events, err := h.events.GetJobEvents(jobID, 100)
	if err != nil {
		http.Error(w, "Failed to fetch events: "+err.Error(), http.StatusInternalServerError)
		return
	}

	items := make([]map[string]interface{}, len(events))
	for i, event := range events {
		item := map[string]interface{}{
			"at":        event.At,
			"to_status": event.ToStatus,
			"reason":    event.Reason,
		}
		if event.FromStatus != nil {
			item["from_status"] = *event.FromStatus
		}
		items[i] = item
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"items": items,
	})
}
