package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"dreamlens/core/status"

	"github.com/gorilla/mux"
)

// UploadRequester hands a retry request to the upload pipeline boundary
type UploadRequester interface {
	RequestUpload(jobID string) error
}

// UploadHandler handles user-triggered upload retries
type UploadHandler struct {
	service   *status.Service
	requester UploadRequester
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(service *status.Service, requester UploadRequester) *UploadHandler {
	return &UploadHandler{service: service, requester: requester}
}

// RetryUpload handles POST /v1/models/{id}/retry-upload. The retry is
// gated on the freshly resolved status: only a run positively identified
// as trained-but-not-uploaded may be retried.
func (h *UploadHandler) RetryUpload(w http.ResponseWriter, r *http.Request) {
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

	if !view.CanRetryUpload {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":  "upload retry not applicable in the current state",
			"status": view.Status,
			"stage":  view.Stage,
		})
		return
	}

	if err := h.requester.RequestUpload(jobID); err != nil {
		http.Error(w, "Failed to request upload: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":     jobID,
		"status": "upload_requested",
	})
}
