package upload

import (
	"errors"

	"dreamlens/core/models"
)

// JobStore is the slice of the job repository the requester needs
type JobStore interface {
	GetJob(id string) (*models.TrainingJob, error)
	CreateJobEvent(jobID string, fromStatus *models.JobStatus, toStatus models.JobStatus, reason string, meta map[string]interface{}) error
}

// ModelStore is the slice of the model repository the requester needs
type ModelStore interface {
	FindByTrainingID(trainingID string) (*models.TrainedModel, error)
	SetModelStatus(id string, status models.ModelStatus, errorMessage *string) error
}

// ErrNoTraining is returned when the job never reached the provider, so
// there are no weights anywhere to upload.
var ErrNoTraining = errors.New("job has no provider training to upload")

// Requester records a user-triggered retry of the weight upload. The
// upload pipeline itself runs outside this service and picks the model
// up from the uploading state; this boundary only marks intent.
type Requester struct {
	jobs   JobStore
	models ModelStore
}

// NewRequester creates a new upload requester
func NewRequester(jobs JobStore, models ModelStore) *Requester {
	return &Requester{jobs: jobs, models: models}
}

// RequestUpload marks the job's model for re-upload and records the
// request in the job's event trail
func (r *Requester) RequestUpload(jobID string) error {
	job, err := r.jobs.GetJob(jobID)
	if err != nil {
		return err
	}
	if job.TrainingID == nil || *job.TrainingID == "" {
		return ErrNoTraining
	}

	model, err := r.models.FindByTrainingID(*job.TrainingID)
	if err != nil {
		return err
	}
	if model != nil {
		if err := r.models.SetModelStatus(model.ID, models.ModelStatusUploading, nil); err != nil {
			return err
		}
	}

	meta := map[string]interface{}{"training_id": *job.TrainingID}
	return r.jobs.CreateJobEvent(job.ID, nil, job.Status, "upload_requested", meta)
}
