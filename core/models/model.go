package models

import "time"

// TrainedModel represents the persisted registry record for one trained
// model. RepoRef points at the uploaded weights in the model hub; it is
// set by the upload pipeline once the push completes.
type TrainedModel struct {
	ID                  string
	UserID              string
	Name                string
	TrainingID          string // external provider run id this model was trained by
	Status              ModelStatus
	RepoRef             *string // hub repository id, e.g. "acme/lena-2025-08-27-10-15-02"
	ReadyForInference   bool
	ErrorMessage        *string
	TrainingCompletedAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ModelStatus represents the local lifecycle state of a trained model
type ModelStatus string

const (
	ModelStatusTraining  ModelStatus = "training"
	ModelStatusUploading ModelStatus = "uploading"
	ModelStatusReady     ModelStatus = "ready"
	ModelStatusFailed    ModelStatus = "failed"
)

// Uploaded reports whether the model's weights have landed in the hub.
func (m *TrainedModel) Uploaded() bool {
	return m != nil && m.RepoRef != nil && *m.RepoRef != ""
}

// ConfirmedReady reports whether the registry record proves a usable
// model: weights uploaded and verified for inference. A record in this
// state outranks anything the job queue or the provider claim.
func (m *TrainedModel) ConfirmedReady() bool {
	return m.Uploaded() && m.ReadyForInference
}
