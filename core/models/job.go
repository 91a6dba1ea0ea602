package models

import "time"

// TrainingJob represents a queued request to train a personalized model
// from a user's uploaded photo set. It is the internal work-queue record;
// the external provider run it maps to is tracked via TrainingID.
type TrainingJob struct {
	ID           string
	UserID       string
	ModelName    string
	TrainingID   *string // external provider run id; nil if the job never reached the provider
	Status       JobStatus
	ErrorMessage *string
	ImageCount   int
	CreatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
	UpdatedAt    time.Time
}

// JobStatus represents the current status of a training job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status is final
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}
