package status

// Shared fakes for the status package tests. They stand in for the three
// external collaborators: job record store, model registry, and training
// provider.

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"dreamlens/core/models"
	"dreamlens/core/repository"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func makeJob(status models.JobStatus, trainingID string) *models.TrainingJob {
	job := &models.TrainingJob{
		ID:         "job-1",
		UserID:     "user-1",
		ModelName:  "lena",
		Status:     status,
		ImageCount: 10,
		CreatedAt:  time.Date(2025, 8, 27, 10, 0, 0, 0, time.UTC),
	}
	if trainingID != "" {
		job.TrainingID = &trainingID
	}
	return job
}

func makeReadyModel(trainingID string) *models.TrainedModel {
	return &models.TrainedModel{
		ID:                "model-1",
		UserID:            "user-1",
		Name:              "lena",
		TrainingID:        trainingID,
		Status:            models.ModelStatusReady,
		RepoRef:           strPtr("acme/lena-2025-08-27-10-15-02"),
		ReadyForInference: true,
	}
}

type fakeModelStore struct {
	models map[string]*models.TrainedModel
	err    error
}

func (f *fakeModelStore) FindByTrainingID(trainingID string) (*models.TrainedModel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.models[trainingID], nil
}

type fakeProvider struct {
	runs    map[string]*models.ProviderRun
	err     error
	delay   time.Duration
	panicOn string
	calls   int32
}

func (f *fakeProvider) GetTraining(ctx context.Context, trainingID string) (*models.ProviderRun, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.panicOn == trainingID {
		panic("provider client blew up")
	}
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if run, ok := f.runs[trainingID]; ok {
		return run, nil
	}
	return nil, fmt.Errorf("training %s not found", trainingID)
}

func (f *fakeProvider) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

type jobUpdate struct {
	jobID  string
	from   models.JobStatus
	to     models.JobStatus
	reason string
}

type fakeJobStore struct {
	jobs     map[string]*models.TrainingJob
	list     []*models.TrainingJob
	listErr  error
	updates  []jobUpdate
	failNext error
}

func (f *fakeJobStore) GetJob(id string) (*models.TrainingJob, error) {
	if job, ok := f.jobs[id]; ok {
		return job, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeJobStore) ListJobsByUser(userID string, status *models.JobStatus, limit, offset int) ([]*models.TrainingJob, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeJobStore) UpdateJobStatus(jobID string, fromStatus, toStatus models.JobStatus, reason string, errorMessage *string, completedAt *time.Time) error {
	if f.failNext != nil {
		return f.failNext
	}
	f.updates = append(f.updates, jobUpdate{jobID: jobID, from: fromStatus, to: toStatus, reason: reason})
	return nil
}

type modelStatusSet struct {
	id     string
	status models.ModelStatus
}

type fakeModelWriter struct {
	sets []modelStatusSet
	err  error
}

func (f *fakeModelWriter) SetModelStatus(id string, status models.ModelStatus, errorMessage *string) error {
	if f.err != nil {
		return f.err
	}
	f.sets = append(f.sets, modelStatusSet{id: id, status: status})
	return nil
}
