package status

import (
	"errors"
	"testing"

	"dreamlens/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileUpgradesFailedJobToSucceeded(t *testing.T) {
	jobs := &fakeJobStore{}
	writer := &fakeModelWriter{}
	rc := NewReconciler(jobs, writer)

	job := makeJob(models.JobStatusFailed, "r1")
	snap := Snapshot{Job: job, Model: makeReadyModel("r1"), ProviderSlot: ProviderSlotSkipped}
	u := NewResolver().Resolve(snap)
	require.Equal(t, PhaseCompleted, u.Status)

	require.NoError(t, rc.Reconcile(u, snap))

	require.Len(t, jobs.updates, 1)
	assert.Equal(t, models.JobStatusFailed, jobs.updates[0].from)
	assert.Equal(t, models.JobStatusSucceeded, jobs.updates[0].to)
	assert.Equal(t, reasonReconciledSucceeded, jobs.updates[0].reason)
}

func TestReconcileNoWriteWhenAlreadyConsistent(t *testing.T) {
	jobs := &fakeJobStore{}
	rc := NewReconciler(jobs, &fakeModelWriter{})

	job := makeJob(models.JobStatusSucceeded, "r1")
	snap := Snapshot{Job: job, Model: makeReadyModel("r1"), ProviderSlot: ProviderSlotSkipped}
	u := NewResolver().Resolve(snap)

	require.NoError(t, rc.Reconcile(u, snap))
	assert.Empty(t, jobs.updates)
}

func TestReconcileNeverDowngradesSucceededJob(t *testing.T) {
	// No-flap: a transient provider failure must not rewrite a job the
	// system once confirmed successful.
	jobs := &fakeJobStore{}
	writer := &fakeModelWriter{}
	rc := NewReconciler(jobs, writer)

	job := makeJob(models.JobStatusSucceeded, "r1")
	snap := Snapshot{
		Job:          job,
		Provider:     &models.ProviderRun{ID: "r1", Status: models.RunStatusFailed, Error: "flaky network"},
		ProviderSlot: ProviderSlotConsulted,
	}
	u := NewResolver().Resolve(snap)
	require.Equal(t, PhaseFailed, u.Status)

	require.NoError(t, rc.Reconcile(u, snap))

	assert.Empty(t, jobs.updates)
	assert.Empty(t, writer.sets)
}

func TestReconcileWritesConfirmedFailure(t *testing.T) {
	jobs := &fakeJobStore{}
	writer := &fakeModelWriter{}
	rc := NewReconciler(jobs, writer)

	job := makeJob(models.JobStatusRunning, "r1")
	model := &models.TrainedModel{ID: "model-1", TrainingID: "r1", Status: models.ModelStatusTraining}
	snap := Snapshot{
		Job:          job,
		Model:        model,
		Provider:     &models.ProviderRun{ID: "r1", Status: models.RunStatusFailed, Error: "CUDA out of memory"},
		ProviderSlot: ProviderSlotConsulted,
	}
	u := NewResolver().Resolve(snap)

	require.NoError(t, rc.Reconcile(u, snap))

	require.Len(t, jobs.updates, 1)
	assert.Equal(t, models.JobStatusFailed, jobs.updates[0].to)
	require.Len(t, writer.sets, 1)
	assert.Equal(t, modelStatusSet{id: "model-1", status: models.ModelStatusFailed}, writer.sets[0])
}

func TestReconcileIsIdempotent(t *testing.T) {
	// Once the job record is failed, re-running the same correction is a
	// no-op on the job side.
	jobs := &fakeJobStore{}
	rc := NewReconciler(jobs, &fakeModelWriter{})

	job := makeJob(models.JobStatusFailed, "r1")
	job.ErrorMessage = strPtr("CUDA out of memory")
	snap := Snapshot{Job: job, ProviderSlot: ProviderSlotUnavailable}
	u := NewResolver().Resolve(snap)
	require.Equal(t, PhaseFailed, u.Status)

	require.NoError(t, rc.Reconcile(u, snap))
	require.NoError(t, rc.Reconcile(u, snap))
	assert.Empty(t, jobs.updates)
}

func TestReconcileIgnoresNonTerminalStatuses(t *testing.T) {
	jobs := &fakeJobStore{}
	rc := NewReconciler(jobs, &fakeModelWriter{})

	job := makeJob(models.JobStatusRunning, "r1")
	snap := Snapshot{
		Job:          job,
		Provider:     &models.ProviderRun{ID: "r1", Status: models.RunStatusProcessing},
		ProviderSlot: ProviderSlotConsulted,
	}
	u := NewResolver().Resolve(snap)

	require.NoError(t, rc.Reconcile(u, snap))
	assert.Empty(t, jobs.updates)
}

func TestReconcilePropagatesWriteError(t *testing.T) {
	jobs := &fakeJobStore{failNext: errors.New("connection reset")}
	rc := NewReconciler(jobs, &fakeModelWriter{})

	job := makeJob(models.JobStatusFailed, "r1")
	snap := Snapshot{Job: job, Model: makeReadyModel("r1"), ProviderSlot: ProviderSlotSkipped}
	u := NewResolver().Resolve(snap)

	assert.Error(t, rc.Reconcile(u, snap))
}
