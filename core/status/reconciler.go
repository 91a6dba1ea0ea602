package status

import (
	"time"

	"dreamlens/core/models"
)

// JobWriter applies corrective status updates to the job record store
type JobWriter interface {
	UpdateJobStatus(jobID string, fromStatus, toStatus models.JobStatus, reason string, errorMessage *string, completedAt *time.Time) error
}

// ModelWriter applies corrective status updates to the model registry
type ModelWriter interface {
	SetModelStatus(id string, status models.ModelStatus, errorMessage *string) error
}

// Reconciler writes resolved truth back to persisted state when the two
// disagree. It only acts on terminal outcomes, and only in the safe
// direction: a persisted failure may be upgraded to success, a persisted
// success is never downgraded. Writes are idempotent, so concurrent
// callers resolving the same run converge on the same row.
type Reconciler struct {
	jobs   JobWriter
	models ModelWriter
	now    func() time.Time
}

// NewReconciler creates a new reconciler
func NewReconciler(jobs JobWriter, models ModelWriter) *Reconciler {
	return &Reconciler{jobs: jobs, models: models, now: time.Now}
}

const (
	reasonReconciledSucceeded = "reconciled_to_succeeded"
	reasonReconciledFailed    = "reconciled_to_failed"
)

// Reconcile compares the resolved status against the snapshot's persisted
// records and corrects drift. A write failure is returned for logging but
// must not fail the read that triggered it.
func (rc *Reconciler) Reconcile(u UnifiedStatus, snap Snapshot) error {
	job := snap.Job

	switch u.Status {
	case PhaseCompleted:
		if job.Status == models.JobStatusSucceeded {
			return nil
		}
		now := rc.now()
		return rc.jobs.UpdateJobStatus(job.ID, job.Status, models.JobStatusSucceeded, reasonReconciledSucceeded, nil, &now)

	case PhaseFailed:
		// No-flap: once the system confirmed success, a transient
		// provider hiccup must never rewrite it as failure.
		if job.Status == models.JobStatusSucceeded {
			return nil
		}

		var errMsg *string
		if u.Error != "" {
			msg := u.Error
			errMsg = &msg
		}

		if job.Status != models.JobStatusFailed {
			now := rc.now()
			if err := rc.jobs.UpdateJobStatus(job.ID, job.Status, models.JobStatusFailed, reasonReconciledFailed, errMsg, &now); err != nil {
				return err
			}
		}

		// Mirror the correction onto a model record still claiming to
		// train. Ready records are left alone under the same asymmetry.
		if snap.Model != nil && snap.Model.Status == models.ModelStatusTraining {
			return rc.models.SetModelStatus(snap.Model.ID, models.ModelStatusFailed, errMsg)
		}
		return nil
	}

	// Non-terminal outcomes are observations, not corrections.
	return nil
}
