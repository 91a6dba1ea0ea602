package status

import (
	"time"

	"dreamlens/core/models"
)

// Phase is the unified, user-facing training state
type Phase string

const (
	PhaseStarting  Phase = "starting"
	PhaseTraining  Phase = "training"
	PhaseUploading Phase = "uploading"
	PhaseCompleted Phase = "completed"
	PhaseFailed    Phase = "failed"
	// PhaseUnknown is only produced by the list path when resolving one
	// item blew up entirely; the resolver itself never returns it.
	PhaseUnknown Phase = "unknown"
)

// SourceAudit retains the raw source values behind a resolution, for
// debugging and for the reconciler's write decision. It is returned to
// callers but never persisted.
type SourceAudit struct {
	JobStatus         models.JobStatus   `json:"job_status"`
	ProviderSlot      ProviderSlot       `json:"provider_slot"`
	ProviderStatus    models.RunStatus   `json:"provider_status,omitempty"`
	ProviderError     string             `json:"provider_error,omitempty"`
	ModelStatus       models.ModelStatus `json:"model_status,omitempty"`
	RepoRef           string             `json:"repo_ref,omitempty"`
	ReadyForInference bool               `json:"ready_for_inference"`
}

// UnifiedStatus is the single authoritative answer for one run
type UnifiedStatus struct {
	JobID                string          `json:"job_id"`
	Name                 string          `json:"name"`
	Status               Phase           `json:"status"`
	Stage                string          `json:"stage"`
	Progress             int             `json:"progress"`
	EstimatedMinutesLeft int             `json:"estimated_minutes_left,omitempty"`
	Error                string          `json:"error,omitempty"`
	ErrorCategory        FailureCategory `json:"error_category,omitempty"`
	Logs                 string          `json:"logs,omitempty"`
	NeedsUpload          bool            `json:"needs_upload"`
	CanRetryUpload       bool            `json:"can_retry_upload"`
	LiveCheckNote        string          `json:"live_check_note,omitempty"`
	Audit                SourceAudit     `json:"source_audit"`
}

// Expected wall-clock duration of one fine-tune on the provider's fleet.
// Only feeds the progress/ETA heuristic, nothing depends on it being
// exact.
const defaultTrainDuration = 20 * time.Minute

// Resolver computes a UnifiedStatus from a snapshot. It does no I/O and
// is deterministic given the snapshot: elapsed-time heuristics measure
// against the snapshot's TakenAt, not the wall clock.
type Resolver struct {
	trainDuration time.Duration
}

// NewResolver creates a resolver with the default progress heuristics
func NewResolver() *Resolver {
	return &Resolver{trainDuration: defaultTrainDuration}
}

// Resolve applies the precedence rules to one snapshot.
//
// Order matters and first match wins:
//  1. registry-confirmed success overrides everything
//  2. provider succeeded, no artifact -> needs upload
//  3. provider succeeded, upload in flight
//  4. failure on either side (re-checking 1 before settling)
//  5. provider actively running
//  6. no usable provider signal -> fall back to the job record
func (r *Resolver) Resolve(snap Snapshot) UnifiedStatus {
	job := snap.Job
	u := UnifiedStatus{
		JobID: job.ID,
		Name:  job.ModelName,
		Audit: newAudit(snap),
	}
	if snap.ProviderSlot == ProviderSlotUnavailable {
		u.LiveCheckNote = "live provider check did not complete; status derived from persisted records"
	}

	// Rule 1: the registry proving a usable model outranks whatever the
	// job record or the provider claim. This is the self-healing
	// override for runs stuck reporting failure after a late upload.
	if snap.Model.ConfirmedReady() {
		return completed(u)
	}

	if snap.Provider != nil {
		switch snap.Provider.Status {
		case models.RunStatusSucceeded:
			return r.resolveTrainedAwaitingArtifact(u, snap, snap.Provider.Logs)
		case models.RunStatusFailed:
			return r.resolveFailure(u, snap, snap.Provider.Error, snap.Provider.Logs)
		}
	}

	// Rule 4, job side: a failed job record loses only to registry
	// evidence of later success, which resolveFailure re-checks.
	if job.Status == models.JobStatusFailed {
		var errText string
		if job.ErrorMessage != nil {
			errText = *job.ErrorMessage
		}
		return r.resolveFailure(u, snap, errText, providerLogs(snap))
	}

	if snap.Provider != nil {
		switch snap.Provider.Status {
		case models.RunStatusProcessing:
			return r.training(u, snap, snap.Provider.Logs)
		case models.RunStatusStarting:
			return starting(u, "Training starting")
		}
	}

	// Rule 6: no usable provider signal. The job record's own status is
	// the best remaining truth, with the same upload detection applied.
	switch job.Status {
	case models.JobStatusSucceeded:
		return r.resolveTrainedAwaitingArtifact(u, snap, "")
	case models.JobStatusRunning:
		return r.training(u, snap, "")
	default:
		return starting(u, "Waiting for training to start")
	}
}

// resolveTrainedAwaitingArtifact handles "training is done" from either
// source: rule 2/3 when the provider said so, rule 6's succeeded
// fallback otherwise.
func (r *Resolver) resolveTrainedAwaitingArtifact(u UnifiedStatus, snap Snapshot, logs string) UnifiedStatus {
	u.Logs = logs
	if !snap.Model.Uploaded() {
		// Rule 2: the one state this resolver exists to detect. The
		// provider finished but the follow-on upload never completed.
		u.Status = PhaseUploading
		u.Stage = "Training completed, ready for upload"
		u.Progress = 95
		u.NeedsUpload = true
		u.CanRetryUpload = true
		return u
	}
	// Rule 3: weights are on the hub, verification pending. Offering a
	// retry here would double-upload.
	u.Status = PhaseUploading
	u.Stage = "Training completed, upload in progress"
	u.Progress = 98
	return u
}

// resolveFailure settles a failure, classifying the error text and
// gating the retry-upload recovery action.
func (r *Resolver) resolveFailure(u UnifiedStatus, snap Snapshot, errText, logs string) UnifiedStatus {
	// Failure is never allowed to win over confirmed registry success.
	if snap.Model.ConfirmedReady() {
		return completed(u)
	}

	category, stage := Classify(errText)
	u.Status = PhaseFailed
	u.Stage = stage
	u.Progress = 0
	u.Error = errText
	u.ErrorCategory = category
	u.Logs = logs
	if category.UploadPhase() {
		// Training itself finished; only the registry push failed.
		u.NeedsUpload = true
		u.CanRetryUpload = true
	}
	return u
}

// training fills in rule 5's progress estimate: linear in elapsed time
// against the expected duration, capped below 90 so the bar never sits
// on "done" while the provider still reports processing.
func (r *Resolver) training(u UnifiedStatus, snap Snapshot, logs string) UnifiedStatus {
	start := snap.Job.CreatedAt
	if snap.Job.StartedAt != nil {
		start = *snap.Job.StartedAt
	}
	elapsed := snap.TakenAt.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}

	progress := 15 + int(75*elapsed/r.trainDuration)
	if progress > 90 {
		progress = 90
	}

	remaining := r.trainDuration - elapsed
	if remaining < time.Minute {
		remaining = time.Minute
	}

	u.Status = PhaseTraining
	u.Stage = "Training in progress"
	u.Progress = progress
	u.EstimatedMinutesLeft = int(remaining.Round(time.Minute) / time.Minute)
	u.Logs = logs
	return u
}

func starting(u UnifiedStatus, stage string) UnifiedStatus {
	u.Status = PhaseStarting
	u.Stage = stage
	u.Progress = 10
	return u
}

func completed(u UnifiedStatus) UnifiedStatus {
	u.Status = PhaseCompleted
	u.Stage = "Training completed and model uploaded"
	u.Progress = 100
	u.Error = ""
	u.ErrorCategory = ""
	u.NeedsUpload = false
	u.CanRetryUpload = false
	return u
}

func providerLogs(snap Snapshot) string {
	if snap.Provider != nil {
		return snap.Provider.Logs
	}
	return ""
}

func newAudit(snap Snapshot) SourceAudit {
	audit := SourceAudit{
		JobStatus:     snap.Job.Status,
		ProviderSlot:  snap.ProviderSlot,
		ProviderError: snap.ProviderError,
	}
	if snap.Provider != nil {
		audit.ProviderStatus = snap.Provider.Status
	}
	if snap.Model != nil {
		audit.ModelStatus = snap.Model.Status
		audit.ReadyForInference = snap.Model.ReadyForInference
		if snap.Model.RepoRef != nil {
			audit.RepoRef = *snap.Model.RepoRef
		}
	}
	return audit
}
