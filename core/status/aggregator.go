package status

import (
	"context"
	"log"
	"time"

	"dreamlens/core/models"
)

// ModelStore reads trained model records from the registry
type ModelStore interface {
	FindByTrainingID(trainingID string) (*models.TrainedModel, error)
}

// ProviderClient reports the live state of a training run
type ProviderClient interface {
	GetTraining(ctx context.Context, trainingID string) (*models.ProviderRun, error)
}

// ProviderSlot records how the provider portion of a snapshot was filled
type ProviderSlot string

const (
	// ProviderSlotConsulted means the live call answered
	ProviderSlotConsulted ProviderSlot = "consulted"
	// ProviderSlotSkipped means the registry already proved a terminal
	// success, so no live call was made
	ProviderSlotSkipped ProviderSlot = "skipped"
	// ProviderSlotUnavailable means the live call timed out or failed
	ProviderSlotUnavailable ProviderSlot = "unavailable"
	// ProviderSlotNone means the job never reached the provider
	ProviderSlotNone ProviderSlot = "none"
)

// Snapshot is the point-in-time view of one training run across the job
// queue, the registry, and the provider. Missing pieces are represented
// explicitly so the resolver never sees a partial view: Model == nil is
// the "no registry record" marker, and ProviderSlot says exactly why
// Provider may be nil.
type Snapshot struct {
	Job           *models.TrainingJob
	Model         *models.TrainedModel
	Provider      *models.ProviderRun
	ProviderSlot  ProviderSlot
	ProviderError string
	TakenAt       time.Time
}

const defaultProviderTimeout = 5 * time.Second

// Aggregator assembles status snapshots. It is strictly read-only.
type Aggregator struct {
	modelStore ModelStore
	provider   ProviderClient
	timeout    time.Duration
	now        func() time.Time
}

// NewAggregator creates a new aggregator. timeout bounds the live
// provider call; zero means the default of a few seconds.
func NewAggregator(modelStore ModelStore, provider ProviderClient, timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	return &Aggregator{
		modelStore: modelStore,
		provider:   provider,
		timeout:    timeout,
		now:        time.Now,
	}
}

// Snapshot assembles the three-source view for one job. Collaborator
// failures degrade the corresponding slot; they never propagate out.
func (a *Aggregator) Snapshot(ctx context.Context, job *models.TrainingJob) Snapshot {
	snap := Snapshot{
		Job:          job,
		ProviderSlot: ProviderSlotNone,
		TakenAt:      a.now(),
	}

	if job.TrainingID == nil || *job.TrainingID == "" {
		return snap
	}
	trainingID := *job.TrainingID

	model, err := a.modelStore.FindByTrainingID(trainingID)
	if err != nil {
		// Degrade to the "no record" marker; the job-record fallback
		// still produces an answer.
		log.Printf("registry lookup for training %s failed: %v", trainingID, err)
		model = nil
	}
	snap.Model = model

	// A registry-confirmed success is terminal; the provider cannot add
	// anything to it, so skip the live call.
	if model.ConfirmedReady() {
		snap.ProviderSlot = ProviderSlotSkipped
		return snap
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	run, err := a.provider.GetTraining(callCtx, trainingID)
	if err != nil {
		snap.ProviderSlot = ProviderSlotUnavailable
		snap.ProviderError = err.Error()
		return snap
	}

	snap.Provider = run
	snap.ProviderSlot = ProviderSlotConsulted
	return snap
}
