package status

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"dreamlens/core/billing"
	"dreamlens/core/models"
	"dreamlens/core/repository"
)

// ErrJobNotFound is returned when the requested training job does not exist
var ErrJobNotFound = errors.New("training job not found")

// JobFinder reads training jobs from the job record store
type JobFinder interface {
	GetJob(id string) (*models.TrainingJob, error)
	ListJobsByUser(userID string, status *models.JobStatus, limit, offset int) ([]*models.TrainingJob, error)
}

// Service orchestrates one status resolution: aggregate, resolve,
// reconcile. Each call is an independent, short-lived unit of work; the
// service holds no per-run state.
type Service struct {
	jobs       JobFinder
	aggregator *Aggregator
	resolver   *Resolver
	reconciler *Reconciler
}

// NewService creates a new status service. reconciler may be nil to
// disable corrective writes (reads then have no side effects at all).
func NewService(jobs JobFinder, aggregator *Aggregator, resolver *Resolver, reconciler *Reconciler) *Service {
	return &Service{
		jobs:       jobs,
		aggregator: aggregator,
		resolver:   resolver,
		reconciler: reconciler,
	}
}

// ModelStatusView is the endpoint-facing shape: the unified status plus
// denormalized display fields.
type ModelStatusView struct {
	UnifiedStatus
	ImageCount       int       `json:"image_count"`
	EstimatedCredits int       `json:"estimated_credits"`
	CreatedAt        time.Time `json:"created_at"`
}

// StatusSummary aggregates counts over one page of resolved items
type StatusSummary struct {
	Active                int `json:"active"`
	Completed             int `json:"completed"`
	Failed                int `json:"failed"`
	TotalEstimatedCredits int `json:"total_estimated_credits"`
}

// StatusPage is one page of resolved statuses with summary counts
type StatusPage struct {
	Items   []ModelStatusView `json:"items"`
	Summary StatusSummary     `json:"summary"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}

// JobStatus resolves the unified status of one training job
func (s *Service) JobStatus(ctx context.Context, jobID string) (*ModelStatusView, error) {
	job, err := s.jobs.GetJob(jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	view := s.resolveJob(ctx, job)
	return &view, nil
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// UserStatuses resolves one page of a user's training jobs. Items are
// resolved concurrently and independently: one run failing to resolve
// degrades that item only, never the page.
func (s *Service) UserStatuses(ctx context.Context, userID string, limit, offset int) (*StatusPage, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	jobs, err := s.jobs.ListJobsByUser(userID, nil, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]ModelStatusView, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job *models.TrainingJob) {
			defer wg.Done()
			items[i] = s.safeResolve(ctx, job)
		}(i, job)
	}
	wg.Wait()

	page := &StatusPage{Items: items, Limit: limit, Offset: offset}
	for _, item := range items {
		switch item.Status {
		case PhaseCompleted:
			page.Summary.Completed++
		case PhaseFailed:
			page.Summary.Failed++
		case PhaseUnknown:
			// degraded item, counted nowhere
		default:
			page.Summary.Active++
		}
		page.Summary.TotalEstimatedCredits += item.EstimatedCredits
	}

	return page, nil
}

// resolveJob runs the aggregate -> resolve -> reconcile sequence. The
// reconciler's write is a deliberate side effect of this read path; its
// failure is logged and the computed status is still returned.
func (s *Service) resolveJob(ctx context.Context, job *models.TrainingJob) ModelStatusView {
	snap := s.aggregator.Snapshot(ctx, job)
	unified := s.resolver.Resolve(snap)

	if s.reconciler != nil {
		if err := s.reconciler.Reconcile(unified, snap); err != nil {
			log.Printf("reconcile job %s: %v", job.ID, err)
		}
	}

	return s.view(job, unified)
}

// safeResolve shields the list path from a misbehaving collaborator: a
// panic resolving one item degrades that item and the batch continues.
func (s *Service) safeResolve(ctx context.Context, job *models.TrainingJob) (view ModelStatusView) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("resolving job %s panicked: %v", job.ID, r)
			view = s.degradedView(job, fmt.Sprintf("%v", r))
		}
	}()
	return s.resolveJob(ctx, job)
}

func (s *Service) view(job *models.TrainingJob, unified UnifiedStatus) ModelStatusView {
	return ModelStatusView{
		UnifiedStatus:    unified,
		ImageCount:       job.ImageCount,
		EstimatedCredits: billing.EstimateTrainingCredits(job.ImageCount),
		CreatedAt:        job.CreatedAt,
	}
}

func (s *Service) degradedView(job *models.TrainingJob, reason string) ModelStatusView {
	unified := UnifiedStatus{
		JobID:         job.ID,
		Name:          job.ModelName,
		Status:        PhaseUnknown,
		Stage:         "Status temporarily unavailable",
		LiveCheckNote: reason,
		Audit:         SourceAudit{JobStatus: job.Status, ProviderSlot: ProviderSlotUnavailable},
	}
	return s.view(job, unified)
}
