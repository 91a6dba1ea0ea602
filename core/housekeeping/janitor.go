package housekeeping

import (
	"context"
	"log"
	"time"

	"dreamlens/core/models"
	"dreamlens/providers/huggingface"

	"github.com/robfig/cron/v3"
)

// RegistryHub lists and deletes model repositories on the hub
type RegistryHub interface {
	ListModelRepos(ctx context.Context) ([]huggingface.Repo, error)
	DeleteRepo(ctx context.Context, repoID string) error
}

// ModelLookup resolves which local model record references a hub repo
type ModelLookup interface {
	FindByRepoRef(repoRef string) (*models.TrainedModel, error)
}

// Trained repos are named "<model>-YYYY-MM-DD-HH-MM-SS"; the suffix lets
// the sweep age orphaned repos that have no local record at all.
const repoTimestampLayout = "2006-01-02-15-04-05"

const defaultGrace = 24 * time.Hour

// Janitor sweeps the hub for repositories that no usable model record
// references and deletes them once they are older than the grace window.
// It runs outside the status-resolution path and shares no state with it.
type Janitor struct {
	hub      RegistryHub
	models   ModelLookup
	grace    time.Duration
	schedule string
	dryRun   bool
	now      func() time.Time
}

// NewJanitor creates a janitor. schedule is a cron expression; grace is
// how long a dead repo is left alone before deletion (zero means 24h).
func NewJanitor(hub RegistryHub, models ModelLookup, schedule string, grace time.Duration, dryRun bool) *Janitor {
	if grace <= 0 {
		grace = defaultGrace
	}
	return &Janitor{
		hub:      hub,
		models:   models,
		grace:    grace,
		schedule: schedule,
		dryRun:   dryRun,
		now:      time.Now,
	}
}

// Start runs the sweep on its schedule until ctx is cancelled
func (j *Janitor) Start(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(j.schedule, func() {
		deleted, err := j.Sweep(ctx)
		if err != nil {
			log.Printf("registry sweep: %v", err)
			return
		}
		if deleted > 0 {
			log.Printf("registry sweep deleted %d repos", deleted)
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	<-ctx.Done()
	c.Stop()
	return nil
}

// Sweep runs one pass over the hub and returns how many repos were
// deleted (or would be, in dry-run mode). Per-repo failures are logged
// and skipped; one bad repo never aborts the pass.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	repos, err := j.hub.ListModelRepos(ctx)
	if err != nil {
		return 0, err
	}

	now := j.now()
	deleted := 0
	for _, repo := range repos {
		model, err := j.models.FindByRepoRef(repo.ID)
		if err != nil {
			log.Printf("registry sweep: lookup %s: %v", repo.ID, err)
			continue
		}

		if !j.eligible(repo, model, now) {
			continue
		}

		if j.dryRun {
			log.Printf("registry sweep: would delete %s", repo.ID)
			deleted++
			continue
		}

		if err := j.hub.DeleteRepo(ctx, repo.ID); err != nil {
			log.Printf("registry sweep: delete %s: %v", repo.ID, err)
			continue
		}
		deleted++
	}

	return deleted, nil
}

// eligible decides whether a repo is cleanup-eligible. Anything a live
// or in-flight model references is kept unconditionally; only failed or
// orphaned repos past the grace window go.
func (j *Janitor) eligible(repo huggingface.Repo, model *models.TrainedModel, now time.Time) bool {
	if model != nil {
		if model.ReadyForInference || model.Status == models.ModelStatusReady {
			return false
		}
		if model.Status == models.ModelStatusTraining || model.Status == models.ModelStatusUploading {
			return false
		}
		// Failed model: age by its completion (fall back to last touch).
		ref := model.UpdatedAt
		if model.TrainingCompletedAt != nil {
			ref = *model.TrainingCompletedAt
		}
		return now.Sub(ref) > j.grace
	}

	// Orphan: no record references this repo. Age it by the timestamp
	// embedded in its name; unparsable names are left alone.
	created, ok := parseRepoTimestamp(repo.ID)
	if !ok {
		return false
	}
	return now.Sub(created) > j.grace
}

func parseRepoTimestamp(repoID string) (time.Time, bool) {
	if len(repoID) < len(repoTimestampLayout) {
		return time.Time{}, false
	}
	suffix := repoID[len(repoID)-len(repoTimestampLayout):]
	t, err := time.Parse(repoTimestampLayout, suffix)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
