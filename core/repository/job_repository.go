package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dreamlens/core/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// JobRepository handles database operations for training jobs
type JobRepository struct {
	db *DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

// CreateJob creates a new training job in the database
func (r *JobRepository) CreateJob(job *models.TrainingJob) error {
	query := `
		INSERT INTO training_jobs (
			id, user_id, model_name, training_id, status, error_message,
			image_count, started_at, completed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`

	jobID := uuid.New()
	if job.ID != "" {
		var err error
		jobID, err = uuid.Parse(job.ID)
		if err != nil {
			return err
		}
	}

	_, err := r.db.Exec(query,
		jobID,
		job.UserID,
		job.ModelName,
		job.TrainingID,
		job.Status,
		job.ErrorMessage,
		job.ImageCount,
		job.StartedAt,
		job.CompletedAt,
	)
	if err != nil {
		return err
	}

	job.ID = jobID.String()
	job.CreatedAt = time.Now()

	return r.CreateJobEvent(job.ID, nil, job.Status, "job_created", nil)
}

const jobColumns = `
	id, user_id, model_name, training_id, status, error_message,
	image_count, started_at, completed_at, created_at, updated_at
`

// GetJob retrieves a training job by ID
func (r *JobRepository) GetJob(id string) (*models.TrainingJob, error) {
	query := `SELECT ` + jobColumns + ` FROM training_jobs WHERE id = $1`
	return r.scanJob(r.db.QueryRow(query, id))
}

// GetJobByTrainingID retrieves the job associated with an external run.
// Training ids are unique across jobs once set.
func (r *JobRepository) GetJobByTrainingID(trainingID string) (*models.TrainingJob, error) {
	query := `SELECT ` + jobColumns + ` FROM training_jobs WHERE training_id = $1`
	return r.scanJob(r.db.QueryRow(query, trainingID))
}

func (r *JobRepository) scanJob(row *sql.Row) (*models.TrainingJob, error) {
	var job models.TrainingJob
	var trainingID sql.NullString
	var errorMessage sql.NullString
	var startedAt sql.NullTime
	var completedAt sql.NullTime

	err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.ModelName,
		&trainingID,
		&job.Status,
		&errorMessage,
		&job.ImageCount,
		&startedAt,
		&completedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if trainingID.Valid {
		job.TrainingID = &trainingID.String
	}
	if errorMessage.Valid {
		job.ErrorMessage = &errorMessage.String
	}
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}

	return &job, nil
}

// ListJobsByUser lists a user's training jobs, newest first
func (r *JobRepository) ListJobsByUser(userID string, status *models.JobStatus, limit, offset int) ([]*models.TrainingJob, error) {
	query := `SELECT ` + jobColumns + ` FROM training_jobs WHERE user_id = $1`
	args := []interface{}{userID}
	argIndex := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.TrainingJob
	for rows.Next() {
		var job models.TrainingJob
		var trainingID sql.NullString
		var errorMessage sql.NullString
		var startedAt sql.NullTime
		var completedAt sql.NullTime

		err := rows.Scan(
			&job.ID,
			&job.UserID,
			&job.ModelName,
			&trainingID,
			&job.Status,
			&errorMessage,
			&job.ImageCount,
			&startedAt,
			&completedAt,
			&job.CreatedAt,
			&job.UpdatedAt,
		)
		if err != nil {
			continue
		}

		if trainingID.Valid {
			job.TrainingID = &trainingID.String
		}
		if errorMessage.Valid {
			job.ErrorMessage = &errorMessage.String
		}
		if startedAt.Valid {
			job.StartedAt = &startedAt.Time
		}
		if completedAt.Valid {
			job.CompletedAt = &completedAt.Time
		}

		jobs = append(jobs, &job)
	}

	return jobs, rows.Err()
}

// UpdateJobStatus updates job status atomically with event logging.
// The update is idempotent: writing the same status twice leaves the row
// unchanged, so concurrent reconcilers converge on the same value.
func (r *JobRepository) UpdateJobStatus(jobID string, fromStatus, toStatus models.JobStatus, reason string, errorMessage *string, completedAt *time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE training_jobs
		SET status = $1,
		    error_message = COALESCE($2, error_message),
		    completed_at = COALESCE($3, completed_at),
		    updated_at = NOW()
		WHERE id = $4
	`
	_, err = tx.Exec(updateQuery, toStatus, errorMessage, completedAt, jobID)
	if err != nil {
		return err
	}

	if err := createJobEventTx(tx, jobID, &fromStatus, toStatus, reason, nil); err != nil {
		return err
	}

	return tx.Commit()
}

// CreateJobEvent creates a job event
func (r *JobRepository) CreateJobEvent(jobID string, fromStatus *models.JobStatus, toStatus models.JobStatus, reason string, meta map[string]interface{}) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := createJobEventTx(tx, jobID, fromStatus, toStatus, reason, meta); err != nil {
		return err
	}

	return tx.Commit()
}

func createJobEventTx(tx *sql.Tx, jobID string, fromStatus *models.JobStatus, toStatus models.JobStatus, reason string, meta map[string]interface{}) error {
	query := `
		INSERT INTO job_events (job_id, from_status, to_status, reason, meta_json)
		VALUES ($1, $2, $3, $4, $5)
	`

	var fromStatusStr *string
	if fromStatus != nil {
		s := string(*fromStatus)
		fromStatusStr = &s
	}

	metaJSON := "{}"
	if meta != nil {
		if b, err := json.Marshal(meta); err == nil {
			metaJSON = string(b)
		}
	}

	_, err := tx.Exec(query, jobID, fromStatusStr, toStatus, reason, metaJSON)
	return err
}
