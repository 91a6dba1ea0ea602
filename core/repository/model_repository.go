package repository

import (
	"database/sql"

	"dreamlens/core/models"

	"github.com/google/uuid"
)

// ModelRepository handles database operations for trained model records
type ModelRepository struct {
	db *DB
}

// NewModelRepository creates a new model repository
func NewModelRepository(db *DB) *ModelRepository {
	return &ModelRepository{db: db}
}

const modelColumns = `
	id, user_id, name, training_id, status, repo_ref, ready_for_inference,
	error_message, training_completed_at, created_at, updated_at
`

// CreateModel creates a new trained model record
func (r *ModelRepository) CreateModel(m *models.TrainedModel) error {
	query := `
		INSERT INTO trained_models (
			id, user_id, name, training_id, status, repo_ref, ready_for_inference,
			error_message, training_completed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`

	modelID := uuid.New()
	if m.ID != "" {
		var err error
		modelID, err = uuid.Parse(m.ID)
		if err != nil {
			return err
		}
	}

	_, err := r.db.Exec(query,
		modelID,
		m.UserID,
		m.Name,
		m.TrainingID,
		m.Status,
		m.RepoRef,
		m.ReadyForInference,
		m.ErrorMessage,
		m.TrainingCompletedAt,
	)
	if err != nil {
		return err
	}

	m.ID = modelID.String()
	return nil
}

// FindByTrainingID retrieves the model record for an external run.
// Returns (nil, nil) when no record exists: an orphaned job is a
// legitimate state, not an error.
func (r *ModelRepository) FindByTrainingID(trainingID string) (*models.TrainedModel, error) {
	query := `SELECT ` + modelColumns + ` FROM trained_models WHERE training_id = $1`
	return r.scanModel(r.db.QueryRow(query, trainingID))
}

// FindByRepoRef retrieves the model record referencing a hub repository.
// Returns (nil, nil) when nothing references it.
func (r *ModelRepository) FindByRepoRef(repoRef string) (*models.TrainedModel, error) {
	query := `SELECT ` + modelColumns + ` FROM trained_models WHERE repo_ref = $1`
	return r.scanModel(r.db.QueryRow(query, repoRef))
}

func (r *ModelRepository) scanModel(row *sql.Row) (*models.TrainedModel, error) {
	var m models.TrainedModel
	var repoRef sql.NullString
	var errorMessage sql.NullString
	var trainingCompletedAt sql.NullTime

	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.TrainingID,
		&m.Status,
		&repoRef,
		&m.ReadyForInference,
		&errorMessage,
		&trainingCompletedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if repoRef.Valid {
		m.RepoRef = &repoRef.String
	}
	if errorMessage.Valid {
		m.ErrorMessage = &errorMessage.String
	}
	if trainingCompletedAt.Valid {
		m.TrainingCompletedAt = &trainingCompletedAt.Time
	}

	return &m, nil
}

// SetModelStatus updates a model's local lifecycle status
func (r *ModelRepository) SetModelStatus(id string, status models.ModelStatus, errorMessage *string) error {
	query := `
		UPDATE trained_models
		SET status = $1,
		    error_message = COALESCE($2, error_message),
		    updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(query, status, errorMessage, id)
	return err
}
