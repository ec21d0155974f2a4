package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BRANOPODCAST/ReviewScope/internal/domain"
)

// ErrBatchNotFound is returned when no stored batch matches the ID.
var ErrBatchNotFound = errors.New("analysis batch not found")

// StoredBatch is one persisted analysis batch row.
type StoredBatch struct {
	BatchID      string             `db:"batch_id"      json:"batchId"`
	Status       domain.BatchStatus `db:"status"        json:"status"`
	ReviewCount  int                `db:"review_count"  json:"reviewCount"`
	Result       []byte             `db:"result"        json:"-"`
	ErrorMessage sql.NullString     `db:"error_message" json:"-"`
	CreatedAt    time.Time          `db:"created_at"    json:"createdAt"`
	UpdatedAt    time.Time          `db:"updated_at"    json:"updatedAt"`
}

// AnalysisResult decodes the stored result envelope. Nil until the batch
// completes.
func (b *StoredBatch) AnalysisResult() (*domain.AnalysisResult, error) {
	if len(b.Result) == 0 {
		return nil, nil
	}
	var result domain.AnalysisResult
	if err := json.Unmarshal(b.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored result: %w", err)
	}
	return &result, nil
}

// BatchRepository handles database operations for analysis batches.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository creates a new batch repository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create inserts a new batch in the pending state. Re-analyzing an existing
// batch ID resets it to pending.
func (r *BatchRepository) Create(ctx context.Context, batchID string, reviewCount int) error {
	query := `
		INSERT INTO analysis_batches (batch_id, status, review_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (batch_id) DO UPDATE
		SET status = $2, review_count = $3, result = NULL,
		    error_message = NULL, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, batchID, domain.BatchPending, reviewCount); err != nil {
		return fmt.Errorf("failed to create analysis batch: %w", err)
	}
	return nil
}

// MarkAnalyzing transitions a batch to the analyzing state.
func (r *BatchRepository) MarkAnalyzing(ctx context.Context, batchID string) error {
	return r.setStatus(ctx, batchID, domain.BatchAnalyzing)
}

// Complete stores the result envelope and transitions the batch to
// completed.
func (r *BatchRepository) Complete(ctx context.Context, batchID string, result *domain.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode analysis result: %w", err)
	}

	query := `
		UPDATE analysis_batches
		SET status = $2, result = $3, updated_at = NOW()
		WHERE batch_id = $1
	`

	res, err := r.db.ExecContext(ctx, query, batchID, domain.BatchCompleted, payload)
	if err != nil {
		return fmt.Errorf("failed to complete analysis batch: %w", err)
	}
	return checkAffected(res, batchID)
}

// Fail records the failure reason and transitions the batch to failed.
func (r *BatchRepository) Fail(ctx context.Context, batchID, reason string) error {
	query := `
		UPDATE analysis_batches
		SET status = $2, error_message = $3, updated_at = NOW()
		WHERE batch_id = $1
	`

	res, err := r.db.ExecContext(ctx, query, batchID, domain.BatchFailed, reason)
	if err != nil {
		return fmt.Errorf("failed to mark analysis batch failed: %w", err)
	}
	return checkAffected(res, batchID)
}

// Get retrieves a stored batch by ID.
func (r *BatchRepository) Get(ctx context.Context, batchID string) (*StoredBatch, error) {
	var batch StoredBatch
	query := `
		SELECT batch_id, status, review_count, result, error_message,
		       created_at, updated_at
		FROM analysis_batches
		WHERE batch_id = $1
	`

	if err := r.db.GetContext(ctx, &batch, query, batchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to get analysis batch: %w", err)
	}
	return &batch, nil
}

func (r *BatchRepository) setStatus(ctx context.Context, batchID string, status domain.BatchStatus) error {
	query := `
		UPDATE analysis_batches
		SET status = $2, updated_at = NOW()
		WHERE batch_id = $1
	`

	res, err := r.db.ExecContext(ctx, query, batchID, status)
	if err != nil {
		return fmt.Errorf("failed to update batch status: %w", err)
	}
	return checkAffected(res, batchID)
}

func checkAffected(res sql.Result, batchID string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
	}
	return nil
}
