package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/donnegro/comercial/backend-go/internal/domain"
	"github.com/donnegro/comercial/backend-go/internal/repository"
)

type importRunRepository struct {
	db *DB
}

var _ repository.ImportRunRepository = (*importRunRepository)(nil)

func NewImportRunRepository(db *DB) *importRunRepository {
	return &importRunRepository{db: db}
}

// CreateRun inserts run and fills in its ID and start time.
func (r *importRunRepository) CreateRun(ctx context.Context, run *domain.ImportRun) error {
	query := `
		INSERT INTO import_runs (
			mode, source_name, status, total_rows, started_at
		) VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, started_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		run.Mode, run.SourceName, run.Status, run.Total,
	).Scan(&run.ID, &run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}
	return nil
}

func (r *importRunRepository) FinishRun(ctx context.Context, run *domain.ImportRun, rowErrors []domain.RowError) error {
	if run.CompletedAt == nil {
		now := time.Now()
		run.CompletedAt = &now
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE import_runs
			SET status = $1, succeeded_rows = $2, failed_rows = $3,
			    completed_at = $4, error_message = NULLIF($5, '')
			WHERE id = $6
		`
		if _, err := tx.ExecContext(ctx, query,
			run.Status, run.Succeeded, run.Failed,
			run.CompletedAt, run.ErrorMessage, run.ID,
		); err != nil {
			return fmt.Errorf("failed to update import run %d: %w", run.ID, err)
		}

		if len(rowErrors) == 0 {
			return nil
		}

		stmt, err := tx.PreparexContext(ctx, `
			INSERT INTO import_run_errors (import_run_id, line, name, product_id, message)
			VALUES ($1, $2, $3, NULLIF($4, 0), $5)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, re := range rowErrors {
			if _, err := stmt.ExecContext(ctx, run.ID, re.Line, re.Name, re.ProductID, re.Message); err != nil {
				return fmt.Errorf("failed to insert row error: %w", err)
			}
		}
		return nil
	})
}

func (r *importRunRepository) ListRuns(ctx context.Context, limit int) ([]domain.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, mode, source_name, status, total_rows, succeeded_rows, failed_rows,
		       started_at, completed_at, COALESCE(error_message, '') AS error_message
		FROM import_runs
		ORDER BY started_at DESC, id DESC
		LIMIT $1
	`

	runs := []domain.ImportRun{}
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	return runs, nil
}
