package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docsense-ai/docsense/internal/domain"
)

// BatchJobRepository persists batch jobs with their per-item results as
// jsonb. It implements the jobs.Store interface.
type BatchJobRepository struct {
	db dbtx
}

func NewBatchJobRepository(pool *pgxpool.Pool) *BatchJobRepository {
	return &BatchJobRepository{db: pool}
}

func NewBatchJobRepositoryWithTx(tx pgx.Tx) *BatchJobRepository {
	return &BatchJobRepository{db: tx}
}

func (r *BatchJobRepository) Create(ctx context.Context, job *domain.BatchJob) error {
	items, err := json.Marshal(job.Items)
	if err != nil {
		return fmt.Errorf("failed to encode job items: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO batch_jobs (id, state, length, items, created_at, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.State, job.Length, items, job.CreatedAt, job.StartedAt, job.FinishedAt,
	)
	return err
}

func (r *BatchJobRepository) Get(ctx context.Context, id string) (*domain.BatchJob, error) {
	var job domain.BatchJob
	var items []byte
	err := r.db.QueryRow(ctx,
		`SELECT id, state, length, items, created_at, started_at, finished_at
		 FROM batch_jobs WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.State, &job.Length, &items, &job.CreatedAt, &job.StartedAt, &job.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(items, &job.Items); err != nil {
		return nil, fmt.Errorf("failed to decode job items: %w", err)
	}
	return &job, nil
}

func (r *BatchJobRepository) Update(ctx context.Context, job *domain.BatchJob) error {
	items, err := json.Marshal(job.Items)
	if err != nil {
		return fmt.Errorf("failed to encode job items: %w", err)
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE batch_jobs
		 SET state = $1, items = $2, started_at = $3, finished_at = $4
		 WHERE id = $5`,
		job.State, items, job.StartedAt, job.FinishedAt, job.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}
