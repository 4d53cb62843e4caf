// Package pgvector implements the vector index port on Postgres with the
// pgvector extension.
package pgvector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docsense-ai/docsense/internal/domain"
	"github.com/docsense-ai/docsense/internal/index"
	"github.com/docsense-ai/docsense/internal/retry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"
)

const (
	pgUndefinedTable = "42P01"

	// Dimensions matches the vector(1536) column in chunk_vectors.
	Dimensions = 1536
)

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Index stores chunk vectors in the chunk_vectors table.
type Index struct {
	db       dbtx
	retryCfg retry.Config
}

func New(pool *pgxpool.Pool) *Index {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = 3
	cfg.InitialDelay = 200 * time.Millisecond
	cfg.MaxDelay = 2 * time.Second
	return &Index{db: pool, retryCfg: cfg}
}

func (i *Index) Upsert(ctx context.Context, records []index.Record) error {
	return retry.Do(ctx, i.retryCfg, func(ctx context.Context) error {
		for _, r := range records {
			_, err := i.db.Exec(ctx,
				`INSERT INTO chunk_vectors
					(id, document_id, source, sequence_index, content, embedding, created_at)
				 VALUES
					($1, $2, $3, $4, $5, $6, $7)
				 ON CONFLICT (id) DO UPDATE SET
					document_id = EXCLUDED.document_id,
					source = EXCLUDED.source,
					sequence_index = EXCLUDED.sequence_index,
					content = EXCLUDED.content,
					embedding = EXCLUDED.embedding`,
				r.ID,
				r.DocumentID,
				r.Source,
				r.SequenceIndex,
				r.Content,
				pgv.NewVector(r.Vector),
				time.Now().UTC(),
			)
			if err != nil {
				return mapPgError(err)
			}
		}
		return nil
	})
}

func (i *Index) Query(ctx context.Context, vector []float32, topK int, filter index.Filter) ([]index.Result, error) {
	topK = index.ClampTopK(topK)

	where, args := filterClause(filter, 2)
	args = append([]any{pgv.NewVector(vector)}, args...)
	args = append(args, topK)

	sql := fmt.Sprintf(
		`SELECT id, document_id, source, sequence_index, content,
			GREATEST(0, 1 - (embedding <=> $1))::float4 AS score
		 FROM chunk_vectors
		 %s
		 ORDER BY embedding <=> $1
		 LIMIT $%d`,
		where, len(args),
	)

	return retry.DoWithResult(ctx, i.retryCfg, func(ctx context.Context) ([]index.Result, error) {
		rows, err := i.db.Query(ctx, sql, args...)
		if err != nil {
			return nil, mapPgError(err)
		}
		defer rows.Close()

		var results []index.Result
		for rows.Next() {
			var r index.Result
			if err := rows.Scan(&r.ID, &r.DocumentID, &r.Source, &r.SequenceIndex, &r.Content, &r.Score); err != nil {
				return nil, mapPgError(err)
			}
			results = append(results, r)
		}
		if err := rows.Err(); err != nil {
			return nil, mapPgError(err)
		}
		return results, nil
	})
}

func (i *Index) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return retry.Do(ctx, i.retryCfg, func(ctx context.Context) error {
		_, err := i.db.Exec(ctx, `DELETE FROM chunk_vectors WHERE id = ANY($1)`, ids)
		return mapPgError(err)
	})
}

func (i *Index) DeleteByFilter(ctx context.Context, filter index.Filter) error {
	if filter.IsZero() {
		return i.DeleteAll(ctx)
	}

	where, args := filterClause(filter, 1)
	return retry.Do(ctx, i.retryCfg, func(ctx context.Context) error {
		_, err := i.db.Exec(ctx, `DELETE FROM chunk_vectors `+where, args...)
		return mapPgError(err)
	})
}

func (i *Index) DeleteAll(ctx context.Context) error {
	return retry.Do(ctx, i.retryCfg, func(ctx context.Context) error {
		_, err := i.db.Exec(ctx, `DELETE FROM chunk_vectors`)
		return mapPgError(err)
	})
}

func (i *Index) Stats(ctx context.Context) (*index.Stats, error) {
	return retry.DoWithResult(ctx, i.retryCfg, func(ctx context.Context) (*index.Stats, error) {
		var count int64
		if err := i.db.QueryRow(ctx, `SELECT COUNT(*) FROM chunk_vectors`).Scan(&count); err != nil {
			return nil, mapPgError(err)
		}
		return &index.Stats{VectorCount: count, Dimensions: Dimensions}, nil
	})
}

func filterClause(filter index.Filter, firstArg int) (string, []any) {
	var clauses []string
	var args []any

	n := firstArg
	if filter.DocumentID != "" {
		clauses = append(clauses, fmt.Sprintf("document_id = $%d", n))
		args = append(args, filter.DocumentID)
		n++
	}
	if filter.Source != "" {
		clauses = append(clauses, fmt.Sprintf("source = $%d", n))
		args = append(args, filter.Source)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// mapPgError translates Postgres failures: a missing chunk_vectors table is
// a distinct not-found condition, connection-class failures are transient.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUndefinedTable {
			return domain.ErrIndexNotFound
		}
		// Class 08: connection exception, 53: insufficient resources,
		// 57: operator intervention (e.g. failover shutdown).
		switch pgErr.Code[:2] {
		case "08", "53", "57":
			return &domain.TransientError{Err: err}
		}
		return err
	}

	if pgconn.SafeToRetry(err) {
		return &domain.TransientError{Err: err}
	}
	return err
}
