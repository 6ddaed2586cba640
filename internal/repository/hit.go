package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/pageserve/internal/domain"
)

// psql is the statement builder configured for PostgreSQL dollar placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// HitRepository handles database operations for served requests.
type HitRepository struct {
	pool *pgxpool.Pool
	psql sq.StatementBuilderType
}

// NewHitRepository creates a new HitRepository.
func NewHitRepository(pool *pgxpool.Pool) *HitRepository {
	return &HitRepository{
		pool: pool,
		psql: psql,
	}
}

// Record inserts a single hit.
func (r *HitRepository) Record(ctx context.Context, hit domain.Hit) error {
	servedAt := hit.ServedAt
	if servedAt.IsZero() {
		servedAt = time.Now().UTC()
	}

	query, args, err := r.psql.
		Insert("page_hits").
		Columns("method", "path", "status", "bytes", "duration_ms", "remote_addr", "served_at").
		Values(hit.Method, hit.Path, hit.Status, hit.Bytes, hit.DurationMs, hit.RemoteAddr, servedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert hit: %w", err)
	}

	return nil
}

// Summary aggregates hits served at or after since, grouped by path and status.
func (r *HitRepository) Summary(ctx context.Context, since time.Time) ([]domain.HitSummary, error) {
	query, args, err := r.psql.
		Select("path", "status", "COUNT(*)", "COALESCE(SUM(bytes), 0)::BIGINT", "MAX(served_at)").
		From("page_hits").
		Where(sq.GtOrEq{"served_at": since}).
		GroupBy("path", "status").
		OrderBy("path", "status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hit summary: %w", err)
	}
	defer rows.Close()

	var results []domain.HitSummary
	for rows.Next() {
		var s domain.HitSummary
		if err := rows.Scan(&s.Path, &s.Status, &s.Count, &s.TotalBytes, &s.LastSeen); err != nil {
			return nil, fmt.Errorf("scan hit summary: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hit summary: %w", err)
	}

	return results, nil
}
