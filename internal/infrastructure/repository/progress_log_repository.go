package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProgressLogRepository is the write-heavy side of progress tracking. It
// bypasses the ORM: the engine appends one row per batch boundary and the
// dashboard polls the order row, so both statements stay on the pool.
type ProgressLogRepository struct {
	pool *pgxpool.Pool
}

func NewProgressLogRepository(pool *pgxpool.Pool) *ProgressLogRepository {
	return &ProgressLogRepository{pool: pool}
}

func (r *ProgressLogRepository) AppendSnapshot(ctx context.Context, orderID string, completed int, message string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO order_progress (order_id, count, message, created_at)
VALUES ($1, $2, $3, NOW())
`, orderID, completed, message)
	if err != nil {
		return fmt.Errorf("append progress snapshot: %w", err)
	}
	return nil
}

func (r *ProgressLogRepository) UpdateCurrentCount(ctx context.Context, orderID string, completed int) error {
	_, err := r.pool.Exec(ctx, `
UPDATE orders SET current_count = $2, updated_at = NOW() WHERE id = $1
`, orderID, completed)
	if err != nil {
		return fmt.Errorf("update order current count: %w", err)
	}
	return nil
}
