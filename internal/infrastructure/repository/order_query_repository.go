package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
	"github.com/boostgram/transfer-service/internal/infrastructure/db/models"
)

// recentProgressLimit bounds how many progress rows an order lookup loads.
// Long runs write one row per batch, so orders can accumulate thousands.
const recentProgressLimit = 50

type OrderQueryRepository struct {
	db *gorm.DB
}

func NewOrderQueryRepository(db *gorm.DB) *OrderQueryRepository {
	return &OrderQueryRepository{db: db}
}

func (r *OrderQueryRepository) GetByID(ctx context.Context, orderID string) (*domain.Order, []domain.ProgressEntry, error) {
	var row models.Order

	err := r.db.WithContext(ctx).
		Preload("Progress", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_progress.created_at DESC").Limit(recentProgressLimit)
		}).
		First(&row, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrOrderNotFound
		}
		return nil, nil, fmt.Errorf("get order by id: %w", err)
	}

	// Rows come back newest-first because of the limit; callers expect
	// chronological order.
	entries := make([]domain.ProgressEntry, len(row.Progress))
	for i, p := range row.Progress {
		entries[len(row.Progress)-1-i] = domain.ProgressEntry{
			Count:     p.Count,
			Message:   p.Message,
			CreatedAt: p.CreatedAt,
		}
	}

	order := &domain.Order{
		ID:              row.ID,
		UserID:          row.UserID,
		SourceGroupLink: row.SourceGroupLink,
		TargetGroupLink: row.TargetGroupLink,
		TargetCount:     row.Quantity,
		CurrentCount:    row.CurrentCount,
		Status:          domain.OrderStatus(row.Status),
		CreatedAt:       row.CreatedAt,
		StartedAt:       row.StartedAt,
		CompletedAt:     row.CompletedAt,
	}

	return order, entries, nil
}
