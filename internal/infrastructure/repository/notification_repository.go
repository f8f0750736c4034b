package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
	"github.com/boostgram/transfer-service/internal/infrastructure/db/models"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// NotifyOrder creates a dashboard notification for the order's owner.
func (r *NotificationRepository) NotifyOrder(ctx context.Context, orderID, title, message, kind string) error {
	var userID string
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Pluck("user_id", &userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("get order owner: %w", err)
	}
	if userID == "" {
		return domain.ErrOrderNotFound
	}

	notification := models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      kind,
		ActionURL: "/dashboard/orders/" + orderID,
	}
	if err := r.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}
