package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/restaurant_orders/services/order/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendingEvents returns up to limit unpublished events that have been tried
// fewer than maxAttempts times, oldest first.
func (r *GormRepo) PendingEvents(ctx context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	var events []models.OutboxEvent
	err := r.DB.WithContext(ctx).
		Where("published_at IS NULL AND attempts < ?", maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *GormRepo) MarkPublished(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Update("published_at", time.Now().UTC()).Error
}

func (r *GormRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.DB.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
		}).Error
}
