package repo

import (
	"context"

	"github.com/Skotchmaster/restaurant_orders/services/order/internal/models"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/tenant"
	"github.com/google/uuid"
)

// FindMenuItems returns the available, not deleted items of vendorID among
// ids. Unknown ids are silently absent from the result.
func (r *GormRepo) FindMenuItems(ctx context.Context, vendorID uuid.UUID, ids []uuid.UUID) ([]models.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var items []models.MenuItem
	err := r.DB.WithContext(ctx).
		Scopes(tenant.Scope(vendorID)).
		Where("id IN ? AND available = ?", ids, true).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
