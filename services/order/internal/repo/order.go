package repo

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/restaurant_orders/services/order/internal/domain"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/models"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrStaleOrder means the order changed between read and write.
var ErrStaleOrder = errors.New("stale order version")

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OutboxEvent{},
	)
}

func itemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *GormRepo) orders(ctx context.Context, vendorID uuid.UUID) *gorm.DB {
	return r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Scopes(tenant.Scope(vendorID)).
		Preload("Items", itemsByPosition)
}

// CreateOrder stores the order with its lines and the creation event.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order, event *models.OutboxEvent) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return tx.Create(event).Error
	})
}

// GetOrder returns gorm.ErrRecordNotFound when the order does not exist or
// belongs to another vendor.
func (r *GormRepo) GetOrder(ctx context.Context, vendorID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.orders(ctx, vendorID).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderUpdate is a versioned change to one order.
type OrderUpdate struct {
	VendorID      uuid.UUID
	OrderID       uuid.UUID
	Version       int64
	Status        domain.Status
	TotalAmount   decimal.Decimal
	PaymentMethod *string
	NewItems      []models.OrderItem
	Event         *models.OutboxEvent
}

// ApplyUpdate writes u only if the stored version still equals u.Version,
// bumping it by one. New lines and the event go into the same transaction.
// ErrStaleOrder is returned when the guard matched no row.
func (r *GormRepo) ApplyUpdate(ctx context.Context, u OrderUpdate) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{
			"status":       u.Status,
			"total_amount": u.TotalAmount,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   time.Now().UTC(),
		}
		if u.PaymentMethod != nil {
			fields["payment_method"] = *u.PaymentMethod
		}

		res := tx.Model(&models.Order{}).
			Scopes(tenant.Scope(u.VendorID)).
			Where("id = ? AND version = ?", u.OrderID, u.Version).
			Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleOrder
		}

		if len(u.NewItems) > 0 {
			for i := range u.NewItems {
				u.NewItems[i].OrderID = u.OrderID
			}
			if err := tx.Create(&u.NewItems).Error; err != nil {
				return err
			}
		}

		if u.Event != nil {
			return tx.Create(u.Event).Error
		}
		return nil
	})
}

// ListByStatus returns the vendor's orders whose status is in statuses,
// sorted by orderBy.
func (r *GormRepo) ListByStatus(ctx context.Context, vendorID uuid.UUID, statuses domain.StatusSet, orderBy string) ([]models.Order, error) {
	var orders []models.Order
	err := r.orders(ctx, vendorID).
		Where("status IN ?", statuses.Names()).
		Order(orderBy).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListClosed returns billed and completed orders last updated in
// [from, to), newest first. A nil bound is open.
func (r *GormRepo) ListClosed(ctx context.Context, vendorID uuid.UUID, from, to *time.Time) ([]models.Order, error) {
	q := r.orders(ctx, vendorID).Where("status IN ?", domain.ClosedStatuses.Names())
	if from != nil {
		q = q.Where("updated_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("updated_at < ?", *to)
	}

	var orders []models.Order
	if err := q.Order("updated_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
