package tenant

import (
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identity is the authenticated staff member a request acts for.
type Identity struct {
	UserID   uuid.UUID
	Role     domain.Role
	VendorID uuid.UUID
	Approved bool
}

// Scope restricts a query to rows owned by vendorID. Every order and menu
// query goes through it; a row of another vendor is indistinguishable from a
// missing one.
func Scope(vendorID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("vendor_id = ?", vendorID)
	}
}
