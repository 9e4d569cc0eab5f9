package models

import (
	"time"

	"github.com/Skotchmaster/restaurant_orders/services/order/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"                               json:"id"`
	VendorID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_orders_vendor_status" json:"vendor_id"`
	TableNumber   int             `gorm:"not null"                                           json:"table_number"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"     json:"items"`
	Status        domain.Status   `gorm:"type:varchar(16);not null;index:idx_orders_vendor_status" json:"status"`
	Server        uuid.UUID       `gorm:"type:uuid;not null"                                 json:"server"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null"                        json:"total_amount"`
	PaymentMethod *string         `gorm:"type:varchar(32)"                                   json:"payment_method,omitempty"`
	Version       int64           `gorm:"not null"                                           json:"version"`
	CreatedAt     time.Time       `gorm:"index"                                              json:"created_at"`
	UpdatedAt     time.Time       `gorm:"index"                                              json:"updated_at"`
}

// OrderItem is one line of an order. Name and UnitPrice are copied from the
// menu when the line is added and never change afterwards.
type OrderItem struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primaryKey"         json:"id"`
	OrderID         uuid.UUID                   `gorm:"type:uuid;not null;index"     json:"-"`
	Position        int                         `gorm:"not null"                     json:"-"`
	MenuItemID      uuid.UUID                   `gorm:"type:uuid;not null"           json:"menu_item_id"`
	Name            string                      `gorm:"not null"                     json:"name"`
	Quantity        int                         `gorm:"not null;check:quantity > 0"  json:"quantity"`
	ItemTableNumber int                         `gorm:"not null"                     json:"item_table_number"`
	UnitPrice       decimal.Decimal             `gorm:"type:numeric(12,2);not null"  json:"unit_price"`
	Addons          datatypes.JSONSlice[string] `json:"addons"`
	Notes           *string                     `json:"notes,omitempty"`
}

// MenuItem is owned by the catalog; this service only reads it.
type MenuItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"         json:"id"`
	VendorID  uuid.UUID       `gorm:"type:uuid;not null;index"     json:"vendor_id"`
	Name      string          `gorm:"not null"                     json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"price"`
	Available bool            `gorm:"not null"                     json:"available"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (Order) TableName() string {
	return "orders"
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (MenuItem) TableName() string {
	return "menu_items"
}
