package models

import (
	"encoding/json"
	"time"

	"github.com/Skotchmaster/restaurant_orders/services/order/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EventOrderCreated       = "order_created"
	EventOrderItemsAdded    = "order_items_added"
	EventOrderStatusChanged = "order_status_changed"
)

// OutboxEvent is written in the same transaction as the order change it
// describes and relayed to the broker afterwards.
type OutboxEvent struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"     json:"id"`
	AggregateID uuid.UUID      `gorm:"type:uuid;not null;index" json:"aggregate_id"`
	VendorID    uuid.UUID      `gorm:"type:uuid;not null"       json:"vendor_id"`
	EventType   string         `gorm:"type:varchar(64);not null" json:"event_type"`
	Payload     datatypes.JSON `gorm:"not null"                 json:"payload"`
	Attempts    int            `gorm:"not null"                 json:"attempts"`
	LastError   *string        `json:"last_error,omitempty"`
	CreatedAt   time.Time      `gorm:"index"                    json:"created_at"`
	PublishedAt *time.Time     `gorm:"index"                    json:"published_at,omitempty"`
}

func (e *OutboxEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (OutboxEvent) TableName() string {
	return "order_outbox"
}

// EventEnvelope is the message body consumers receive.
type EventEnvelope struct {
	EventID    uuid.UUID `json:"event_id"`
	EventType  string    `json:"event_type"`
	OrderID    uuid.UUID `json:"order_id"`
	VendorID   uuid.UUID `json:"vendor_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

type EventLine struct {
	MenuItemID      uuid.UUID `json:"menu_item_id"`
	Name            string    `json:"name"`
	Quantity        int       `json:"quantity"`
	ItemTableNumber int       `json:"item_table_number"`
	Addons          []string  `json:"addons"`
	Notes           *string   `json:"notes,omitempty"`
}

type OrderSnapshot struct {
	TableNumber int             `json:"table_number"`
	Status      domain.Status   `json:"status"`
	Server      uuid.UUID       `json:"server"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []EventLine     `json:"items"`
}

type ItemsAdded struct {
	TableNumber int             `json:"table_number"`
	Status      domain.Status   `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Added       []EventLine     `json:"added"`
}

type StatusChanged struct {
	OldStatus     domain.Status `json:"old_status"`
	NewStatus     domain.Status `json:"new_status"`
	TableNumber   int           `json:"table_number"`
	PaymentMethod *string       `json:"payment_method,omitempty"`
}

func eventLines(items []OrderItem) []EventLine {
	out := make([]EventLine, len(items))
	for i, it := range items {
		out[i] = EventLine{
			MenuItemID:      it.MenuItemID,
			Name:            it.Name,
			Quantity:        it.Quantity,
			ItemTableNumber: it.ItemTableNumber,
			Addons:          it.Addons,
			Notes:           it.Notes,
		}
	}
	return out
}

func newEvent(eventType string, orderID, vendorID uuid.UUID, data any) (*OutboxEvent, error) {
	env := EventEnvelope{
		EventID:    uuid.New(),
		EventType:  eventType,
		OrderID:    orderID,
		VendorID:   vendorID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		ID:          env.EventID,
		AggregateID: orderID,
		VendorID:    vendorID,
		EventType:   eventType,
		Payload:     datatypes.JSON(payload),
	}, nil
}

func NewOrderCreatedEvent(o *Order) (*OutboxEvent, error) {
	return newEvent(EventOrderCreated, o.ID, o.VendorID, OrderSnapshot{
		TableNumber: o.TableNumber,
		Status:      o.Status,
		Server:      o.Server,
		TotalAmount: o.TotalAmount,
		Items:       eventLines(o.Items),
	})
}

// NewItemsAddedEvent carries only the new lines; the kitchen prints them as a
// separate ticket.
func NewItemsAddedEvent(o *Order, added []OrderItem) (*OutboxEvent, error) {
	return newEvent(EventOrderItemsAdded, o.ID, o.VendorID, ItemsAdded{
		TableNumber: o.TableNumber,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		Added:       eventLines(added),
	})
}

func NewStatusChangedEvent(o *Order, from domain.Status) (*OutboxEvent, error) {
	return newEvent(EventOrderStatusChanged, o.ID, o.VendorID, StatusChanged{
		OldStatus:     from,
		NewStatus:     o.Status,
		TableNumber:   o.TableNumber,
		PaymentMethod: o.PaymentMethod,
	})
}
