package transport

import (
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/models"
	"github.com/google/uuid"
)

type OrderItemRequest struct {
	MenuItemID      uuid.UUID `json:"menu_item_id"`
	Quantity        int       `json:"quantity"`
	ItemTableNumber int       `json:"item_table_number"`
	Addons          []string  `json:"addons"`
	Notes           *string   `json:"notes"`
}

type CreateOrderRequest struct {
	TableNumber int                `json:"table_number"`
	Items       []OrderItemRequest `json:"items"`
}

type AddItemsRequest struct {
	Items []OrderItemRequest `json:"items"`
}

type UpdateStatusRequest struct {
	Status        string  `json:"status"`
	PaymentMethod *string `json:"payment_method"`
}

type AddItemsResponse struct {
	Message string        `json:"message"`
	Order   *models.Order `json:"order"`
}

type OrderListResponse struct {
	Count  int            `json:"count"`
	Orders []models.Order `json:"orders"`
}

type CompletedReportResponse struct {
	Count      int            `json:"count"`
	TotalSales string         `json:"total_sales"`
	Orders     []models.Order `json:"orders"`
}
