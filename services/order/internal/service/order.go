package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/restaurant_orders/pkg/logging"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/domain"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/models"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/repo"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/tenant"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/transport"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxUpdateAttempts bounds how often a mutation is re-applied after losing a
// version race.
const maxUpdateAttempts = 3

type OrderService struct {
	Repo   *repo.GormRepo
	Totals *TotalCalculator
}

func NewOrderService(r *repo.GormRepo) *OrderService {
	return &OrderService{
		Repo:   r,
		Totals: &TotalCalculator{Prices: &PriceResolver{Catalog: r}},
	}
}

// Report is the completed-orders summary for a date range.
type Report struct {
	Count      int
	TotalSales decimal.Decimal
	Orders     []models.Order
}

func buildLines(req []transport.OrderItemRequest, firstPosition int) ([]models.OrderItem, error) {
	if len(req) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrInvalidInput)
	}

	lines := make([]models.OrderItem, 0, len(req))
	for i, it := range req {
		if it.MenuItemID == uuid.Nil {
			return nil, fmt.Errorf("%w: items[%d]: menu_item_id required", ErrInvalidInput, i)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: items[%d]: quantity must be > 0", ErrInvalidInput, i)
		}
		if it.ItemTableNumber <= 0 {
			return nil, fmt.Errorf("%w: items[%d]: item_table_number must be > 0", ErrInvalidInput, i)
		}

		addons := it.Addons
		if addons == nil {
			addons = []string{}
		}
		lines = append(lines, models.OrderItem{
			Position:        firstPosition + i,
			MenuItemID:      it.MenuItemID,
			Quantity:        it.Quantity,
			ItemTableNumber: it.ItemTableNumber,
			Addons:          addons,
			Notes:           it.Notes,
		})
	}
	return lines, nil
}

func (svc *OrderService) load(ctx context.Context, vendorID, orderID uuid.UUID) (*models.Order, error) {
	order, err := svc.Repo.GetOrder(ctx, vendorID, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	return order, err
}

// retry runs op until it stops failing with repo.ErrStaleOrder, at most
// maxUpdateAttempts times.
func (svc *OrderService) retry(ctx context.Context, orderID uuid.UUID, op func() error) error {
	for attempt := 1; ; attempt++ {
		err := op()
		if !errors.Is(err, repo.ErrStaleOrder) {
			return err
		}
		if attempt == maxUpdateAttempts {
			return fmt.Errorf("%w: order %s was modified concurrently", ErrConflict, orderID)
		}
		logging.FromContext(ctx).Debug("order_version_conflict", "order_id", orderID, "attempt", attempt)
	}
}

func (svc *OrderService) CreateOrder(ctx context.Context, id tenant.Identity, req transport.CreateOrderRequest) (*models.Order, error) {
	if req.TableNumber <= 0 {
		return nil, fmt.Errorf("%w: table_number must be > 0", ErrInvalidInput)
	}
	lines, err := buildLines(req.Items, 0)
	if err != nil {
		return nil, err
	}

	total, err := svc.Totals.Total(ctx, id.VendorID, lines)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:          uuid.New(),
		VendorID:    id.VendorID,
		TableNumber: req.TableNumber,
		Items:       lines,
		Status:      domain.StatusKitchen,
		Server:      id.UserID,
		TotalAmount: total,
		Version:     1,
	}

	event, err := models.NewOrderCreatedEvent(order)
	if err != nil {
		return nil, err
	}
	if err := svc.Repo.CreateOrder(ctx, order, event); err != nil {
		return nil, err
	}
	return order, nil
}

// AddItems appends lines to an open order, adds their cost to the running
// total and sends the order back to the kitchen unless it is already there.
func (svc *OrderService) AddItems(ctx context.Context, id tenant.Identity, orderID uuid.UUID, req transport.AddItemsRequest) (*models.Order, string, error) {
	if _, err := buildLines(req.Items, 0); err != nil {
		return nil, "", err
	}

	err := svc.retry(ctx, orderID, func() error {
		order, err := svc.load(ctx, id.VendorID, orderID)
		if err != nil {
			return err
		}
		if order.Status.Closed() {
			return fmt.Errorf("%w: cannot add items to an already %s order",
				ErrInvalidState, strings.ToLower(order.Status.String()))
		}

		lines, err := buildLines(req.Items, len(order.Items))
		if err != nil {
			return err
		}
		subtotal, err := svc.Totals.Total(ctx, id.VendorID, lines)
		if err != nil {
			return err
		}

		version := order.Version
		order.TotalAmount = order.TotalAmount.Add(subtotal)
		if order.Status != domain.StatusKitchen && order.Status != domain.StatusPending {
			order.Status = domain.StatusKitchen
		}

		event, err := models.NewItemsAddedEvent(order, lines)
		if err != nil {
			return err
		}
		return svc.Repo.ApplyUpdate(ctx, repo.OrderUpdate{
			VendorID:    id.VendorID,
			OrderID:     orderID,
			Version:     version,
			Status:      order.Status,
			TotalAmount: order.TotalAmount,
			NewItems:    lines,
			Event:       event,
		})
	})
	if err != nil {
		return nil, "", err
	}

	order, err := svc.load(ctx, id.VendorID, orderID)
	if err != nil {
		return nil, "", err
	}
	return order, fmt.Sprintf("%d item(s) added", len(req.Items)), nil
}

// UpdateStatus moves an order to the requested status if the caller's role
// may set it. Sequence is not enforced. Completed orders may only be changed
// by the vendor owner.
func (svc *OrderService) UpdateStatus(ctx context.Context, id tenant.Identity, orderID uuid.UUID, req transport.UpdateStatusRequest) (*models.Order, error) {
	target, err := domain.ParseStatus(req.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.PaymentMethod != nil && !target.Closed() {
		return nil, fmt.Errorf("%w: payment_method is only accepted when billing or completing", ErrInvalidInput)
	}
	if !id.Role.MaySet(target) {
		return nil, fmt.Errorf("%w: role not authorized to set status to %s", ErrForbidden, target)
	}

	err = svc.retry(ctx, orderID, func() error {
		order, err := svc.load(ctx, id.VendorID, orderID)
		if err != nil {
			return err
		}
		if !id.Role.MayAmend(order.Status) {
			return fmt.Errorf("%w: cannot modify a completed order", ErrInvalidState)
		}

		from := order.Status
		version := order.Version
		order.Status = target
		if req.PaymentMethod != nil {
			order.PaymentMethod = req.PaymentMethod
		}

		event, err := models.NewStatusChangedEvent(order, from)
		if err != nil {
			return err
		}
		return svc.Repo.ApplyUpdate(ctx, repo.OrderUpdate{
			VendorID:      id.VendorID,
			OrderID:       orderID,
			Version:       version,
			Status:        target,
			TotalAmount:   order.TotalAmount,
			PaymentMethod: req.PaymentMethod,
			Event:         event,
		})
	})
	if err != nil {
		return nil, err
	}

	return svc.load(ctx, id.VendorID, orderID)
}

func (svc *OrderService) GetOrder(ctx context.Context, id tenant.Identity, orderID uuid.UUID) (*models.Order, error) {
	return svc.load(ctx, id.VendorID, orderID)
}

// KitchenQueue lists orders waiting on the kitchen, oldest first.
func (svc *OrderService) KitchenQueue(ctx context.Context, id tenant.Identity) ([]models.Order, error) {
	return svc.Repo.ListByStatus(ctx, id.VendorID, domain.KitchenQueue, "created_at ASC")
}

// BillingQueue lists orders ready to be billed, grouped by table. Billed
// orders never appear; completed ones only when includeCompleted is set.
func (svc *OrderService) BillingQueue(ctx context.Context, id tenant.Identity, includeCompleted bool) ([]models.Order, error) {
	statuses := domain.BillingQueue
	if includeCompleted {
		statuses |= domain.NewStatusSet(domain.StatusCompleted)
	}
	return svc.Repo.ListByStatus(ctx, id.VendorID, statuses, "table_number ASC, created_at ASC")
}

// CompletedReport summarises billed and completed orders whose last update
// falls within [start, end] calendar days (UTC). Either bound may be nil.
func (svc *OrderService) CompletedReport(ctx context.Context, id tenant.Identity, start, end *time.Time) (*Report, error) {
	var from, to *time.Time
	if start != nil {
		d := startOfDay(*start)
		from = &d
	}
	if end != nil {
		d := startOfDay(*end).AddDate(0, 0, 1)
		to = &d
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, fmt.Errorf("%w: start date is after end date", ErrInvalidInput)
	}

	orders, err := svc.Repo.ListClosed(ctx, id.VendorID, from, to)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalAmount)
	}
	return &Report{Count: len(orders), TotalSales: total, Orders: orders}, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
