package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Skotchmaster/restaurant_orders/pkg/logging"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/models"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/service"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/transport"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

type OrderHTTP struct {
	Svc *service.OrderService
}

func orderID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	id, err := GetIdentity(c)
	if err != nil {
		return identityError(l, "create_order", err)
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.CreateOrder(ctx, id, req)
	if err != nil {
		return fail(l, "create_order", err)
	}

	l.Info("create_order_success", "order_id", order.ID, "total", order.TotalAmount.String())
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) AddItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.add_items")

	id, err := GetIdentity(c)
	if err != nil {
		return identityError(l, "add_items", err)
	}

	oid, err := orderID(c)
	if err != nil {
		l.Warn("add_items_error", "status", 400, "reason", "invalid order id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req transport.AddItemsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_items_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, msg, err := h.Svc.AddItems(ctx, id, oid, req)
	if err != nil {
		return fail(l, "add_items", err)
	}

	l.Info("add_items_success", "order_id", order.ID, "added", len(req.Items))
	return c.JSON(http.StatusOK, transport.AddItemsResponse{Message: msg, Order: order})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, err := GetIdentity(c)
	if err != nil {
		return identityError(l, "get_order", err)
	}

	oid, err := orderID(c)
	if err != nil {
		l.Warn("get_order_error", "status", 400, "reason", "invalid order id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := h.Svc.GetOrder(ctx, id, oid)
	if err != nil {
		return fail(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := GetIdentity(c)
	if err != nil {
		return identityError(l, "update_status", err)
	}

	oid, err := orderID(c)
	if err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid order id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.UpdateStatus(ctx, id, oid, req)
	if err != nil {
		return fail(l, "update_status", err)
	}

	l.Info("update_status_success", "order_id", order.ID, "status", order.Status.String(), "role", id.Role.String())
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) KitchenQueue(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.kitchen_queue")

	id, err := GetIdentity(c)
	if err != nil {
		return identityError(l, "kitchen_queue", err)
	}

	orders, err := h.Svc.KitchenQueue(ctx, id)
	if err != nil {
		return fail(l, "kitchen_queue", err)
	}
	return c.JSON(http.StatusOK, listResponse(orders))
}

func (h *OrderHTTP) BillingQueue(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.billing_queue")

	id, err := GetIdentity(c)
	if err != nil {
		return identityError(l, "billing_queue", err)
	}

	includeCompleted := false
	if v := c.QueryParam("include_completed"); v != "" {
		includeCompleted, err = strconv.ParseBool(v)
		if err != nil {
			l.Warn("billing_queue_error", "status", 400, "reason", "invalid include_completed", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "include_completed must be a boolean")
		}
	}

	orders, err := h.Svc.BillingQueue(ctx, id, includeCompleted)
	if err != nil {
		return fail(l, "billing_queue", err)
	}
	return c.JSON(http.StatusOK, listResponse(orders))
}

func (h *OrderHTTP) CompletedReport(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.completed_report")

	id, err := GetIdentity(c)
	if err != nil {
		return identityError(l, "completed_report", err)
	}

	start, err := queryDate(c, "start")
	if err != nil {
		l.Warn("completed_report_error", "status", 400, "reason", "invalid start", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "start must be YYYY-MM-DD")
	}
	end, err := queryDate(c, "end")
	if err != nil {
		l.Warn("completed_report_error", "status", 400, "reason", "invalid end", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "end must be YYYY-MM-DD")
	}

	report, err := h.Svc.CompletedReport(ctx, id, start, end)
	if err != nil {
		return fail(l, "completed_report", err)
	}

	orders := report.Orders
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(http.StatusOK, transport.CompletedReportResponse{
		Count:      report.Count,
		TotalSales: report.TotalSales.StringFixed(2),
		Orders:     orders,
	})
}

func queryDate(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func listResponse(orders []models.Order) transport.OrderListResponse {
	if orders == nil {
		orders = []models.Order{}
	}
	return transport.OrderListResponse{Count: len(orders), Orders: orders}
}
