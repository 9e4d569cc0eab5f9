package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/Skotchmaster/restaurant_orders/pkg/db"
	"github.com/Skotchmaster/restaurant_orders/pkg/logging"
	middleware "github.com/Skotchmaster/restaurant_orders/pkg/middleware/auth"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type Deps struct {
	OrderHandler *OrderHTTP
	Auth         *middleware.Authenticator
	DB           *gorm.DB
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", ready(d.DB))

	orders := e.Group("/orders", d.Auth.RequireAuth, d.Auth.RequireApproved)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("/kitchen", d.OrderHandler.KitchenQueue)
	orders.GET("/billing", d.OrderHandler.BillingQueue)
	orders.GET("/completed", d.OrderHandler.CompletedReport)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("/:id/items", d.OrderHandler.AddItems)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateStatus)
}

func ready(gdb *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx, gdb); err != nil {
			logging.FromContext(ctx).Error("ready_error", "status", 503, "reason", "database unreachable", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	}
}
