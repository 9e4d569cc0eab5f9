package httpserver

import (
	"errors"

	middleware "github.com/Skotchmaster/restaurant_orders/pkg/middleware/auth"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/domain"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/tenant"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var (
	errUnauthorized = errors.New("unauthorized")
	errUnknownRole  = errors.New("unknown role")
)

// GetIdentity reads the identity RequireAuth stored on the context.
func GetIdentity(c echo.Context) (tenant.Identity, error) {
	userID, err := uuidFromContext(c, middleware.CtxUserID)
	if err != nil {
		return tenant.Identity{}, err
	}
	vendorID, err := uuidFromContext(c, middleware.CtxVendorID)
	if err != nil {
		return tenant.Identity{}, err
	}

	roleName, _ := c.Get(middleware.CtxRole).(string)
	role, err := domain.ParseRole(roleName)
	if err != nil {
		return tenant.Identity{}, errUnknownRole
	}

	approved, _ := c.Get(middleware.CtxApproved).(bool)
	return tenant.Identity{
		UserID:   userID,
		Role:     role,
		VendorID: vendorID,
		Approved: approved,
	}, nil
}

func uuidFromContext(c echo.Context, key string) (uuid.UUID, error) {
	s, ok := c.Get(key).(string)
	if !ok || s == "" {
		return uuid.Nil, errUnauthorized
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errUnauthorized
	}
	return id, nil
}
