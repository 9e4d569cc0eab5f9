package middleware

import (
	"net/http"
	"strings"

	"github.com/Skotchmaster/restaurant_orders/pkg/tokens"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxVendorID = "vendor_id"
	CtxApproved = "approved"
)

// Authenticator trusts HS256 access tokens minted by the auth service and
// exposes their claims on the echo context.
type Authenticator struct {
	JWTSecret []byte
}

func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{JWTSecret: secret}
}

func (m *Authenticator) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil || claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
		if claims.Subject == "" || claims.VendorID == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject or vendor")
		}

		setUserContext(c, claims)
		return next(c)
	}
}

// RequireApproved blocks staff accounts the vendor has not approved yet.
// It must run after RequireAuth.
func (m *Authenticator) RequireApproved(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		approved, _ := c.Get(CtxApproved).(bool)
		if !approved {
			return echo.NewHTTPError(http.StatusForbidden, "account is waiting for vendor approval")
		}
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	if ck, err := c.Cookie("accessToken"); err == nil {
		return ck.Value
	}
	return ""
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, claims.Role)
	c.Set(CtxVendorID, claims.VendorID)
	c.Set(CtxApproved, claims.Approved)
}
