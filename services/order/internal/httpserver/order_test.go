package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Skotchmaster/restaurant_orders/pkg/db"
	"github.com/Skotchmaster/restaurant_orders/pkg/logging"
	middleware "github.com/Skotchmaster/restaurant_orders/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/restaurant_orders/pkg/middleware/logging"
	"github.com/Skotchmaster/restaurant_orders/pkg/tokens"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/models"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/repo"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/service"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/transport"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	e      *echo.Echo
	db     *gorm.DB
	vendor uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := &repo.GormRepo{DB: gdb}
	require.NoError(t, r.Migrate(context.Background()))

	e := echo.New()
	e.Use(loggingmw.RequestLogger(logging.NewWithWriter(&bytes.Buffer{}, "debug")))
	Register(e, &Deps{
		OrderHandler: &OrderHTTP{Svc: service.NewOrderService(r)},
		Auth:         middleware.NewAuthenticator(testSecret),
		DB:           gdb,
	})

	return &testEnv{e: e, db: gdb, vendor: uuid.New()}
}

func (env *testEnv) token(t *testing.T, role string, vendor uuid.UUID, approved bool) string {
	t.Helper()
	tok, err := tokens.SignAccessToken(tokens.AccessClaims{
		Role:     role,
		VendorID: vendor.String(),
		Approved: approved,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)
	require.NoError(t, err)
	return tok
}

func (env *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) menuItem(t *testing.T, name, price string) models.MenuItem {
	t.Helper()
	m := models.MenuItem{VendorID: env.vendor, Name: name, Price: decimal.RequireFromString(price), Available: true}
	require.NoError(t, env.db.Create(&m).Error)
	return m
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestOrderFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	a := env.menuItem(t, "Paneer Tikka", "100")
	b := env.menuItem(t, "Roti", "50")
	server := env.token(t, "Server", env.vendor, true)
	kitchen := env.token(t, "Kitchen", env.vendor, true)
	billing := env.token(t, "Billing", env.vendor, true)

	rec := env.do(http.MethodPost, "/orders", server, transport.CreateOrderRequest{
		TableNumber: 5,
		Items:       []transport.OrderItemRequest{{MenuItemID: a.ID, Quantity: 2, ItemTableNumber: 5, Addons: []string{"extra chutney"}}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Order](t, rec)
	assert.Equal(t, "Kitchen", created.Status.String())
	assert.True(t, decimal.NewFromInt(200).Equal(created.TotalAmount))
	assert.Equal(t, "Paneer Tikka", created.Items[0].Name)

	rec = env.do(http.MethodPost, "/orders/"+created.ID.String()+"/items", server, transport.AddItemsRequest{
		Items: []transport.OrderItemRequest{{MenuItemID: b.ID, Quantity: 1, ItemTableNumber: 5}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	added := decode[transport.AddItemsResponse](t, rec)
	assert.Equal(t, "1 item(s) added", added.Message)
	assert.True(t, decimal.NewFromInt(250).Equal(added.Order.TotalAmount))
	assert.Equal(t, "Kitchen", added.Order.Status.String())

	rec = env.do(http.MethodGet, "/orders/kitchen", kitchen, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	queue := decode[transport.OrderListResponse](t, rec)
	require.Equal(t, 1, queue.Count)
	assert.Equal(t, created.ID, queue.Orders[0].ID)

	rec = env.do(http.MethodPatch, "/orders/"+created.ID.String()+"/status", kitchen, transport.UpdateStatusRequest{Status: "Ready"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Ready", decode[models.Order](t, rec).Status.String())

	rec = env.do(http.MethodPatch, "/orders/"+created.ID.String()+"/status", server, transport.UpdateStatusRequest{Status: "Billed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "role not authorized to set status to Billed")

	rec = env.do(http.MethodGet, "/orders/billing", billing, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[transport.OrderListResponse](t, rec).Count)

	cash := "cash"
	rec = env.do(http.MethodPatch, "/orders/"+created.ID.String()+"/status", billing, transport.UpdateStatusRequest{Status: "Completed", PaymentMethod: &cash})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodGet, "/orders/billing", billing, nil)
	assert.Equal(t, 0, decode[transport.OrderListResponse](t, rec).Count)
	rec = env.do(http.MethodGet, "/orders/billing?include_completed=true", billing, nil)
	assert.Equal(t, 1, decode[transport.OrderListResponse](t, rec).Count)

	rec = env.do(http.MethodPost, "/orders/"+created.ID.String()+"/items", server, transport.AddItemsRequest{
		Items: []transport.OrderItemRequest{{MenuItemID: b.ID, Quantity: 1, ItemTableNumber: 5}},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already completed")

	today := time.Now().UTC().Format(dateLayout)
	rec = env.do(http.MethodGet, "/orders/completed?start="+today+"&end="+today, billing, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[transport.CompletedReportResponse](t, rec)
	assert.Equal(t, 1, report.Count)
	assert.Equal(t, "250.00", report.TotalSales)
	require.NotNil(t, report.Orders[0].PaymentMethod)
	assert.Equal(t, "cash", *report.Orders[0].PaymentMethod)
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	a := env.menuItem(t, "Upma", "40")
	server := env.token(t, "Server", env.vendor, true)
	owner := env.token(t, "Vendor", env.vendor, true)
	stranger := env.token(t, "Vendor", uuid.New(), true)

	rec := env.do(http.MethodPost, "/orders", server, transport.CreateOrderRequest{
		TableNumber: 2,
		Items:       []transport.OrderItemRequest{{MenuItemID: a.ID, Quantity: 1, ItemTableNumber: 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	orderPath := "/orders/" + decode[models.Order](t, rec).ID.String()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"no table", http.MethodPost, "/orders", server, transport.CreateOrderRequest{Items: []transport.OrderItemRequest{{MenuItemID: a.ID, Quantity: 1, ItemTableNumber: 1}}}, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/orders", server, "not an object", http.StatusBadRequest},
		{"unknown menu item", http.MethodPost, "/orders", server, transport.CreateOrderRequest{TableNumber: 1, Items: []transport.OrderItemRequest{{MenuItemID: uuid.New(), Quantity: 1, ItemTableNumber: 1}}}, http.StatusUnprocessableEntity},
		{"bad order id", http.MethodGet, "/orders/not-a-uuid", server, nil, http.StatusBadRequest},
		{"missing order", http.MethodGet, "/orders/" + uuid.NewString(), server, nil, http.StatusNotFound},
		{"other vendor", http.MethodGet, orderPath, stranger, nil, http.StatusNotFound},
		{"own vendor", http.MethodGet, orderPath, owner, nil, http.StatusOK},
		{"unknown status", http.MethodPatch, orderPath + "/status", owner, transport.UpdateStatusRequest{Status: "Lost"}, http.StatusBadRequest},
		{"bad include_completed", http.MethodGet, "/orders/billing?include_completed=maybe", owner, nil, http.StatusBadRequest},
		{"bad date", http.MethodGet, "/orders/completed?start=01-02-2025", owner, nil, http.StatusBadRequest},
		{"reversed dates", http.MethodGet, "/orders/completed?start=2025-02-02&end=2025-02-01", owner, nil, http.StatusBadRequest},
		{"no token", http.MethodGet, "/orders/kitchen", "", nil, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/orders/kitchen", "abc.def.ghi", nil, http.StatusUnauthorized},
		{"unapproved", http.MethodGet, "/orders/kitchen", env.token(t, "Kitchen", env.vendor, false), nil, http.StatusForbidden},
		{"unknown role", http.MethodGet, "/orders/kitchen", env.token(t, "Cashier", env.vendor, true), nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		rec := env.do(tt.method, tt.path, tt.token, tt.body)
		assert.Equal(t, tt.want, rec.Code, "%s: %s", tt.name, strings.TrimSpace(rec.Body.String()))
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/ready", "", nil).Code)

	require.NoError(t, db.Close(env.db))
	assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, "/health/ready", "", nil).Code)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusConflict, statusFor(service.ErrConflict))
	assert.Equal(t, http.StatusConflict, statusFor(service.ErrInvalidState))
	assert.Equal(t, http.StatusInternalServerError, statusFor(gorm.ErrInvalidDB))
}
