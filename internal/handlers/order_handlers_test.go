package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealmart/internal/common"
	"mealmart/internal/models"
	"mealmart/internal/services"
)

// fakeOrderService returns canned results so the handler's status-code and
// envelope mapping can be asserted in isolation.
type fakeOrderService struct {
	createOrder *models.Order
	createErr   error
	listOrders  []*models.Order
	listErr     error
	updateOrder *models.Order
	updateErr   error
	deleteErr   error
}

func (f *fakeOrderService) Create(ctx context.Context, input services.CreateOrderInput) (*models.Order, error) {
	return f.createOrder, f.createErr
}

func (f *fakeOrderService) List(ctx context.Context, actor *models.User) ([]*models.Order, error) {
	return f.listOrders, f.listErr
}

func (f *fakeOrderService) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus, actor *models.User) (*models.Order, error) {
	return f.updateOrder, f.updateErr
}

func (f *fakeOrderService) Delete(ctx context.Context, orderID int64, actor *models.User) error {
	return f.deleteErr
}

func newOrderRequest(method, target, body string, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if user != nil {
		req = req.WithContext(common.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestCreateOrder_Created(t *testing.T) {
	svc := &fakeOrderService{createOrder: &models.Order{ID: 42, Status: models.OrderPending}}
	h := NewOrderHandlers(svc)

	c, rec := newOrderRequest(http.MethodPost, "/orders",
		`{"items":[{"foodId":7,"quantity":2,"price":"10"}]}`, &models.User{ID: 2})

	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var got models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(42), got.ID)
}

func TestCreateOrder_RequiresAuthentication(t *testing.T) {
	h := NewOrderHandlers(&fakeOrderService{})

	c, rec := newOrderRequest(http.MethodPost, "/orders", `{}`, nil)

	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, errorMessage(t, rec))
}

func TestCreateOrder_InvalidStatus(t *testing.T) {
	h := NewOrderHandlers(&fakeOrderService{})

	c, rec := newOrderRequest(http.MethodPost, "/orders",
		`{"status":"SHIPPED","items":[{"foodId":1,"quantity":1}]}`, &models.User{ID: 2})

	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "invalid status")
}

func TestCreateOrder_ValidationErrorFromService(t *testing.T) {
	svc := &fakeOrderService{createErr: common.ValidationError("items must not be empty")}
	h := NewOrderHandlers(svc)

	c, rec := newOrderRequest(http.MethodPost, "/orders", `{"items":[]}`, &models.User{ID: 2})

	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "items must not be empty", errorMessage(t, rec))
}

func TestListOrders_ForbiddenForNonAdmin(t *testing.T) {
	svc := &fakeOrderService{listErr: common.ForbiddenError("admin access required")}
	h := NewOrderHandlers(svc)

	c, rec := newOrderRequest(http.MethodGet, "/orders", "", &models.User{ID: 2})

	require.NoError(t, h.ListOrders(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListOrders_EmptyListNotNull(t *testing.T) {
	h := NewOrderHandlers(&fakeOrderService{})

	c, rec := newOrderRequest(http.MethodGet, "/orders", "", &models.User{ID: 1, IsAdmin: true})

	require.NoError(t, h.ListOrders(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestUpdateOrder_NotFound(t *testing.T) {
	svc := &fakeOrderService{updateErr: common.NotFoundError("order")}
	h := NewOrderHandlers(svc)

	c, rec := newOrderRequest(http.MethodPut, "/orders/404", `{"status":"CONFIRMED"}`, &models.User{ID: 1, IsAdmin: true})
	c.SetParamNames("id")
	c.SetParamValues("404")

	require.NoError(t, h.UpdateOrder(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "order not found", errorMessage(t, rec))
}

func TestUpdateOrder_BadID(t *testing.T) {
	h := NewOrderHandlers(&fakeOrderService{})

	c, rec := newOrderRequest(http.MethodPut, "/orders/abc", `{"status":"CONFIRMED"}`, &models.User{ID: 1, IsAdmin: true})
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, h.UpdateOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateOrder_StoreFailureIsOpaque500(t *testing.T) {
	svc := &fakeOrderService{updateErr: common.StoreError("update order status", errors.New("connection refused"))}
	h := NewOrderHandlers(svc)

	c, rec := newOrderRequest(http.MethodPut, "/orders/5", `{"status":"CONFIRMED"}`, &models.User{ID: 1, IsAdmin: true})
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, h.UpdateOrder(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// internals never leak into the envelope
	assert.NotContains(t, errorMessage(t, rec), "connection refused")
}

func TestDeleteOrder_Success(t *testing.T) {
	h := NewOrderHandlers(&fakeOrderService{})

	c, rec := newOrderRequest(http.MethodDelete, "/orders/7", "", &models.User{ID: 1, IsAdmin: true})
	c.SetParamNames("id")
	c.SetParamValues("7")

	require.NoError(t, h.DeleteOrder(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["success"])
}

func TestDeleteOrder_NotFound(t *testing.T) {
	svc := &fakeOrderService{deleteErr: common.NotFoundError("order")}
	h := NewOrderHandlers(svc)

	c, rec := newOrderRequest(http.MethodDelete, "/orders/404", "", &models.User{ID: 1, IsAdmin: true})
	c.SetParamNames("id")
	c.SetParamValues("404")

	require.NoError(t, h.DeleteOrder(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
