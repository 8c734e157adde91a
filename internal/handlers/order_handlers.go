package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"mealmart/internal/common"
	"mealmart/internal/models"
	"mealmart/internal/services"
)

// OrderHandlers exposes the order lifecycle over HTTP.
type OrderHandlers struct {
	orderService services.OrderServiceInterface
}

func NewOrderHandlers(orderService services.OrderServiceInterface) *OrderHandlers {
	return &OrderHandlers{orderService: orderService}
}

type orderItemRequest struct {
	FoodID        *int64          `json:"foodId"`
	GroceryItemID *int64          `json:"groceryItemId"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items"`
	Status          string             `json:"status"`
	TotalPrice      *decimal.Decimal   `json:"totalPrice"`
	DeliveryType    string             `json:"deliveryType"`
	DeliveryAddress *string            `json:"deliveryAddress"`
}

// CreateOrder handles POST /orders. The order belongs to the authenticated
// user.
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := common.GetUserFromContext(ctx)
	if !ok {
		return common.SendError(c, common.UnauthorizedError("authentication required"))
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.ValidationError("invalid request body"))
	}

	status := models.OrderPending
	if req.Status != "" {
		parsed, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			return common.SendError(c, common.ValidationError("%v", err))
		}
		status = parsed
	}
	deliveryType, err := models.ParseDeliveryType(req.DeliveryType)
	if err != nil {
		return common.SendError(c, common.ValidationError("%v", err))
	}

	input := services.CreateOrderInput{
		UserID:          user.ID,
		Status:          status,
		TotalPrice:      req.TotalPrice,
		DeliveryType:    deliveryType,
		DeliveryAddress: req.DeliveryAddress,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, services.OrderItemInput{
			FoodID:        item.FoodID,
			GroceryItemID: item.GroceryItemID,
			Quantity:      item.Quantity,
			Price:         item.Price,
		})
	}

	order, err := h.orderService.Create(ctx, input)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// ListOrders handles GET /orders, newest first. Admin only.
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := common.GetUserFromContext(ctx)

	orders, err := h.orderService.List(ctx, user)
	if err != nil {
		return common.SendError(c, err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return c.JSON(http.StatusOK, orders)
}

type updateOrderRequest struct {
	Status string `json:"status"`
}

// UpdateOrder handles PUT /orders/:id. Admin only.
func (h *OrderHandlers) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := common.GetUserFromContext(ctx)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return common.SendError(c, common.ValidationError("invalid order id"))
	}

	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.ValidationError("invalid request body"))
	}
	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return common.SendError(c, common.ValidationError("%v", err))
	}

	order, err := h.orderService.UpdateStatus(ctx, id, status, user)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /orders/:id. Admin only.
func (h *OrderHandlers) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := common.GetUserFromContext(ctx)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return common.SendError(c, common.ValidationError("invalid order id"))
	}

	if err := h.orderService.Delete(ctx, id, user); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
