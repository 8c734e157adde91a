package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mealmart/internal/common"
	"mealmart/internal/models"
	"mealmart/internal/realtime"
	"mealmart/internal/repositories"
)

// Broadcaster is the fan-out side of the realtime hub as seen by the order
// service. Publish is best-effort: a failed publish never fails the mutation
// that preceded it.
type Broadcaster interface {
	Publish(room, event string, payload any) error
}

// TransitionPolicy selects how status updates are validated.
type TransitionPolicy string

const (
	// TransitionFree accepts any member of the status enum as the next
	// status, matching the behavior orders were designed with (admin
	// override).
	TransitionFree TransitionPolicy = "free"
	// TransitionStrict enforces the forward-only path and terminal states.
	TransitionStrict TransitionPolicy = "strict"
)

// OrderItemInput is one requested line of a new order. Exactly one of FoodID
// and GroceryItemID must be set.
type OrderItemInput struct {
	FoodID        *int64
	GroceryItemID *int64
	Quantity      int
	Price         decimal.Decimal
}

// CreateOrderInput is the normalized POST /orders body.
type CreateOrderInput struct {
	UserID          int64
	Items           []OrderItemInput
	Status          models.OrderStatus
	TotalPrice      *decimal.Decimal
	DeliveryType    models.DeliveryType
	DeliveryAddress *string
}

// OrderServiceInterface is the exclusive authority over order state. Every
// successful mutation emits exactly one broadcast event after the store
// commit.
type OrderServiceInterface interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	List(ctx context.Context, actor *models.User) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus, actor *models.User) (*models.Order, error)
	Delete(ctx context.Context, orderID int64, actor *models.User) error
}

type orderService struct {
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
	hub       Broadcaster
	policy    TransitionPolicy
	logger    *zap.Logger
}

func NewOrderService(orderRepo repositories.OrderRepository, userRepo repositories.UserRepository, hub Broadcaster, policy TransitionPolicy, logger *zap.Logger) OrderServiceInterface {
	if policy == "" {
		policy = TransitionFree
	}
	return &orderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		hub:       hub,
		policy:    policy,
		logger:    logger,
	}
}

// Create validates the request, persists the order and its items atomically,
// then publishes a new-order event carrying the fully joined order.
func (s *orderService) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, common.ValidationError("items must not be empty")
	}
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, common.ValidationError("items[%d]: quantity must be positive", i)
		}
		if (item.FoodID == nil) == (item.GroceryItemID == nil) {
			return nil, common.ValidationError("items[%d]: exactly one of foodId and groceryItemId must be set", i)
		}
		if item.Price.IsNegative() {
			return nil, common.ValidationError("items[%d]: price must not be negative", i)
		}
	}
	if input.DeliveryType == models.DeliveryCourier && common.SafeString(input.DeliveryAddress) == "" {
		return nil, common.ValidationError("deliveryAddress is required for delivery orders")
	}

	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundError("user")
		}
		return nil, common.StoreError("resolve user", err)
	}

	status := input.Status
	if status == "" {
		status = models.OrderPending
	}

	total := decimal.Zero
	items := make([]*models.OrderItem, 0, len(input.Items))
	for _, in := range input.Items {
		item := &models.OrderItem{
			FoodID:        in.FoodID,
			GroceryItemID: in.GroceryItemID,
			Quantity:      in.Quantity,
			Price:         in.Price,
		}
		total = total.Add(item.Subtotal())
		items = append(items, item)
	}
	if input.TotalPrice != nil {
		total = *input.TotalPrice
	}
	if total.IsNegative() {
		return nil, common.ValidationError("totalPrice must not be negative")
	}

	order := &models.Order{
		UserID:          input.UserID,
		Status:          status,
		DeliveryType:    input.DeliveryType,
		DeliveryAddress: input.DeliveryAddress,
		TotalPrice:      total,
	}
	if err := s.orderRepo.CreateWithItems(ctx, order, items); err != nil {
		return nil, common.StoreError("create order", err)
	}

	joined, err := s.orderRepo.GetJoined(ctx, order.ID)
	if err != nil {
		// The commit already happened; fall back to the unjoined order
		// so the caller still gets a 201.
		s.logger.Error("loading joined order after create failed",
			zap.Int64("order_id", order.ID), zap.Error(err))
		joined = order
	}

	s.publish(realtime.EventNewOrder, joined)
	return joined, nil
}

// List returns every order fully joined. Admin only.
func (s *orderService) List(ctx context.Context, actor *models.User) ([]*models.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.ListJoined(ctx)
	if err != nil {
		return nil, common.StoreError("list orders", err)
	}
	return orders, nil
}

// UpdateStatus persists a status change and publishes an order-updated event
// with the post-mutation state. The transition policy decides which target
// states are acceptable.
func (s *orderService) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus, actor *models.User) (*models.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	current, err := s.orderRepo.GetJoined(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundError("order")
		}
		return nil, common.StoreError("load order", err)
	}

	if s.policy == TransitionStrict && status != current.Status {
		if !current.Status.CanTransitionTo(status) {
			return nil, common.ValidationError("cannot transition order from %s to %s", current.Status, status)
		}
	}

	found, err := s.orderRepo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, common.StoreError("update order status", err)
	}
	if !found {
		return nil, common.NotFoundError("order")
	}

	updated, err := s.orderRepo.GetJoined(ctx, orderID)
	if err != nil {
		return nil, common.StoreError("load updated order", err)
	}

	s.publish(realtime.EventOrderUpdated, updated)
	return updated, nil
}

// Delete hard-deletes the order and its items, then publishes an
// order-deleted event carrying only the id.
func (s *orderService) Delete(ctx context.Context, orderID int64, actor *models.User) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	found, err := s.orderRepo.Delete(ctx, orderID)
	if err != nil {
		return common.StoreError("delete order", err)
	}
	if !found {
		return common.NotFoundError("order")
	}

	s.publish(realtime.EventOrderDeleted, orderID)
	return nil
}

// publish runs after a committed mutation. Failures are logged and swallowed:
// the store is authoritative and must never be held hostage by the transport.
func (s *orderService) publish(event string, payload any) {
	if err := s.hub.Publish(realtime.RoomAdminOrders, event, payload); err != nil {
		berr := common.BroadcastError(event, err)
		s.logger.Error("broadcast failed", zap.String("event", event), zap.Error(berr))
	}
}

func requireAdmin(actor *models.User) error {
	if actor == nil {
		return common.UnauthorizedError("authentication required")
	}
	if !actor.IsAdmin {
		return common.ForbiddenError("admin access required")
	}
	return nil
}
