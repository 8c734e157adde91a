package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"mealmart/internal/common"
	"mealmart/internal/models"
	"mealmart/internal/realtime"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateWithItems(ctx context.Context, order *models.Order, items []*models.OrderItem) error {
	args := m.Called(ctx, order, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetJoined(ctx context.Context, id int64) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListJoined(ctx context.Context) ([]*models.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, email, name string) (*models.User, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

func (m *MockUserRepository) UpdateStreak(ctx context.Context, email string, streak, points int, lastLogin, streakStart *time.Time) (*models.User, error) {
	args := m.Called(ctx, email, streak, points, lastLogin, streakStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// recordingBroadcaster captures every published event for assertions.
type recordingBroadcaster struct {
	events []publishedEvent
	err    error
}

type publishedEvent struct {
	room    string
	event   string
	payload any
}

func (b *recordingBroadcaster) Publish(room, event string, payload any) error {
	b.events = append(b.events, publishedEvent{room: room, event: event, payload: payload})
	return b.err
}

type OrderServiceTestSuite struct {
	suite.Suite
	orderRepo   *MockOrderRepository
	userRepo    *MockUserRepository
	broadcaster *recordingBroadcaster
	service     OrderServiceInterface
	admin       *models.User
	customer    *models.User
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.orderRepo = &MockOrderRepository{}
	suite.userRepo = &MockUserRepository{}
	suite.broadcaster = &recordingBroadcaster{}
	suite.service = NewOrderService(suite.orderRepo, suite.userRepo, suite.broadcaster, TransitionFree, zap.NewNop())
	suite.admin = &models.User{ID: 1, Email: "admin@example.com", IsAdmin: true}
	suite.customer = &models.User{ID: 2, Email: "user@example.com"}

	suite.orderRepo.Test(suite.T())
	suite.userRepo.Test(suite.T())
}

func (suite *OrderServiceTestSuite) TearDownTest() {
	suite.orderRepo.AssertExpectations(suite.T())
	suite.userRepo.AssertExpectations(suite.T())
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func foodID(id int64) *int64 { return &id }

func (suite *OrderServiceTestSuite) TestCreate_Success() {
	ctx := context.Background()
	suite.userRepo.On("GetByID", ctx, int64(2)).Return(suite.customer, nil)

	suite.orderRepo.On("CreateWithItems", ctx, mock.AnythingOfType("*models.Order"), mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			order := args.Get(1).(*models.Order)
			order.ID = 42
			assert.Equal(suite.T(), models.OrderPending, order.Status)
			assert.True(suite.T(), order.TotalPrice.Equal(decimal.NewFromInt(30)))
		})

	joined := &models.Order{ID: 42, UserID: 2, Status: models.OrderPending, User: suite.customer}
	suite.orderRepo.On("GetJoined", ctx, int64(42)).Return(joined, nil)

	order, err := suite.service.Create(ctx, CreateOrderInput{
		UserID: 2,
		Items: []OrderItemInput{
			{FoodID: foodID(7), Quantity: 2, Price: decimal.NewFromInt(10)},
			{GroceryItemID: foodID(3), Quantity: 1, Price: decimal.NewFromInt(10)},
		},
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), joined, order)

	if assert.Len(suite.T(), suite.broadcaster.events, 1) {
		event := suite.broadcaster.events[0]
		assert.Equal(suite.T(), realtime.RoomAdminOrders, event.room)
		assert.Equal(suite.T(), realtime.EventNewOrder, event.event)
		assert.Equal(suite.T(), joined, event.payload)
	}
}

func (suite *OrderServiceTestSuite) TestCreate_TotalFromFractionalPrices() {
	ctx := context.Background()
	suite.userRepo.On("GetByID", ctx, int64(2)).Return(suite.customer, nil)

	suite.orderRepo.On("CreateWithItems", ctx, mock.AnythingOfType("*models.Order"), mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			order := args.Get(1).(*models.Order)
			order.ID = 43
			assert.Equal(suite.T(), models.OrderPending, order.Status)
			// 5.00 x 2 + 3.00 x 1
			assert.True(suite.T(), order.TotalPrice.Equal(decimal.RequireFromString("13.00")),
				"got total %s", order.TotalPrice)
		})
	suite.orderRepo.On("GetJoined", ctx, int64(43)).Return(&models.Order{ID: 43, Status: models.OrderPending}, nil)

	order, err := suite.service.Create(ctx, CreateOrderInput{
		UserID: 2,
		Items: []OrderItemInput{
			{FoodID: foodID(1), Quantity: 2, Price: decimal.RequireFromString("5.00")},
			{FoodID: foodID(2), Quantity: 1, Price: decimal.RequireFromString("3.00")},
		},
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderPending, order.Status)
}

func (suite *OrderServiceTestSuite) TestCreate_ExplicitTotalWins() {
	ctx := context.Background()
	explicit := decimal.NewFromInt(99)
	suite.userRepo.On("GetByID", ctx, int64(2)).Return(suite.customer, nil)
	suite.orderRepo.On("CreateWithItems", ctx, mock.AnythingOfType("*models.Order"), mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			order := args.Get(1).(*models.Order)
			order.ID = 1
			assert.True(suite.T(), order.TotalPrice.Equal(explicit))
		})
	suite.orderRepo.On("GetJoined", ctx, int64(1)).Return(&models.Order{ID: 1}, nil)

	_, err := suite.service.Create(ctx, CreateOrderInput{
		UserID:     2,
		TotalPrice: &explicit,
		Items:      []OrderItemInput{{FoodID: foodID(7), Quantity: 1, Price: decimal.NewFromInt(10)}},
	})
	assert.NoError(suite.T(), err)
}

func (suite *OrderServiceTestSuite) TestCreate_EmptyItems() {
	_, err := suite.service.Create(context.Background(), CreateOrderInput{UserID: 2})
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
	assert.Empty(suite.T(), suite.broadcaster.events)
}

func (suite *OrderServiceTestSuite) TestCreate_ItemNeedsExactlyOneReference() {
	// both references set
	_, err := suite.service.Create(context.Background(), CreateOrderInput{
		UserID: 2,
		Items:  []OrderItemInput{{FoodID: foodID(1), GroceryItemID: foodID(2), Quantity: 1}},
	})
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))

	// neither reference set
	_, err = suite.service.Create(context.Background(), CreateOrderInput{
		UserID: 2,
		Items:  []OrderItemInput{{Quantity: 1}},
	})
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestCreate_DeliveryRequiresAddress() {
	_, err := suite.service.Create(context.Background(), CreateOrderInput{
		UserID:       2,
		DeliveryType: models.DeliveryCourier,
		Items:        []OrderItemInput{{FoodID: foodID(1), Quantity: 1}},
	})
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestCreate_UnknownUser() {
	ctx := context.Background()
	suite.userRepo.On("GetByID", ctx, int64(99)).Return(nil, pgx.ErrNoRows)

	_, err := suite.service.Create(ctx, CreateOrderInput{
		UserID: 99,
		Items:  []OrderItemInput{{FoodID: foodID(1), Quantity: 1}},
	})
	assert.Equal(suite.T(), common.KindNotFound, common.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestList_RequiresAdmin() {
	_, err := suite.service.List(context.Background(), suite.customer)
	assert.Equal(suite.T(), common.KindForbidden, common.KindOf(err))

	_, err = suite.service.List(context.Background(), nil)
	assert.Equal(suite.T(), common.KindUnauthorized, common.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestList_Success() {
	ctx := context.Background()
	orders := []*models.Order{{ID: 2}, {ID: 1}}
	suite.orderRepo.On("ListJoined", ctx).Return(orders, nil)

	got, err := suite.service.List(ctx, suite.admin)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), orders, got)
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_FreePolicyAllowsAnyTarget() {
	ctx := context.Background()
	current := &models.Order{ID: 5, Status: models.OrderCompleted}
	updated := &models.Order{ID: 5, Status: models.OrderPending}
	suite.orderRepo.On("GetJoined", ctx, int64(5)).Return(current, nil).Once()
	suite.orderRepo.On("UpdateStatus", ctx, int64(5), models.OrderPending).Return(true, nil)
	suite.orderRepo.On("GetJoined", ctx, int64(5)).Return(updated, nil).Once()

	got, err := suite.service.UpdateStatus(ctx, 5, models.OrderPending, suite.admin)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), updated, got)

	if assert.Len(suite.T(), suite.broadcaster.events, 1) {
		assert.Equal(suite.T(), realtime.EventOrderUpdated, suite.broadcaster.events[0].event)
		assert.Equal(suite.T(), updated, suite.broadcaster.events[0].payload)
	}
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_StrictPolicyRejectsSkips() {
	strict := NewOrderService(suite.orderRepo, suite.userRepo, suite.broadcaster, TransitionStrict, zap.NewNop())
	ctx := context.Background()
	suite.orderRepo.On("GetJoined", ctx, int64(5)).Return(&models.Order{ID: 5, Status: models.OrderPending}, nil)

	_, err := strict.UpdateStatus(ctx, 5, models.OrderDelivering, suite.admin)
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
	assert.Empty(suite.T(), suite.broadcaster.events)
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_StrictPolicyAllowsCancelAndForward() {
	strict := NewOrderService(suite.orderRepo, suite.userRepo, suite.broadcaster, TransitionStrict, zap.NewNop())
	ctx := context.Background()

	preparing := &models.Order{ID: 5, Status: models.OrderPreparing}
	cancelled := &models.Order{ID: 5, Status: models.OrderCancelled}
	suite.orderRepo.On("GetJoined", ctx, int64(5)).Return(preparing, nil).Once()
	suite.orderRepo.On("UpdateStatus", ctx, int64(5), models.OrderCancelled).Return(true, nil)
	suite.orderRepo.On("GetJoined", ctx, int64(5)).Return(cancelled, nil).Once()

	got, err := strict.UpdateStatus(ctx, 5, models.OrderCancelled, suite.admin)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderCancelled, got.Status)
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_NotFound() {
	ctx := context.Background()
	suite.orderRepo.On("GetJoined", ctx, int64(404)).Return(nil, pgx.ErrNoRows)

	_, err := suite.service.UpdateStatus(ctx, 404, models.OrderConfirmed, suite.admin)
	assert.Equal(suite.T(), common.KindNotFound, common.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_RequiresAdmin() {
	_, err := suite.service.UpdateStatus(context.Background(), 5, models.OrderConfirmed, suite.customer)
	assert.Equal(suite.T(), common.KindForbidden, common.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestDelete_PublishesBareID() {
	ctx := context.Background()
	suite.orderRepo.On("Delete", ctx, int64(7)).Return(true, nil)

	err := suite.service.Delete(ctx, 7, suite.admin)
	assert.NoError(suite.T(), err)

	if assert.Len(suite.T(), suite.broadcaster.events, 1) {
		assert.Equal(suite.T(), realtime.EventOrderDeleted, suite.broadcaster.events[0].event)
		assert.Equal(suite.T(), int64(7), suite.broadcaster.events[0].payload)
	}
}

func (suite *OrderServiceTestSuite) TestDelete_NotFound() {
	ctx := context.Background()
	suite.orderRepo.On("Delete", ctx, int64(404)).Return(false, nil)

	err := suite.service.Delete(ctx, 404, suite.admin)
	assert.Equal(suite.T(), common.KindNotFound, common.KindOf(err))
	assert.Empty(suite.T(), suite.broadcaster.events)
}

func (suite *OrderServiceTestSuite) TestBroadcastFailureDoesNotSurface() {
	ctx := context.Background()
	suite.broadcaster.err = errors.New("transport down")
	suite.orderRepo.On("Delete", ctx, int64(7)).Return(true, nil)

	err := suite.service.Delete(ctx, 7, suite.admin)
	assert.NoError(suite.T(), err)
}
