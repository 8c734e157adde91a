package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"mealmart/internal/common"
	"mealmart/internal/models"
)

type MockFriendRepository struct {
	mock.Mock
}

func (m *MockFriendRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	args := m.Called(ctx, friendship)
	return args.Error(0)
}

func (m *MockFriendRepository) GetBetween(ctx context.Context, userA, userB int64) (*models.Friendship, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Friendship), args.Error(1)
}

func (m *MockFriendRepository) GetPendingForReceiver(ctx context.Context, id, receiverID int64) (*models.Friendship, error) {
	args := m.Called(ctx, id, receiverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Friendship), args.Error(1)
}

func (m *MockFriendRepository) UpdateStatus(ctx context.Context, id int64, status models.FriendshipStatus) (*models.Friendship, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Friendship), args.Error(1)
}

func (m *MockFriendRepository) DeleteInvolving(ctx context.Context, id, userID int64) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) ListFriends(ctx context.Context, userID int64) ([]*models.FriendSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FriendSummary), args.Error(1)
}

func (m *MockFriendRepository) ListPendingReceived(ctx context.Context, userID int64) ([]*models.FriendSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FriendSummary), args.Error(1)
}

func (m *MockFriendRepository) ListPendingSent(ctx context.Context, userID int64) ([]*models.FriendSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FriendSummary), args.Error(1)
}

type FriendServiceTestSuite struct {
	suite.Suite
	friendRepo *MockFriendRepository
	userRepo   *MockUserRepository
	service    FriendServiceInterface
	me         *models.User
}

func (suite *FriendServiceTestSuite) SetupTest() {
	suite.friendRepo = &MockFriendRepository{}
	suite.userRepo = &MockUserRepository{}
	suite.service = NewFriendService(suite.friendRepo, suite.userRepo)
	suite.me = &models.User{ID: 1, Email: "me@example.com", Name: "Me"}

	suite.friendRepo.Test(suite.T())
	suite.userRepo.Test(suite.T())
}

func (suite *FriendServiceTestSuite) TearDownTest() {
	suite.friendRepo.AssertExpectations(suite.T())
	suite.userRepo.AssertExpectations(suite.T())
}

func TestFriendServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FriendServiceTestSuite))
}

func (suite *FriendServiceTestSuite) TestOverview_EmptyListsNotNull() {
	ctx := context.Background()
	suite.friendRepo.On("ListFriends", ctx, int64(1)).Return(nil, nil)
	suite.friendRepo.On("ListPendingReceived", ctx, int64(1)).Return(nil, nil)
	suite.friendRepo.On("ListPendingSent", ctx, int64(1)).Return(nil, nil)

	overview, err := suite.service.Overview(ctx, suite.me)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), overview.Friends)
	assert.NotNil(suite.T(), overview.PendingRequests)
	assert.NotNil(suite.T(), overview.SentRequests)
	assert.Empty(suite.T(), overview.Friends)
}

func (suite *FriendServiceTestSuite) TestOverview_SplitsByDirection() {
	ctx := context.Background()
	friends := []*models.FriendSummary{{ID: 2, Name: "Ana", Points: 120, Streak: 4}}
	received := []*models.FriendSummary{{ID: 3, Name: "Ben", RequestID: 9}}
	sent := []*models.FriendSummary{{ID: 4, Name: "Cleo", RequestID: 11}}
	suite.friendRepo.On("ListFriends", ctx, int64(1)).Return(friends, nil)
	suite.friendRepo.On("ListPendingReceived", ctx, int64(1)).Return(received, nil)
	suite.friendRepo.On("ListPendingSent", ctx, int64(1)).Return(sent, nil)

	overview, err := suite.service.Overview(ctx, suite.me)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), friends, overview.Friends)
	assert.Equal(suite.T(), received, overview.PendingRequests)
	assert.Equal(suite.T(), sent, overview.SentRequests)
}

func (suite *FriendServiceTestSuite) TestOverview_RequiresAuthentication() {
	_, err := suite.service.Overview(context.Background(), nil)
	assert.Equal(suite.T(), common.KindUnauthorized, common.KindOf(err))
}

func (suite *FriendServiceTestSuite) TestSendRequest_CreatesPending() {
	ctx := context.Background()
	receiver := &models.User{ID: 2, Email: "friend@example.com"}
	suite.userRepo.On("GetByEmail", ctx, "friend@example.com").Return(receiver, nil)
	suite.friendRepo.On("GetBetween", ctx, int64(1), int64(2)).Return(nil, pgx.ErrNoRows)
	suite.friendRepo.On("Create", ctx, mock.AnythingOfType("*models.Friendship")).
		Return(nil).
		Run(func(args mock.Arguments) {
			f := args.Get(1).(*models.Friendship)
			f.ID = 5
		})

	friendship, err := suite.service.SendRequest(ctx, suite.me, "friend@example.com")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), friendship.SenderID)
	assert.Equal(suite.T(), int64(2), friendship.ReceiverID)
	assert.Equal(suite.T(), models.FriendshipPending, friendship.Status)
}

func (suite *FriendServiceTestSuite) TestSendRequest_SelfAdd() {
	ctx := context.Background()
	suite.userRepo.On("GetByEmail", ctx, "me@example.com").Return(suite.me, nil)

	_, err := suite.service.SendRequest(ctx, suite.me, "me@example.com")
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *FriendServiceTestSuite) TestSendRequest_UnknownReceiver() {
	ctx := context.Background()
	suite.userRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, pgx.ErrNoRows)

	_, err := suite.service.SendRequest(ctx, suite.me, "ghost@example.com")
	assert.Equal(suite.T(), common.KindNotFound, common.KindOf(err))
}

func (suite *FriendServiceTestSuite) TestSendRequest_DuplicateEitherDirection() {
	ctx := context.Background()
	receiver := &models.User{ID: 2, Email: "friend@example.com"}
	// the receiver already sent a request the other way
	existing := &models.Friendship{ID: 3, SenderID: 2, ReceiverID: 1, Status: models.FriendshipPending}
	suite.userRepo.On("GetByEmail", ctx, "friend@example.com").Return(receiver, nil)
	suite.friendRepo.On("GetBetween", ctx, int64(1), int64(2)).Return(existing, nil)

	_, err := suite.service.SendRequest(ctx, suite.me, "friend@example.com")
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *FriendServiceTestSuite) TestSendRequest_MissingEmail() {
	_, err := suite.service.SendRequest(context.Background(), suite.me, "")
	assert.Equal(suite.T(), common.KindValidation, common.KindOf(err))
}

func (suite *FriendServiceTestSuite) TestRespond_AcceptsPendingRequest() {
	ctx := context.Background()
	pending := &models.Friendship{ID: 9, SenderID: 2, ReceiverID: 1, Status: models.FriendshipPending}
	accepted := &models.Friendship{ID: 9, SenderID: 2, ReceiverID: 1, Status: models.FriendshipAccepted}
	suite.friendRepo.On("GetPendingForReceiver", ctx, int64(9), int64(1)).Return(pending, nil)
	suite.friendRepo.On("UpdateStatus", ctx, int64(9), models.FriendshipAccepted).Return(accepted, nil)

	got, err := suite.service.Respond(ctx, suite.me, 9, models.FriendshipAccepted)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.FriendshipAccepted, got.Status)
}

func (suite *FriendServiceTestSuite) TestRespond_OnlyReceiverOfPendingRequest() {
	ctx := context.Background()
	suite.friendRepo.On("GetPendingForReceiver", ctx, int64(9), int64(1)).Return(nil, pgx.ErrNoRows)

	_, err := suite.service.Respond(ctx, suite.me, 9, models.FriendshipRejected)
	assert.Equal(suite.T(), common.KindNotFound, common.KindOf(err))
}

func (suite *FriendServiceTestSuite) TestRemove_EitherSideMayRemove() {
	ctx := context.Background()
	suite.friendRepo.On("DeleteInvolving", ctx, int64(4), int64(1)).Return(true, nil)

	assert.NoError(suite.T(), suite.service.Remove(ctx, suite.me, 4))
}

func (suite *FriendServiceTestSuite) TestRemove_NotInvolved() {
	ctx := context.Background()
	suite.friendRepo.On("DeleteInvolving", ctx, int64(4), int64(1)).Return(false, nil)

	err := suite.service.Remove(ctx, suite.me, 4)
	assert.Equal(suite.T(), common.KindNotFound, common.KindOf(err))
}
