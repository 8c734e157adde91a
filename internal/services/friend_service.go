package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"mealmart/internal/common"
	"mealmart/internal/models"
	"mealmart/internal/repositories"
)

type FriendServiceInterface interface {
	Overview(ctx context.Context, user *models.User) (*models.FriendsOverview, error)
	SendRequest(ctx context.Context, user *models.User, receiverEmail string) (*models.Friendship, error)
	Respond(ctx context.Context, user *models.User, id int64, status models.FriendshipStatus) (*models.Friendship, error)
	Remove(ctx context.Context, user *models.User, id int64) error
}

type friendService struct {
	friendRepo repositories.FriendRepository
	userRepo   repositories.UserRepository
}

func NewFriendService(friendRepo repositories.FriendRepository, userRepo repositories.UserRepository) FriendServiceInterface {
	return &friendService{friendRepo: friendRepo, userRepo: userRepo}
}

// Overview loads the accepted friends plus both directions of pending
// requests. Empty slices keep the JSON arrays non-null.
func (s *friendService) Overview(ctx context.Context, user *models.User) (*models.FriendsOverview, error) {
	if user == nil {
		return nil, common.UnauthorizedError("authentication required")
	}

	friends, err := s.friendRepo.ListFriends(ctx, user.ID)
	if err != nil {
		return nil, common.StoreError("list friends", err)
	}
	pending, err := s.friendRepo.ListPendingReceived(ctx, user.ID)
	if err != nil {
		return nil, common.StoreError("list pending friend requests", err)
	}
	sent, err := s.friendRepo.ListPendingSent(ctx, user.ID)
	if err != nil {
		return nil, common.StoreError("list sent friend requests", err)
	}

	overview := &models.FriendsOverview{Friends: friends, PendingRequests: pending, SentRequests: sent}
	if overview.Friends == nil {
		overview.Friends = []*models.FriendSummary{}
	}
	if overview.PendingRequests == nil {
		overview.PendingRequests = []*models.FriendSummary{}
	}
	if overview.SentRequests == nil {
		overview.SentRequests = []*models.FriendSummary{}
	}
	return overview, nil
}

func (s *friendService) SendRequest(ctx context.Context, user *models.User, receiverEmail string) (*models.Friendship, error) {
	if user == nil {
		return nil, common.UnauthorizedError("authentication required")
	}
	if receiverEmail == "" {
		return nil, common.ValidationError("receiverEmail is required")
	}

	receiver, err := s.userRepo.GetByEmail(ctx, receiverEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundError("user")
		}
		return nil, common.StoreError("look up receiver", err)
	}
	if receiver.ID == user.ID {
		return nil, common.ValidationError("cannot add yourself as a friend")
	}

	existing, err := s.friendRepo.GetBetween(ctx, user.ID, receiver.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, common.StoreError("check existing friendship", err)
	}
	if existing != nil {
		return nil, common.ValidationError("friendship already exists")
	}

	friendship := &models.Friendship{
		SenderID:   user.ID,
		ReceiverID: receiver.ID,
		Status:     models.FriendshipPending,
	}
	if err := s.friendRepo.Create(ctx, friendship); err != nil {
		return nil, common.StoreError("create friend request", err)
	}
	return friendship, nil
}

// Respond lets the receiver accept or reject a pending request. Only the
// receiver of a still-pending request may respond.
func (s *friendService) Respond(ctx context.Context, user *models.User, id int64, status models.FriendshipStatus) (*models.Friendship, error) {
	if user == nil {
		return nil, common.UnauthorizedError("authentication required")
	}

	if _, err := s.friendRepo.GetPendingForReceiver(ctx, id, user.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundError("friend request")
		}
		return nil, common.StoreError("load friend request", err)
	}

	friendship, err := s.friendRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, common.StoreError("update friend request", err)
	}
	return friendship, nil
}

func (s *friendService) Remove(ctx context.Context, user *models.User, id int64) error {
	if user == nil {
		return common.UnauthorizedError("authentication required")
	}
	found, err := s.friendRepo.DeleteInvolving(ctx, id, user.ID)
	if err != nil {
		return common.StoreError("remove friend", err)
	}
	if !found {
		return common.NotFoundError("friendship")
	}
	return nil
}
