package models

import (
	"fmt"
	"time"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
)

// ParseFriendshipResponse accepts the statuses a receiver may set on a
// pending request.
func ParseFriendshipResponse(raw string) (FriendshipStatus, error) {
	switch FriendshipStatus(raw) {
	case FriendshipAccepted, FriendshipRejected:
		return FriendshipStatus(raw), nil
	default:
		return "", fmt.Errorf("invalid status %q: must be %q or %q", raw, FriendshipAccepted, FriendshipRejected)
	}
}

// Friendship is a directed friend request between two users. It stays a
// single row for the pair regardless of who sent it.
type Friendship struct {
	ID         int64            `json:"id" db:"id"`
	SenderID   int64            `json:"senderId" db:"sender_id"`
	ReceiverID int64            `json:"receiverId" db:"receiver_id"`
	Status     FriendshipStatus `json:"status" db:"status"`
	CreatedAt  time.Time        `json:"createdAt" db:"created_at"`
}

// FriendSummary is a user projected onto the friends list. RequestID is set
// on pending entries so the receiver can accept or reject them.
type FriendSummary struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Email     string `json:"email" db:"email"`
	Points    int    `json:"points" db:"points"`
	Streak    int    `json:"streak" db:"streak"`
	RequestID int64  `json:"requestId,omitempty" db:"request_id"`
}

// FriendsOverview is the friends page payload: accepted friends plus both
// directions of pending requests.
type FriendsOverview struct {
	Friends         []*FriendSummary `json:"friends"`
	PendingRequests []*FriendSummary `json:"pendingRequests"`
	SentRequests    []*FriendSummary `json:"sentRequests"`
}
