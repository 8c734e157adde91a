package repositories

import (
	"context"

	"mealmart/internal/models"
)

type FriendRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	GetBetween(ctx context.Context, userA, userB int64) (*models.Friendship, error)
	GetPendingForReceiver(ctx context.Context, id, receiverID int64) (*models.Friendship, error)
	UpdateStatus(ctx context.Context, id int64, status models.FriendshipStatus) (*models.Friendship, error)
	DeleteInvolving(ctx context.Context, id, userID int64) (bool, error)
	ListFriends(ctx context.Context, userID int64) ([]*models.FriendSummary, error)
	ListPendingReceived(ctx context.Context, userID int64) ([]*models.FriendSummary, error)
	ListPendingSent(ctx context.Context, userID int64) ([]*models.FriendSummary, error)
}

type friendRepo struct {
	db DB
}

func NewFriendRepo(db DB) FriendRepository {
	return &friendRepo{db: db}
}

func (r *friendRepo) Create(ctx context.Context, friendship *models.Friendship) error {
	query := `
		INSERT INTO friendships (sender_id, receiver_id, status, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query, friendship.SenderID, friendship.ReceiverID, friendship.Status).
		Scan(&friendship.ID, &friendship.CreatedAt)
}

const friendshipSelect = `SELECT id, sender_id, receiver_id, status, created_at FROM friendships`

func scanFriendship(row interface{ Scan(dest ...any) error }) (*models.Friendship, error) {
	f := &models.Friendship{}
	if err := row.Scan(&f.ID, &f.SenderID, &f.ReceiverID, &f.Status, &f.CreatedAt); err != nil {
		return nil, err
	}
	return f, nil
}

// GetBetween finds the row for a pair in either direction, any status.
func (r *friendRepo) GetBetween(ctx context.Context, userA, userB int64) (*models.Friendship, error) {
	query := friendshipSelect + `
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
	`
	return scanFriendship(r.db.QueryRow(ctx, query, userA, userB))
}

func (r *friendRepo) GetPendingForReceiver(ctx context.Context, id, receiverID int64) (*models.Friendship, error) {
	query := friendshipSelect + ` WHERE id = $1 AND receiver_id = $2 AND status = $3`
	return scanFriendship(r.db.QueryRow(ctx, query, id, receiverID, models.FriendshipPending))
}

func (r *friendRepo) UpdateStatus(ctx context.Context, id int64, status models.FriendshipStatus) (*models.Friendship, error) {
	query := `
		UPDATE friendships SET status = $2 WHERE id = $1
		RETURNING id, sender_id, receiver_id, status, created_at
	`
	return scanFriendship(r.db.QueryRow(ctx, query, id, status))
}

func (r *friendRepo) DeleteInvolving(ctx context.Context, id, userID int64) (bool, error) {
	query := `DELETE FROM friendships WHERE id = $1 AND (sender_id = $2 OR receiver_id = $2)`
	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *friendRepo) listSummaries(ctx context.Context, query string, args ...any) ([]*models.FriendSummary, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*models.FriendSummary
	for rows.Next() {
		s := &models.FriendSummary{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Points, &s.Streak, &s.RequestID); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// ListFriends returns the counterpart user of every accepted friendship,
// whichever side this user is on.
func (r *friendRepo) ListFriends(ctx context.Context, userID int64) ([]*models.FriendSummary, error) {
	query := `
		SELECT u.id, u.name, u.email, u.points, u.streak, f.id
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.sender_id = $1 THEN f.receiver_id ELSE f.sender_id END
		WHERE (f.sender_id = $1 OR f.receiver_id = $1) AND f.status = $2
		ORDER BY u.name ASC
	`
	return r.listSummaries(ctx, query, userID, models.FriendshipAccepted)
}

func (r *friendRepo) ListPendingReceived(ctx context.Context, userID int64) ([]*models.FriendSummary, error) {
	query := `
		SELECT u.id, u.name, u.email, u.points, u.streak, f.id
		FROM friendships f
		JOIN users u ON u.id = f.sender_id
		WHERE f.receiver_id = $1 AND f.status = $2
		ORDER BY f.created_at DESC
	`
	return r.listSummaries(ctx, query, userID, models.FriendshipPending)
}

func (r *friendRepo) ListPendingSent(ctx context.Context, userID int64) ([]*models.FriendSummary, error) {
	query := `
		SELECT u.id, u.name, u.email, u.points, u.streak, f.id
		FROM friendships f
		JOIN users u ON u.id = f.receiver_id
		WHERE f.sender_id = $1 AND f.status = $2
		ORDER BY f.created_at DESC
	`
	return r.listSummaries(ctx, query, userID, models.FriendshipPending)
}
