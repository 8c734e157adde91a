package repositories

import (
	"context"
	"time"

	"mealmart/internal/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Upsert(ctx context.Context, email, name string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
	UpdateStreak(ctx context.Context, email string, streak, points int, lastLogin, streakStart *time.Time) (*models.User, error)
}

type userRepo struct {
	db DB
}

func NewUserRepo(db DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, name, is_admin, points, streak, last_login_date, streak_start_date, created_at`

func (r *userRepo) scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.IsAdmin, &user.Points, &user.Streak, &user.LastLoginDate, &user.StreakStartDate, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *userRepo) Upsert(ctx context.Context, email, name string) (*models.User, error) {
	query := `
		INSERT INTO users (email, name, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING ` + userColumns
	return r.scanUser(r.db.QueryRow(ctx, query, email, name))
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepo) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT id, name, email, points, streak
		FROM users
		ORDER BY points DESC, id ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		entry := &models.LeaderboardEntry{}
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Email, &entry.Points, &entry.Streak); err != nil {
			return nil, err
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *userRepo) UpdateStreak(ctx context.Context, email string, streak, points int, lastLogin, streakStart *time.Time) (*models.User, error) {
	query := `
		UPDATE users
		SET streak = $2, points = $3, last_login_date = $4, streak_start_date = $5
		WHERE email = $1
		RETURNING ` + userColumns
	return r.scanUser(r.db.QueryRow(ctx, query, email, streak, points, lastLogin, streakStart))
}
