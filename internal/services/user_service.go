package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"mealmart/internal/common"
	"mealmart/internal/models"
	"mealmart/internal/repositories"
)

const (
	pointsStreakKept  = 10
	pointsStreakReset = 5
)

type UserServiceInterface interface {
	Ensure(ctx context.Context, email, name string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, actor *models.User, limit, offset int) ([]*models.User, error)
	CheckIn(ctx context.Context, email string, now time.Time) (*models.StreakResult, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserServiceInterface {
	return &userService{userRepo: userRepo}
}

// Ensure upserts the local account row for a verified identity.
func (s *userService) Ensure(ctx context.Context, email, name string) (*models.User, error) {
	if err := common.ValidateRequiredString(email, "email"); err != nil {
		return nil, common.ValidationError("%s", err.Error())
	}
	if name == "" {
		name = "User"
	}
	user, err := s.userRepo.Upsert(ctx, email, name)
	if err != nil {
		return nil, common.StoreError("upsert user", err)
	}
	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundError("user")
		}
		return nil, common.StoreError("load user", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, actor *models.User, limit, offset int) ([]*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	limit, offset = common.ValidatePaginationParams(limit, offset)
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, common.StoreError("list users", err)
	}
	return users, nil
}

// CheckIn applies the daily streak rules at day granularity: a check-in on
// the same day is a no-op; the day after the last one extends the streak and
// awards 10 points; any gap resets the streak to 1 and awards 5 points; the
// first check-in ever starts the streak and awards 10 points.
func (s *userService) CheckIn(ctx context.Context, email string, now time.Time) (*models.StreakResult, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	today := truncateToDay(now)
	streak := user.Streak
	points := user.Points
	streakStart := user.StreakStartDate
	message := "Streak and points updated"

	switch {
	case user.LastLoginDate == nil:
		streak = 1
		points += pointsStreakKept
		streakStart = &today
	case truncateToDay(*user.LastLoginDate).Equal(today):
		return &models.StreakResult{
			Streak:          streak,
			Points:          points,
			StreakStartDate: streakStart,
			LastLoginDate:   user.LastLoginDate,
			Message:         "Already logged in today",
		}, nil
	case truncateToDay(*user.LastLoginDate).Equal(today.AddDate(0, 0, -1)):
		streak++
		points += pointsStreakKept
	default:
		streak = 1
		points += pointsStreakReset
		streakStart = &today
	}

	updated, err := s.userRepo.UpdateStreak(ctx, email, streak, points, &today, streakStart)
	if err != nil {
		return nil, common.StoreError("update streak", err)
	}

	return &models.StreakResult{
		Streak:          updated.Streak,
		Points:          updated.Points,
		StreakStartDate: updated.StreakStartDate,
		LastLoginDate:   updated.LastLoginDate,
		Message:         message,
	}, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
