package services

import (
	"context"
	"time"

	"mealmart/internal/common"
	"mealmart/internal/models"
	"mealmart/internal/repositories"
)

type CreateScheduleInput struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Activity  string `json:"activity"`
}

type ScheduleServiceInterface interface {
	Create(ctx context.Context, user *models.User, input CreateScheduleInput) (*models.Schedule, error)
	ListByDay(ctx context.Context, user *models.User, day time.Time) ([]*models.Schedule, error)
	SetCompleted(ctx context.Context, user *models.User, id int64, completed bool) error
	Delete(ctx context.Context, user *models.User, id int64) error
}

type scheduleService struct {
	repo repositories.ScheduleRepository
}

func NewScheduleService(repo repositories.ScheduleRepository) ScheduleServiceInterface {
	return &scheduleService{repo: repo}
}

func (s *scheduleService) Create(ctx context.Context, user *models.User, input CreateScheduleInput) (*models.Schedule, error) {
	if user == nil {
		return nil, common.UnauthorizedError("authentication required")
	}
	if input.Activity == "" || input.StartTime == "" || input.EndTime == "" {
		return nil, common.ValidationError("activity, startTime and endTime are required")
	}
	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return nil, common.ValidationError("date must be in YYYY-MM-DD format")
	}

	schedule := &models.Schedule{
		UserID:    user.ID,
		Date:      date,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Activity:  input.Activity,
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, common.StoreError("create schedule", err)
	}
	return schedule, nil
}

func (s *scheduleService) ListByDay(ctx context.Context, user *models.User, day time.Time) ([]*models.Schedule, error) {
	if user == nil {
		return nil, common.UnauthorizedError("authentication required")
	}
	schedules, err := s.repo.ListByDay(ctx, user.ID, day)
	if err != nil {
		return nil, common.StoreError("list schedules", err)
	}
	return schedules, nil
}

func (s *scheduleService) SetCompleted(ctx context.Context, user *models.User, id int64, completed bool) error {
	if user == nil {
		return common.UnauthorizedError("authentication required")
	}
	found, err := s.repo.SetCompleted(ctx, user.ID, id, completed)
	if err != nil {
		return common.StoreError("update schedule", err)
	}
	if !found {
		return common.NotFoundError("schedule")
	}
	return nil
}

func (s *scheduleService) Delete(ctx context.Context, user *models.User, id int64) error {
	if user == nil {
		return common.UnauthorizedError("authentication required")
	}
	found, err := s.repo.Delete(ctx, user.ID, id)
	if err != nil {
		return common.StoreError("delete schedule", err)
	}
	if !found {
		return common.NotFoundError("schedule")
	}
	return nil
}
