package repositories

import (
	"context"
	"time"

	"mealmart/internal/models"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *models.Schedule) error
	ListByDay(ctx context.Context, userID int64, day time.Time) ([]*models.Schedule, error)
	SetCompleted(ctx context.Context, userID, id int64, completed bool) (bool, error)
	Delete(ctx context.Context, userID, id int64) (bool, error)
}

type scheduleRepo struct {
	db DB
}

func NewScheduleRepo(db DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *models.Schedule) error {
	query := `
		INSERT INTO schedules (user_id, date, start_time, end_time, activity, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query, schedule.UserID, schedule.Date, schedule.StartTime, schedule.EndTime, schedule.Activity).
		Scan(&schedule.ID, &schedule.CreatedAt)
}

func (r *scheduleRepo) ListByDay(ctx context.Context, userID int64, day time.Time) ([]*models.Schedule, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	query := `
		SELECT id, user_id, date, start_time, end_time, activity, completed, created_at
		FROM schedules
		WHERE user_id = $1 AND date >= $2 AND date < $3
		ORDER BY start_time ASC
	`
	rows, err := r.db.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*models.Schedule
	for rows.Next() {
		s := &models.Schedule{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.Date, &s.StartTime, &s.EndTime, &s.Activity, &s.Completed, &s.CreatedAt); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *scheduleRepo) SetCompleted(ctx context.Context, userID, id int64, completed bool) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE schedules SET completed = $3 WHERE user_id = $1 AND id = $2`, userID, id, completed)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *scheduleRepo) Delete(ctx context.Context, userID, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM schedules WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
