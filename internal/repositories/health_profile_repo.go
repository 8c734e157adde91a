package repositories

import (
	"context"

	"mealmart/internal/models"
)

type HealthProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.HealthProfile, error)
	Upsert(ctx context.Context, profile *models.HealthProfile) error
}

type healthProfileRepo struct {
	db DB
}

func NewHealthProfileRepo(db DB) HealthProfileRepository {
	return &healthProfileRepo{db: db}
}

const healthProfileColumns = `id, user_id, date_born, sex, height_cm, weight_kg, main_goal, goal_weight_kg, activity_level, bmr, tdee, recommended_calories, updated_at`

func (r *healthProfileRepo) GetByUserID(ctx context.Context, userID int64) (*models.HealthProfile, error) {
	p := &models.HealthProfile{}
	query := `SELECT ` + healthProfileColumns + ` FROM health_profiles WHERE user_id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.DateBorn, &p.Sex, &p.HeightCm, &p.WeightKg, &p.MainGoal,
		&p.GoalWeightKg, &p.ActivityLevel, &p.BMR, &p.TDEE, &p.RecommendedCalories, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *healthProfileRepo) Upsert(ctx context.Context, p *models.HealthProfile) error {
	query := `
		INSERT INTO health_profiles (user_id, date_born, sex, height_cm, weight_kg, main_goal, goal_weight_kg, activity_level, bmr, tdee, recommended_calories, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			date_born = EXCLUDED.date_born,
			sex = EXCLUDED.sex,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			main_goal = EXCLUDED.main_goal,
			goal_weight_kg = EXCLUDED.goal_weight_kg,
			activity_level = EXCLUDED.activity_level,
			bmr = EXCLUDED.bmr,
			tdee = EXCLUDED.tdee,
			recommended_calories = EXCLUDED.recommended_calories,
			updated_at = NOW()
		RETURNING id, updated_at
	`
	return r.db.QueryRow(ctx, query, p.UserID, p.DateBorn, p.Sex, p.HeightCm, p.WeightKg, p.MainGoal,
		p.GoalWeightKg, p.ActivityLevel, p.BMR, p.TDEE, p.RecommendedCalories).Scan(&p.ID, &p.UpdatedAt)
}
