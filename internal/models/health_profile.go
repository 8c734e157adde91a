package models

import (
	"time"
)

// HealthProfile stores the inputs and headline outputs of the calorie
// planner for a user. One row per user.
type HealthProfile struct {
	ID                  int64     `json:"id" db:"id"`
	UserID              int64     `json:"userId" db:"user_id"`
	DateBorn            time.Time `json:"dateborn" db:"date_born"`
	Sex                 string    `json:"sex" db:"sex"`
	HeightCm            float64   `json:"height" db:"height_cm"`
	WeightKg            float64   `json:"weight" db:"weight_kg"`
	MainGoal            string    `json:"mainGoal" db:"main_goal"`
	GoalWeightKg        *float64  `json:"goalWeight" db:"goal_weight_kg"`
	ActivityLevel       string    `json:"activityLevel" db:"activity_level"`
	BMR                 float64   `json:"bmr" db:"bmr"`
	TDEE                float64   `json:"tdee" db:"tdee"`
	RecommendedCalories float64   `json:"recommendedCalories" db:"recommended_calories"`
	UpdatedAt           time.Time `json:"updatedAt" db:"updated_at"`
}
