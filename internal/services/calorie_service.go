package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"mealmart/internal/common"
	"mealmart/internal/models"
	"mealmart/internal/repositories"
)

// CaloriePlanInput mirrors the calorie planner form.
type CaloriePlanInput struct {
	DateBorn      string   `json:"dateborn"`
	Sex           string   `json:"sex"`
	HeightCm      float64  `json:"height"`
	WeightKg      float64  `json:"weight"`
	MainGoal      string   `json:"mainGoal"`
	GoalWeightKg  *float64 `json:"goalWeight"`
	ActivityLevel string   `json:"activityLevel"`
}

type MacroBreakdown struct {
	Grams      int `json:"grams"`
	Calories   int `json:"calories"`
	Percentage int `json:"percentage"`
}

type Macros struct {
	Protein MacroBreakdown `json:"protein"`
	Fat     MacroBreakdown `json:"fat"`
	Carbs   MacroBreakdown `json:"carbs"`
}

// GoalScenario is one pacing option toward the main goal.
type GoalScenario struct {
	Pace               string  `json:"pace"`
	WeeklyWeightChange float64 `json:"weeklyWeightChange"`
	DailyCalories      int     `json:"dailyCalories"`
	CalorieAdjustment  int     `json:"calorieAdjustment"`
	WeeksToGoal        *int    `json:"weeksToGoal,omitempty"`
	Macros             Macros  `json:"macros"`
}

// CaloriePlan is the planner response.
type CaloriePlan struct {
	Age                 int            `json:"age"`
	BMR                 float64        `json:"bmr"`
	TDEE                float64        `json:"tdee"`
	BMI                 float64        `json:"bmi"`
	BMIStatus           string         `json:"bmiStatus"`
	BMIMessage          string         `json:"bmiMessage"`
	RecommendedCalories int            `json:"recommendedCalories"`
	Adjustment          string         `json:"adjustment"`
	SafetyWarning       string         `json:"safetyWarning,omitempty"`
	Macros              Macros         `json:"macros"`
	Scenarios           []GoalScenario `json:"scenarios"`
}

var activityMultipliers = map[string]float64{
	"light":             1.375,
	"moderately active": 1.55,
	"very active":       1.725,
}

type CalorieServiceInterface interface {
	Plan(ctx context.Context, user *models.User, input CaloriePlanInput, now time.Time) (*CaloriePlan, error)
	Profile(ctx context.Context, user *models.User) (*models.HealthProfile, error)
}

type calorieService struct {
	profileRepo repositories.HealthProfileRepository
}

func NewCalorieService(profileRepo repositories.HealthProfileRepository) CalorieServiceInterface {
	return &calorieService{profileRepo: profileRepo}
}

// Plan computes the calorie plan with the Mifflin-St Jeor equation and
// persists the inputs and headline numbers to the user's health profile.
func (s *calorieService) Plan(ctx context.Context, user *models.User, input CaloriePlanInput, now time.Time) (*CaloriePlan, error) {
	if input.DateBorn == "" || input.Sex == "" || input.HeightCm <= 0 || input.WeightKg <= 0 || input.MainGoal == "" || input.ActivityLevel == "" {
		return nil, common.ValidationError("dateborn, sex, height, weight, mainGoal and activityLevel are required")
	}
	if input.Sex != "male" && input.Sex != "female" {
		return nil, common.ValidationError("sex must be male or female")
	}
	multiplier, ok := activityMultipliers[input.ActivityLevel]
	if !ok {
		return nil, common.ValidationError("activityLevel must be one of: light, moderately active, very active")
	}

	birth, err := time.Parse("2006-01-02", input.DateBorn)
	if err != nil {
		return nil, common.ValidationError("dateborn must be in YYYY-MM-DD format")
	}
	age := yearsBetween(birth, now)
	if age < 10 || age > 70 {
		return nil, common.ValidationError("invalid date of birth")
	}

	var bmr float64
	if input.Sex == "male" {
		bmr = 10*input.WeightKg + 6.25*input.HeightCm - 5*float64(age) + 5
	} else {
		bmr = 10*input.WeightKg + 6.25*input.HeightCm - 5*float64(age) - 161
	}
	tdee := bmr * multiplier

	heightM := input.HeightCm / 100
	bmi := math.Round(input.WeightKg/(heightM*heightM)*10) / 10
	bmiStatus, bmiMessage := bmiBand(bmi)

	isTeen := age < 18
	baseAdjust := 500.0
	if isTeen {
		baseAdjust = 300.0
	}

	var adjustment, warning string
	recommended := tdee
	switch input.MainGoal {
	case "lose weight":
		recommended = tdee - baseAdjust
		adjustment = "calorie deficit for gradual weight loss"
		if isTeen {
			warning = "Teenage nutrition: moderate deficit recommended. Consult a doctor before extreme dieting."
		}
	case "gain weight":
		recommended = tdee + baseAdjust
		adjustment = "calorie surplus for gradual weight gain"
		if isTeen {
			warning = "Teenage nutrition: moderate surplus recommended. Focus on nutrient-dense foods."
		}
	case "build muscle":
		recommended = tdee + 250
		adjustment = "moderate surplus for lean muscle gain"
	case "maintain weight":
		adjustment = "maintenance calories"
	default:
		return nil, common.ValidationError("mainGoal must be one of: gain weight, lose weight, maintain weight, build muscle")
	}

	plan := &CaloriePlan{
		Age:                 age,
		BMR:                 math.Round(bmr),
		TDEE:                math.Round(tdee),
		BMI:                 bmi,
		BMIStatus:           bmiStatus,
		BMIMessage:          bmiMessage,
		RecommendedCalories: int(math.Round(recommended)),
		Adjustment:          adjustment,
		SafetyWarning:       warning,
		Macros:              macrosFor(recommended, input.MainGoal, input.WeightKg),
		Scenarios:           scenariosFor(tdee, baseAdjust, input, isTeen),
	}

	profile := &models.HealthProfile{
		UserID:              user.ID,
		DateBorn:            birth,
		Sex:                 input.Sex,
		HeightCm:            input.HeightCm,
		WeightKg:            input.WeightKg,
		MainGoal:            input.MainGoal,
		GoalWeightKg:        input.GoalWeightKg,
		ActivityLevel:       input.ActivityLevel,
		BMR:                 plan.BMR,
		TDEE:                plan.TDEE,
		RecommendedCalories: float64(plan.RecommendedCalories),
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, common.StoreError("save health profile", err)
	}

	return plan, nil
}

func (s *calorieService) Profile(ctx context.Context, user *models.User) (*models.HealthProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundError("health profile")
		}
		return nil, common.StoreError("load health profile", err)
	}
	return profile, nil
}

// macrosFor splits a calorie target: protein at 1.8-2.0 g/kg by goal, fat at
// 22-25% of calories, carbs take the remainder.
func macrosFor(calories float64, goal string, weight float64) Macros {
	proteinFactor := 1.8
	if goal == "build muscle" || goal == "lose weight" {
		proteinFactor = 2.0
	}
	proteinGrams := int(math.Round(weight * proteinFactor))
	proteinCalories := proteinGrams * 4

	fatShare := 0.25
	if goal == "build muscle" {
		fatShare = 0.22
	}
	fatCalories := int(math.Round(calories * fatShare))
	fatGrams := int(math.Round(float64(fatCalories) / 9))

	carbCalories := int(math.Round(calories)) - proteinCalories - fatCalories
	carbGrams := int(math.Round(float64(carbCalories) / 4))

	pct := func(part int) int {
		if calories <= 0 {
			return 0
		}
		return int(math.Round(float64(part) / calories * 100))
	}
	return Macros{
		Protein: MacroBreakdown{Grams: proteinGrams, Calories: proteinCalories, Percentage: pct(proteinCalories)},
		Fat:     MacroBreakdown{Grams: fatGrams, Calories: fatCalories, Percentage: pct(fatCalories)},
		Carbs:   MacroBreakdown{Grams: carbGrams, Calories: carbCalories, Percentage: pct(carbCalories)},
	}
}

// scenariosFor lays out slow/normal/fast pacing for weight-change goals.
// 7700 kcal per kg of body weight.
func scenariosFor(tdee, baseAdjust float64, input CaloriePlanInput, isTeen bool) []GoalScenario {
	if input.MainGoal != "lose weight" && input.MainGoal != "gain weight" {
		return nil
	}
	sign := 1.0
	if input.MainGoal == "lose weight" {
		sign = -1.0
	}

	paces := []struct {
		name   string
		factor float64
	}{
		{"slow", 0.5},
		{"normal", 1.0},
		{"fast", 1.5},
	}
	if isTeen {
		// No fast track for teenagers.
		paces = paces[:2]
	}

	var scenarios []GoalScenario
	for _, pace := range paces {
		adjust := baseAdjust * pace.factor
		daily := tdee + sign*adjust
		weekly := sign * adjust * 7 / 7700

		sc := GoalScenario{
			Pace:               pace.name,
			WeeklyWeightChange: math.Round(weekly*100) / 100,
			DailyCalories:      int(math.Round(daily)),
			CalorieAdjustment:  int(sign * adjust),
			Macros:             macrosFor(daily, input.MainGoal, input.WeightKg),
		}
		if input.GoalWeightKg != nil && weekly != 0 {
			delta := *input.GoalWeightKg - input.WeightKg
			weeks := delta / weekly
			if weeks > 0 {
				rounded := int(math.Ceil(weeks))
				sc.WeeksToGoal = &rounded
			}
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios
}

func bmiBand(bmi float64) (string, string) {
	switch {
	case bmi < 18.5:
		return "Underweight", "You are below a healthy weight range. Consider consulting a nutritionist."
	case bmi < 25:
		return "Normal", "You are currently in a healthy weight range."
	case bmi < 30:
		return "Overweight", "You are above a healthy weight range. Consider gradual weight loss."
	default:
		return "Obese", "You are significantly above a healthy weight range. Consult a healthcare provider."
	}
}

func yearsBetween(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}
