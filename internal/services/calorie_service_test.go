package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealmart/internal/common"
	"mealmart/internal/models"
)

// fakeProfileRepo keeps profiles in memory, one per user.
type fakeProfileRepo struct {
	profiles map[int64]*models.HealthProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[int64]*models.HealthProfile)}
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID int64) (*models.HealthProfile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (r *fakeProfileRepo) Upsert(_ context.Context, p *models.HealthProfile) error {
	p.ID = int64(len(r.profiles) + 1)
	p.UpdatedAt = time.Now()
	r.profiles[p.UserID] = p
	return nil
}

var planNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func adultInput() CaloriePlanInput {
	return CaloriePlanInput{
		DateBorn:      "1996-05-10",
		Sex:           "male",
		HeightCm:      180,
		WeightKg:      80,
		MainGoal:      "maintain weight",
		ActivityLevel: "moderately active",
	}
}

func TestPlan_MaintenanceNumbers(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewCalorieService(repo)
	user := &models.User{ID: 1}

	plan, err := svc.Plan(context.Background(), user, adultInput(), planNow)
	require.NoError(t, err)

	assert.Equal(t, 30, plan.Age)
	// 10*80 + 6.25*180 - 5*30 + 5
	assert.Equal(t, float64(1780), plan.BMR)
	// 1780 * 1.55
	assert.Equal(t, float64(2759), plan.TDEE)
	assert.Equal(t, 24.7, plan.BMI)
	assert.Equal(t, "Normal", plan.BMIStatus)
	assert.Equal(t, 2759, plan.RecommendedCalories)
	assert.Empty(t, plan.SafetyWarning)
	assert.Nil(t, plan.Scenarios)

	// inputs were persisted
	profile, err := repo.GetByUserID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, float64(1780), profile.BMR)
	assert.Equal(t, "maintain weight", profile.MainGoal)
}

func TestPlan_FemaleBMRConstant(t *testing.T) {
	svc := NewCalorieService(newFakeProfileRepo())
	input := adultInput()
	input.Sex = "female"

	plan, err := svc.Plan(context.Background(), &models.User{ID: 1}, input, planNow)
	require.NoError(t, err)
	// 10*80 + 6.25*180 - 5*30 - 161
	assert.Equal(t, float64(1614), plan.BMR)
}

func TestPlan_WeightLossScenarios(t *testing.T) {
	svc := NewCalorieService(newFakeProfileRepo())
	input := adultInput()
	input.MainGoal = "lose weight"
	goal := 75.0
	input.GoalWeightKg = &goal

	plan, err := svc.Plan(context.Background(), &models.User{ID: 1}, input, planNow)
	require.NoError(t, err)

	assert.Equal(t, 2259, plan.RecommendedCalories)
	require.Len(t, plan.Scenarios, 3)

	slow, normal, fast := plan.Scenarios[0], plan.Scenarios[1], plan.Scenarios[2]
	assert.Equal(t, "slow", slow.Pace)
	assert.Equal(t, -250, slow.CalorieAdjustment)
	assert.Equal(t, 2509, slow.DailyCalories)
	assert.Equal(t, -0.23, slow.WeeklyWeightChange)

	assert.Equal(t, "normal", normal.Pace)
	assert.Equal(t, -500, normal.CalorieAdjustment)
	assert.Equal(t, -0.45, normal.WeeklyWeightChange)

	assert.Equal(t, "fast", fast.Pace)
	assert.Equal(t, -750, fast.CalorieAdjustment)

	for _, sc := range plan.Scenarios {
		require.NotNil(t, sc.WeeksToGoal)
		assert.Positive(t, *sc.WeeksToGoal)
		assert.Positive(t, sc.Macros.Protein.Grams)
		assert.Positive(t, sc.Macros.Carbs.Grams)
	}
	// slower pace means more weeks
	assert.Greater(t, *slow.WeeksToGoal, *fast.WeeksToGoal)
}

func TestPlan_TeenGetsModerateAdjustmentAndNoFastTrack(t *testing.T) {
	svc := NewCalorieService(newFakeProfileRepo())
	input := adultInput()
	input.DateBorn = "2010-01-01"
	input.MainGoal = "lose weight"

	plan, err := svc.Plan(context.Background(), &models.User{ID: 1}, input, planNow)
	require.NoError(t, err)

	assert.Equal(t, 16, plan.Age)
	assert.NotEmpty(t, plan.SafetyWarning)
	require.Len(t, plan.Scenarios, 2)
	assert.Equal(t, -300, plan.Scenarios[1].CalorieAdjustment)
}

func TestPlan_MacrosSumToTarget(t *testing.T) {
	svc := NewCalorieService(newFakeProfileRepo())
	input := adultInput()
	input.MainGoal = "build muscle"

	plan, err := svc.Plan(context.Background(), &models.User{ID: 1}, input, planNow)
	require.NoError(t, err)

	sum := plan.Macros.Protein.Calories + plan.Macros.Fat.Calories + plan.Macros.Carbs.Calories
	assert.Equal(t, plan.RecommendedCalories, sum)
	// 2.0 g/kg for muscle gain
	assert.Equal(t, 160, plan.Macros.Protein.Grams)
}

func TestPlan_Validation(t *testing.T) {
	svc := NewCalorieService(newFakeProfileRepo())
	user := &models.User{ID: 1}

	cases := []struct {
		name   string
		mutate func(*CaloriePlanInput)
	}{
		{"missing sex", func(in *CaloriePlanInput) { in.Sex = "" }},
		{"bad sex", func(in *CaloriePlanInput) { in.Sex = "other" }},
		{"bad activity", func(in *CaloriePlanInput) { in.ActivityLevel = "sedentary" }},
		{"bad date", func(in *CaloriePlanInput) { in.DateBorn = "next tuesday" }},
		{"too young", func(in *CaloriePlanInput) { in.DateBorn = "2024-01-01" }},
		{"bad goal", func(in *CaloriePlanInput) { in.MainGoal = "get swole" }},
		{"zero height", func(in *CaloriePlanInput) { in.HeightCm = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := adultInput()
			tc.mutate(&input)
			_, err := svc.Plan(context.Background(), user, input, planNow)
			assert.Equal(t, common.KindValidation, common.KindOf(err))
		})
	}
}

func TestProfile_NotFound(t *testing.T) {
	svc := NewCalorieService(newFakeProfileRepo())
	_, err := svc.Profile(context.Background(), &models.User{ID: 9})
	assert.Equal(t, common.KindNotFound, common.KindOf(err))
}
