package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"mealmart/internal/common"
	"mealmart/internal/services"
)

type CalorieHandlers struct {
	calorieService services.CalorieServiceInterface
}

func NewCalorieHandlers(calorieService services.CalorieServiceInterface) *CalorieHandlers {
	return &CalorieHandlers{calorieService: calorieService}
}

// CalculatePlan handles POST /calcount. It returns the calorie plan and
// stores the inputs on the user's health profile.
func (h *CalorieHandlers) CalculatePlan(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := common.GetUserFromContext(ctx)
	if !ok {
		return common.SendError(c, common.UnauthorizedError("authentication required"))
	}

	var req services.CaloriePlanInput
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.ValidationError("invalid request body"))
	}

	plan, err := h.calorieService.Plan(ctx, user, req, time.Now())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}

// GetProfile handles GET /healthprofile.
func (h *CalorieHandlers) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := common.GetUserFromContext(ctx)
	if !ok {
		return common.SendError(c, common.UnauthorizedError("authentication required"))
	}

	profile, err := h.calorieService.Profile(ctx, user)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}
