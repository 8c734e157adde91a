package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"mealmart/internal/common"
	"mealmart/internal/models"
	"mealmart/internal/services"
)

type ScheduleHandlers struct {
	scheduleService services.ScheduleServiceInterface
}

func NewScheduleHandlers(scheduleService services.ScheduleServiceInterface) *ScheduleHandlers {
	return &ScheduleHandlers{scheduleService: scheduleService}
}

// CreateSchedule handles POST /schedules.
func (h *ScheduleHandlers) CreateSchedule(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := common.GetUserFromContext(ctx)

	var req services.CreateScheduleInput
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.ValidationError("invalid request body"))
	}
	schedule, err := h.scheduleService.Create(ctx, user, req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, schedule)
}

// ListSchedules handles GET /schedules?date=YYYY-MM-DD, defaulting to today.
func (h *ScheduleHandlers) ListSchedules(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := common.GetUserFromContext(ctx)

	day := time.Now()
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return common.SendError(c, common.ValidationError("date must be in YYYY-MM-DD format"))
		}
		day = parsed
	}

	schedules, err := h.scheduleService.ListByDay(ctx, user, day)
	if err != nil {
		return common.SendError(c, err)
	}
	if schedules == nil {
		schedules = []*models.Schedule{}
	}
	return c.JSON(http.StatusOK, schedules)
}

type setCompletedRequest struct {
	Completed bool `json:"completed"`
}

// SetCompleted handles PUT /schedules/:id.
func (h *ScheduleHandlers) SetCompleted(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := common.GetUserFromContext(ctx)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return common.SendError(c, common.ValidationError("invalid schedule id"))
	}
	var req setCompletedRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.ValidationError("invalid request body"))
	}

	if err := h.scheduleService.SetCompleted(ctx, user, id, req.Completed); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"completed": req.Completed})
}

// DeleteSchedule handles DELETE /schedules/:id.
func (h *ScheduleHandlers) DeleteSchedule(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := common.GetUserFromContext(ctx)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return common.SendError(c, common.ValidationError("invalid schedule id"))
	}

	if err := h.scheduleService.Delete(ctx, user, id); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Schedule deleted successfully"})
}
