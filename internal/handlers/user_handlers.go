package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"mealmart/internal/common"
	"mealmart/internal/services"
)

type UserHandlers struct {
	userService services.UserServiceInterface
}

func NewUserHandlers(userService services.UserServiceInterface) *UserHandlers {
	return &UserHandlers{userService: userService}
}

type ensureUserRequest struct {
	Name string `json:"name"`
}

// EnsureUser handles POST /users. It creates or refreshes the local row for
// the authenticated identity.
func (h *UserHandlers) EnsureUser(c echo.Context) error {
	ctx := c.Request().Context()
	email, ok := common.GetEmailFromContext(ctx)
	if !ok {
		return common.SendError(c, common.UnauthorizedError("authentication required"))
	}

	var req ensureUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.ValidationError("invalid request body"))
	}

	user, err := h.userService.Ensure(ctx, email, req.Name)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// Me handles GET /users/me.
func (h *UserHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()
	email, ok := common.GetEmailFromContext(ctx)
	if !ok {
		return common.SendError(c, common.UnauthorizedError("authentication required"))
	}

	user, err := h.userService.GetByEmail(ctx, email)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /users. Admin only.
func (h *UserHandlers) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	actor, _ := common.GetUserFromContext(ctx)

	limitParam, _ := strconv.Atoi(c.QueryParam("limit"))
	offsetParam, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset := common.ValidatePaginationParams(limitParam, offsetParam)

	users, err := h.userService.List(ctx, actor, limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// CheckIn handles POST /users/streak, the daily login check-in.
func (h *UserHandlers) CheckIn(c echo.Context) error {
	ctx := c.Request().Context()
	email, ok := common.GetEmailFromContext(ctx)
	if !ok {
		return common.SendError(c, common.UnauthorizedError("authentication required"))
	}

	result, err := h.userService.CheckIn(ctx, email, time.Now())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
