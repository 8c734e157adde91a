package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"mealmart/internal/common"
	"mealmart/internal/models"
	"mealmart/internal/services"
)

type LeaderboardHandlers struct {
	leaderboardService services.LeaderboardServiceInterface
}

func NewLeaderboardHandlers(leaderboardService services.LeaderboardServiceInterface) *LeaderboardHandlers {
	return &LeaderboardHandlers{leaderboardService: leaderboardService}
}

// GetLeaderboard handles GET /leaderboard, ranked by points descending.
func (h *LeaderboardHandlers) GetLeaderboard(c echo.Context) error {
	var limit int
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return common.SendError(c, common.ValidationError("limit must be an integer"))
		}
		if err := common.ValidatePositiveInteger(parsed, "limit", 1000); err != nil {
			return common.SendError(c, common.ValidationError("%s", err.Error()))
		}
		limit = parsed
	}

	entries, err := h.leaderboardService.Top(c.Request().Context(), limit)
	if err != nil {
		return common.SendError(c, err)
	}
	if entries == nil {
		entries = []*models.LeaderboardEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}
