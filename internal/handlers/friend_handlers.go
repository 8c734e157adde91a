package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"mealmart/internal/common"
	"mealmart/internal/models"
	"mealmart/internal/services"
)

// FriendHandlers serves the friends list and friend-request lifecycle.
type FriendHandlers struct {
	friendService services.FriendServiceInterface
}

func NewFriendHandlers(friendService services.FriendServiceInterface) *FriendHandlers {
	return &FriendHandlers{friendService: friendService}
}

// ListFriends handles GET /friends: accepted friends plus pending and sent
// requests for the authenticated user.
func (h *FriendHandlers) ListFriends(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := common.GetUserFromContext(ctx)

	overview, err := h.friendService.Overview(ctx, user)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, overview)
}

type sendFriendRequest struct {
	ReceiverEmail string `json:"receiverEmail"`
}

// SendRequest handles POST /friends.
func (h *FriendHandlers) SendRequest(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := common.GetUserFromContext(ctx)

	var req sendFriendRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.ValidationError("invalid request body"))
	}

	friendship, err := h.friendService.SendRequest(ctx, user, req.ReceiverEmail)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, friendship)
}

type respondFriendRequest struct {
	Status string `json:"status"`
}

// Respond handles PATCH /friends/:id, accepting or rejecting a pending
// request addressed to the authenticated user.
func (h *FriendHandlers) Respond(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := common.GetUserFromContext(ctx)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return common.SendError(c, common.ValidationError("invalid friend request id"))
	}

	var req respondFriendRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.ValidationError("invalid request body"))
	}
	status, err := models.ParseFriendshipResponse(req.Status)
	if err != nil {
		return common.SendError(c, common.ValidationError("%v", err))
	}

	friendship, err := h.friendService.Respond(ctx, user, id, status)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, friendship)
}

// Remove handles DELETE /friends/:id. Either side of the friendship may
// remove it.
func (h *FriendHandlers) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := common.GetUserFromContext(ctx)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return common.SendError(c, common.ValidationError("invalid friendship id"))
	}

	if err := h.friendService.Remove(ctx, user, id); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
