package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"mealmart/internal/middleware"
	"mealmart/internal/realtime"
	"mealmart/internal/repositories"
)

// WSHandlers upgrades clients onto the realtime hub. Room joins are
// authorized per join message, not at upgrade time, so the endpoint itself is
// public.
type WSHandlers struct {
	hub      *realtime.Hub
	verifier middleware.TokenVerifier
	userRepo repositories.UserRepository
	upgrader websocket.Upgrader
}

func NewWSHandlers(hub *realtime.Hub, verifier middleware.TokenVerifier, userRepo repositories.UserRepository) *WSHandlers {
	return &WSHandlers{
		hub:      hub,
		verifier: verifier,
		userRepo: userRepo,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws.
func (h *WSHandlers) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	h.hub.ServeConn(conn, h.authorizeAdminJoin(c))
	return nil
}

// authorizeAdminJoin admits only tokens that resolve to an admin user.
func (h *WSHandlers) authorizeAdminJoin(c echo.Context) realtime.JoinAuthorizer {
	return func(token string) error {
		if token == "" {
			return errors.New("missing token")
		}
		email, err := h.verifier.Verify(token)
		if err != nil {
			return err
		}
		user, err := h.userRepo.GetByEmail(c.Request().Context(), email)
		if err != nil {
			return errors.New("unknown user")
		}
		if !user.IsAdmin {
			return errors.New("admin access required")
		}
		return nil
	}
}
