package session

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes session login/logout over HTTP.
type Handler struct {
	store *Store
}

// NewHandler creates a session Handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers the session routes on the given Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/session", h.GetSession)
	g.POST("/session", h.Login)
	g.DELETE("/session", h.Logout)
}

type loginRequest struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Login handles POST /session.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.User == nil || req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user and token are required")
	}
	h.store.Set(req.User, req.Token)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":          req.User,
		"authenticated": h.store.Authenticated(),
	})
}

// Logout handles DELETE /session.
func (h *Handler) Logout(c echo.Context) error {
	h.store.Clear()
	return c.NoContent(http.StatusNoContent)
}

// GetSession handles GET /session.
func (h *Handler) GetSession(c echo.Context) error {
	user, _ := h.store.Credentials()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":          user,
		"authenticated": h.store.Authenticated(),
	})
}
