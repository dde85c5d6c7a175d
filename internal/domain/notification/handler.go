package notification

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/docportal/docportal/internal/platform/device"
	"github.com/docportal/docportal/pkg/pagination"
)

// Handler exposes the notification center over HTTP.
type Handler struct {
	center   *Center
	notifier device.Notifier
}

func NewHandler(center *Center, notifier device.Notifier) *Handler {
	return &Handler{center: center, notifier: notifier}
}

// RegisterRoutes mounts the notification endpoints on the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/notifications", h.List)
	g.GET("/notifications/unread-count", h.UnreadCount)
	g.GET("/notifications/scheduled", h.ListScheduled)
	g.POST("/notifications/test", h.CreateTest)
	g.POST("/notifications/read-all", h.MarkAllRead)
	g.POST("/notifications/:id/read", h.MarkRead)
	g.DELETE("/notifications/:id", h.Delete)
	g.DELETE("/notifications", h.Clear)
}

// List returns the stored notifications, newest first, paginated.
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	h.center.Refresh(ctx)

	records := h.center.Notifications()
	params := pagination.FromContext(c)

	total := len(records)
	start := params.Offset
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, pagination.NewResponse(records[start:end], total, params.Limit, params.Offset))
}

// UnreadCount returns the current unread count.
func (h *Handler) UnreadCount(c echo.Context) error {
	h.center.Refresh(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]int{"unread": h.center.UnreadCount()})
}

// ListScheduled returns the pending device-level notifications. Debug aid
// for inspecting what reminders are queued.
func (h *Handler) ListScheduled(c echo.Context) error {
	scheduled, err := h.notifier.ListScheduled(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list scheduled notifications")
	}
	return c.JSON(http.StatusOK, scheduled)
}

type createTestRequest struct {
	Category Category `json:"category"`
}

// CreateTest records a canned notification of the requested category.
func (h *Handler) CreateTest(c echo.Context) error {
	var req createTestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	rec, err := h.center.svc.CreateTestNotification(c.Request().Context(), req.Category)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create test notification")
	}
	h.center.Refresh(c.Request().Context())
	return c.JSON(http.StatusCreated, rec)
}

// MarkRead marks one notification read.
func (h *Handler) MarkRead(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	h.center.MarkAsRead(c.Request().Context(), id)
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead marks every notification read.
func (h *Handler) MarkAllRead(c echo.Context) error {
	h.center.MarkAllAsRead(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Delete removes one notification.
func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	h.center.DeleteNotification(c.Request().Context(), id)
	return c.NoContent(http.StatusNoContent)
}

// Clear wipes the notification list.
func (h *Handler) Clear(c echo.Context) error {
	h.center.ClearAll(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}
	return id, nil
}
