package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/docportal/docportal/internal/platform/device"
	"github.com/docportal/docportal/internal/platform/navigation"
	"github.com/docportal/docportal/internal/platform/session"
	"github.com/docportal/docportal/pkg/pagination"
)

func setupHandlerTest(t *testing.T) (*echo.Echo, *Handler, *Center) {
	t.Helper()
	notifier := device.NewLocalNotifier(zerolog.Nop())
	svc := NewService(&mockRepo{}, notifier, zerolog.Nop(), "default")
	center := NewCenter(svc, notifier, navigation.NewRecorder(), session.NewStore(), zerolog.Nop())
	h := NewHandler(center, notifier)

	e := echo.New()
	h.RegisterRoutes(e.Group("/api/v1"))
	return e, h, center
}

func doRequest(e *echo.Echo, method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ListReturnsPaginatedNewestFirst(t *testing.T) {
	e, _, center := setupHandlerTest(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := center.svc.Add(ctx, Record{Title: fmt.Sprintf("n%d", i)}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	rec := doRequest(e, http.MethodGet, "/api/v1/notifications?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp pagination.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Total != 3 || resp.Limit != 2 || !resp.HasMore {
		t.Errorf("unexpected envelope %+v", resp)
	}

	items := resp.Data.([]interface{})
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["title"] != "n2" {
		t.Errorf("expected newest first, got %v", first["title"])
	}
}

func TestHandler_UnreadCount(t *testing.T) {
	e, _, center := setupHandlerTest(t)
	center.svc.Add(context.Background(), Record{Title: "a"})

	rec := doRequest(e, http.MethodGet, "/api/v1/notifications/unread-count", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["unread"] != 1 {
		t.Errorf("unread = %d, want 1", resp["unread"])
	}
}

func TestHandler_MarkReadAndDelete(t *testing.T) {
	e, _, center := setupHandlerTest(t)
	ctx := context.Background()

	added, err := center.svc.Add(ctx, Record{Title: "a"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	rec := doRequest(e, http.MethodPost, fmt.Sprintf("/api/v1/notifications/%d/read", added.ID), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("mark read status = %d", rec.Code)
	}
	if center.UnreadCount() != 0 {
		t.Errorf("expected 0 unread, got %d", center.UnreadCount())
	}

	rec = doRequest(e, http.MethodDelete, fmt.Sprintf("/api/v1/notifications/%d", added.ID), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if got := len(center.Notifications()); got != 0 {
		t.Errorf("expected empty list, got %d", got)
	}
}

func TestHandler_InvalidIDRejected(t *testing.T) {
	e, _, _ := setupHandlerTest(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/notifications/abc/read"},
		{http.MethodPost, "/api/v1/notifications/0/read"},
		{http.MethodDelete, "/api/v1/notifications/-1"},
	}
	for _, tc := range cases {
		rec := doRequest(e, tc.method, tc.path, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s %s: status = %d, want 400", tc.method, tc.path, rec.Code)
		}
	}
}

func TestHandler_ReadAllAndClear(t *testing.T) {
	e, _, center := setupHandlerTest(t)
	ctx := context.Background()
	center.svc.Add(ctx, Record{Title: "a"})
	center.svc.Add(ctx, Record{Title: "b"})

	rec := doRequest(e, http.MethodPost, "/api/v1/notifications/read-all", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("read-all status = %d", rec.Code)
	}
	if center.UnreadCount() != 0 {
		t.Errorf("expected 0 unread, got %d", center.UnreadCount())
	}

	rec = doRequest(e, http.MethodDelete, "/api/v1/notifications", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", rec.Code)
	}
	if got := len(center.Notifications()); got != 0 {
		t.Errorf("expected empty list, got %d", got)
	}
}

func TestHandler_CreateTest(t *testing.T) {
	e, _, center := setupHandlerTest(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/notifications/test", `{"category":"consultation"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var created Record
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if created.Type != CategoryConsultation {
		t.Errorf("category = %q, want consultation", created.Type)
	}
	if got := len(center.Notifications()); got != 1 {
		t.Errorf("expected 1 stored notification, got %d", got)
	}
}

func TestHandler_ListScheduled(t *testing.T) {
	notifier := device.NewLocalNotifier(zerolog.Nop())
	svc := NewService(&mockRepo{}, notifier, zerolog.Nop(), "default")
	center := NewCenter(svc, notifier, navigation.NewRecorder(), session.NewStore(), zerolog.Nop())
	h := NewHandler(center, notifier)

	e := echo.New()
	h.RegisterRoutes(e.Group("/api/v1"))

	id, err := svc.CreateAppointmentReminder(context.Background(), 7, "Jane Doe", time.Now().Add(2*time.Hour), 10)
	if err != nil || id == "" {
		t.Fatalf("CreateAppointmentReminder: id %q err %v", id, err)
	}

	rec := doRequest(e, http.MethodGet, "/api/v1/notifications/scheduled", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var scheduled []device.Scheduled
	if err := json.Unmarshal(rec.Body.Bytes(), &scheduled); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(scheduled) != 1 || scheduled[0].ID != id {
		t.Errorf("unexpected scheduled list %+v", scheduled)
	}
}
