package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, target string, handler echo.HandlerFunc, mutate func(*http.Request)) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, mw(handler)(c)
}

func TestRequestID_GeneratesNew(t *testing.T) {
	rec, err := runMiddleware(t, RequestID(), "/api/v1/notifications", func(c echo.Context) error {
		if requestIDFrom(c) == "" {
			t.Error("expected a request id on the context")
		}
		return c.String(http.StatusOK, "ok")
	}, nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	rec, err := runMiddleware(t, RequestID(), "/api/v1/notifications", func(c echo.Context) error {
		if got := requestIDFrom(c); got != "portal-req-1" {
			t.Errorf("expected portal-req-1, got %s", got)
		}
		return c.String(http.StatusOK, "ok")
	}, func(req *http.Request) {
		req.Header.Set(RequestIDHeader, "portal-req-1")
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "portal-req-1" {
		t.Errorf("expected portal-req-1 in response header, got %s", got)
	}
}

func TestLogger_EmitsRequestLine(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/unread-count", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(contextKeyRequestID, "portal-req-2")

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	if err := Logger(logger)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	line := buf.String()
	for _, want := range []string{
		`"request_id":"portal-req-2"`,
		`"method":"GET"`,
		`"path":"/api/v1/notifications/unread-count"`,
		`"request"`,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %s: %s", want, line)
		}
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	_, err := runMiddleware(t, Recovery(logger), "/api/v1/notifications", func(c echo.Context) error {
		panic("boom")
	}, nil)

	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}
	if !strings.Contains(buf.String(), `"panic":"boom"`) {
		t.Errorf("expected panic value in log output: %s", buf.String())
	}
}

func TestRecovery_PassesThrough(t *testing.T) {
	logger := zerolog.New(bytes.NewBuffer(nil))

	_, err := runMiddleware(t, Recovery(logger), "/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
