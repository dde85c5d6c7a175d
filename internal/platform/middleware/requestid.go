package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const RequestIDHeader = "X-Request-ID"

// contextKeyRequestID is where the assigned id lives on the echo context.
const contextKeyRequestID = "request_id"

// RequestID assigns every request an id, honoring one supplied by the
// caller, and echoes it back in the response header. Downstream middleware
// and handlers read it via requestIDFrom.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.New().String()
			}
			c.Set(contextKeyRequestID, rid)
			c.Response().Header().Set(RequestIDHeader, rid)
			return next(c)
		}
	}
}

// requestIDFrom returns the id RequestID assigned to this request, or the
// empty string when the middleware did not run.
func requestIDFrom(c echo.Context) string {
	rid, _ := c.Get(contextKeyRequestID).(string)
	return rid
}
