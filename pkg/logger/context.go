package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// FromContext returns the request-scoped logger. The request-id middleware
// stores one under "logger"; when a caller sits outside that chain (tests,
// one-off handlers) the global logger is tagged with whatever request id the
// request carries.
func FromContext(c echo.Context) *zap.Logger {
	if l, ok := c.Get("logger").(*zap.Logger); ok {
		return l
	}

	requestID, ok := c.Get("request_id").(string)
	if !ok || requestID == "" {
		requestID = c.Request().Header.Get(RequestIDHeader)
	}
	if requestID == "" {
		requestID = "unknown"
	}
	return GetLogger().With(zap.String("request_id", requestID))
}
