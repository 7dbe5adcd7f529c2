package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nguyentranbao-ct/message-core/internal/models"
)

const (
	XRequestID     = models.HeaderRequestID
	XCorrelationID = "X-Correlation-ID"

	requestIDKey = "request_id"
)

// GetRequestID returns the id assigned by RequestID, empty outside of it.
func GetRequestID(c echo.Context) string {
	id, _ := c.Get(requestIDKey).(string)
	return id
}

type RequestIDConfig struct {
	Skipper   Skipper
	Generator func() string
}

var DefaultRequestIDConfig = RequestIDConfig{
	Skipper:   DefaultSkipper,
	Generator: uuid.NewString,
}

func RequestID() echo.MiddlewareFunc {
	return RequestIDWithConfig(DefaultRequestIDConfig)
}

// RequestIDWithConfig keeps the id sent by the caller in X-Request-ID or
// X-Correlation-ID, or generates one, and echoes it in the response.
func RequestIDWithConfig(config RequestIDConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultRequestIDConfig.Skipper
	}
	if config.Generator == nil {
		config.Generator = DefaultRequestIDConfig.Generator
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			header := c.Request().Header
			id := header.Get(XRequestID)
			if id == "" {
				id = header.Get(XCorrelationID)
			}
			if id == "" {
				id = config.Generator()
			}

			c.Set(requestIDKey, id)
			// usecases log it and the event publisher forwards it
			c.SetRequest(c.Request().WithContext(models.WithRequestID(c.Request().Context(), id)))
			c.Response().Header().Set(XRequestID, id)
			return next(c)
		}
	}
}
