package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentranbao-ct/message-core/internal/models"
)

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		reqID := GetRequestID(c)
		assert.Equal(t, reqID, models.RequestIDFromContext(c.Request().Context()))
		return c.String(http.StatusOK, reqID)
	})

	t.Run("keeps caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(XCorrelationID, "caller-id")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "caller-id", rec.Body.String())
		assert.Equal(t, "caller-id", rec.Header().Get(XRequestID))
	})

	t.Run("generates uuid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(rec.Body.String())
		require.NoError(t, err)
		assert.Equal(t, rec.Body.String(), rec.Header().Get(XRequestID))
	})
}
