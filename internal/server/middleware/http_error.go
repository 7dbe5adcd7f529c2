package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"google.golang.org/grpc/codes"

	"github.com/nguyentranbao-ct/message-core/internal/models"
)

// StatusFromError maps domain error kinds to http status.
func StatusFromError(err error) int {
	switch models.Code(err) {
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition:
		return http.StatusConflict
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.InvalidArgument:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrUpdateFailed):
		return "update_failed"
	case errors.Is(err, models.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, models.ErrInvalidArgument):
		return "invalid_argument"
	}
	return ""
}

// ErrorHandler return custom http error handler.
func ErrorHandler(log Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if err == nil || c.Response().Committed {
			return
		}

		resp := &ResponseError{
			Status:  http.StatusInternalServerError,
			Success: false,
			Err:     err,
		}

		var (
			httpErr *echo.HTTPError
			respErr *ResponseError
		)
		switch {
		case errors.As(err, &respErr):
			resp = respErr
		case errors.As(err, &httpErr):
			resp.Status = httpErr.Code
			resp.ErrorMessage = fmt.Sprint(httpErr.Message)
		case errorCode(err) != "":
			resp.Status = StatusFromError(err)
			resp.ErrorCode = errorCode(err)
			resp.ErrorMessage = err.Error()
		default:
			// detect canceled request error
			if errors.Is(err, context.Canceled) && c.Request().Context().Err() == context.Canceled {
				resp.Status = 499
			}
		}

		if resp.Status == http.StatusNotFound && isNotFoundHandler(c.Handler()) {
			resp.ErrorMessage = "no route matched"
		}

		if err := c.JSON(resp.Status, resp); err != nil {
			log.Errorw("could not response", "code", resp.Status, "response_body", resp)
		}
	}
}
