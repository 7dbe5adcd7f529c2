package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// maxLoggedBody caps the request and response bytes attached to a log line.
const maxLoggedBody = 4 << 10

type LogRequestConfig struct {
	Logger       Logger
	Skipper      Skipper
	RequestBody  bool
	ResponseBody bool
	// KeyAndValues adds request specific fields to the log line.
	KeyAndValues func(c echo.Context) []interface{}
}

type bodyDumpWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w *bodyDumpWriter) WriteHeader(code int) {
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyDumpWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *bodyDumpWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// LogRequest writes one line per request, at error level for 5xx, warn for
// 4xx and info otherwise.
func LogRequest(config LogRequestConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		panic("Logger is required to use LogRequest")
	}
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			start := time.Now()
			req := c.Request()
			res := c.Response()

			var reqBody []byte
			if config.RequestBody && isJSON(req.Header.Get(echo.HeaderContentType)) {
				reqBody, _ = io.ReadAll(req.Body)
				req.Body = io.NopCloser(bytes.NewReader(reqBody))
			}
			var resBuf bytes.Buffer
			if config.ResponseBody {
				res.Writer = &bodyDumpWriter{Writer: io.MultiWriter(res.Writer, &resBuf), ResponseWriter: res.Writer}
			}

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			args := []interface{}{
				"status", res.Status,
				"method", req.Method,
				"route", c.Path(),
				"uri", req.RequestURI,
				"latency_ms", time.Since(start).Milliseconds(),
				"real_ip", c.RealIP(),
				"request_id", GetRequestID(c),
			}
			if userID := GetUserID(c); userID != "" {
				args = append(args, "user_id", userID)
			}
			if names := c.ParamNames(); len(names) > 0 {
				params := make(map[string]string, len(names))
				for _, name := range names {
					params[name] = c.Param(name)
				}
				args = append(args, "params", params)
			}
			if config.KeyAndValues != nil {
				args = append(args, config.KeyAndValues(c)...)
			}
			if len(reqBody) > 0 {
				args = append(args, "request_body", truncatedJSON(reqBody))
			}
			if config.ResponseBody && isJSON(res.Header().Get(echo.HeaderContentType)) {
				args = append(args, "response_body", truncatedJSON(resBuf.Bytes()))
			}

			switch {
			case res.Status >= http.StatusInternalServerError:
				if err != nil {
					args = append(args, "error", err.Error())
				}
				config.Logger.Errorw("http request", args...)
			case res.Status >= http.StatusBadRequest:
				if err != nil {
					args = append(args, "error", err.Error())
				}
				config.Logger.Warnw("http request", args...)
			default:
				config.Logger.Infow("http request", args...)
			}

			return err
		}
	}
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(contentType, echo.MIMEApplicationJSON)
}

// truncatedJSON keeps small bodies as raw json and cuts large ones to a string.
func truncatedJSON(b []byte) interface{} {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "..."
	}
	if !json.Valid(b) {
		return string(b)
	}
	return json.RawMessage(b)
}
