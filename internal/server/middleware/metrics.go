package middleware

import (
	"errors"
	"reflect"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsConfig struct {
	Skipper             Skipper
	Subsystem           string
	Buckets             []float64
	NormalizeHTTPStatus bool
	// MetricsPath serves the prometheus exposition; empty disables it.
	MetricsPath string
}

const notFoundPath = "/not-found"

var DefaultMetricsConfig = MetricsConfig{
	Skipper: func(c echo.Context) bool {
		return c.Request().URL.Path == "/health"
	},
	Subsystem: "http",
	Buckets: []float64{
		0.001, // 1ms
		0.0025,
		0.005,
		0.01, // 10ms
		0.025,
		0.05,
		0.1, // 100ms
		0.25,
		0.5,
		1.0, // 1s
		2.5,
		5.0,
		10.0,
	},
	MetricsPath: "/metrics",
}

func normalizeHTTPStatus(status int) string {
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	}
	return "5xx"
}

func isNotFoundHandler(handler echo.HandlerFunc) bool {
	return reflect.ValueOf(handler).Pointer() == reflect.ValueOf(echo.NotFoundHandler).Pointer()
}

// Metrics records request latency per route with DefaultMetricsConfig.
func Metrics() echo.MiddlewareFunc {
	return MetricsWithConfig(DefaultMetricsConfig)
}

// MetricsWithConfig records request latency labelled by status, method and
// route template. Unmatched requests share one label so random paths cannot
// blow up the series count.
func MetricsWithConfig(config MetricsConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	histogram, err := registerHttpMetrics(config)
	if err != nil {
		panic(err)
	}

	var promHandler echo.HandlerFunc
	if config.MetricsPath != "" {
		promHandler = echo.WrapHandler(promhttp.Handler())
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if promHandler != nil && c.Request().URL.Path == config.MetricsPath {
				return promHandler(c)
			}
			if config.Skipper(c) {
				return next(c)
			}

			route := c.Path()
			if isNotFoundHandler(c.Handler()) {
				route = notFoundPath
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				// resolve the final status before observing it
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			if config.NormalizeHTTPStatus {
				status = normalizeHTTPStatus(c.Response().Status)
			}
			histogram.WithLabelValues(status, c.Request().Method, route).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

func registerHttpMetrics(config MetricsConfig) (*prometheus.HistogramVec, error) {
	histogram := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: config.Subsystem,
		Name:      "request_duration_seconds",
		Help:      "Time spent serving a route",
		Buckets:   config.Buckets,
	}, []string{"code", "method", "path"})

	if err := prometheus.Register(histogram); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return histogram, nil
}
