package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Skipper reports whether a middleware passes the request through untouched.
type Skipper func(c echo.Context) bool

func DefaultSkipper(echo.Context) bool {
	return false
}

// Logger is the structured subset of the named ct-go logger used by the http layer.
type Logger interface {
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// Response is the success envelope written by WrapHandler.
type Response struct {
	Status  int         `json:"-"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// Created wraps data in a 201 envelope.
func Created(data interface{}) *Response {
	return &Response{Status: http.StatusCreated, Success: true, Data: data}
}

// ResponseError is the failure envelope written by ErrorHandler.
type ResponseError struct {
	Status       int    `json:"-"`
	Err          error  `json:"-"`
	Success      bool   `json:"success"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("status %d (%s): %v", e.Status, e.ErrorCode, e.Err)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}
