package middleware

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/cstockton/go-conv"
	"github.com/labstack/echo/v4"
)

// HeaderUserID carries the id of the calling user, set by the gateway in
// front of this service.
const HeaderUserID = "X-User-ID"

// BindAndValidate bind request context and validate request struct.
// Bind includes request body, params, query and headers.
// Validate request struct, response bad request with error message if the request is invalid.
func BindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}

	if err := bindHeader(c.Request().Header, req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}

func GetUserID(c echo.Context) string {
	return c.Request().Header.Get(HeaderUserID)
}

// bindHeader decode http header to struct by tag `header:"<header_name>"`
// out must be a pointer to a struct
func bindHeader(header http.Header, dst interface{}) error {
	getValueFn := func(tagValue string) (interface{}, bool) {
		value := header.Get(tagValue)
		return value, value != ""
	}

	return bindStruct(dst, "header", getValueFn)
}

// bindStruct decode to struct by custom tag `tagName:"tagValue"`.
// Fields whose value is absent keep whatever Bind already put there.
// dst must be a pointer to a struct
func bindStruct(dst interface{}, tagName string, getValueFn func(tagValue string) (interface{}, bool)) error {
	ptr := reflect.ValueOf(dst)
	if ptr.Kind() != reflect.Ptr {
		return fmt.Errorf("non-pointer passed to Unmarshal")
	}

	indirect := reflect.Indirect(ptr)
	structType := indirect.Type()

	for i := 0; i < structType.NumField(); i++ {
		structField := structType.Field(i)
		tagValue := structField.Tag.Get(tagName)
		if tagValue == "-" || tagValue == "" {
			continue
		}

		value, ok := getValueFn(tagValue)
		if !ok {
			continue
		}
		field := indirect.Field(i)
		if err := conv.Infer(field, value); err != nil {
			return fmt.Errorf("cannot parse %s.%s as %s from: %#v / %s",
				structType.Name(), structField.Name, field.Type(), value, err)
		}
	}

	return nil
}
