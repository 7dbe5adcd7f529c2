package middleware

import (
	"fmt"
	"net/http"
	"reflect"
	"runtime"

	"github.com/labstack/echo/v4"
)

var (
	contextType = reflect.TypeFor[echo.Context]()
	errorType   = reflect.TypeFor[error]()
)

// WrapHandler turns f into an echo handler. f has one of the shapes
//
//	func(echo.Context, Req) (Data, error)
//	func(echo.Context, Req) error
//
// where Req is a struct bound and validated with BindAndValidate. Data is
// written inside a Response envelope, or as is when it already is a
// *Response; the error-only shape answers 204.
func WrapHandler(f interface{}) echo.HandlerFunc {
	handler, err := wrapHandler(f)
	if err != nil {
		panic(err)
	}
	return handler
}

func wrapHandler(f interface{}) (echo.HandlerFunc, error) {
	fVal := reflect.ValueOf(f)
	if fVal.Kind() != reflect.Func {
		return nil, fmt.Errorf("wrap handler: %T is not a function", f)
	}
	fTyp := fVal.Type()
	if err := checkHandlerSignature(fTyp); err != nil {
		return nil, fmt.Errorf("wrap handler %s: %w", runtime.FuncForPC(fVal.Pointer()).Name(), err)
	}

	reqType := fTyp.In(1)
	withData := fTyp.NumOut() == 2

	return func(c echo.Context) error {
		req := reflect.New(reqType)
		if err := BindAndValidate(c, req.Interface()); err != nil {
			return err
		}

		out := fVal.Call([]reflect.Value{reflect.ValueOf(c), req.Elem()})
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return errVal.Interface().(error)
		}
		if c.Response().Committed {
			return nil
		}

		if !withData {
			return c.NoContent(http.StatusNoContent)
		}

		data := out[0].Interface()
		if resp, ok := data.(*Response); ok {
			return c.JSON(resp.Status, resp)
		}
		return c.JSON(http.StatusOK, &Response{Status: http.StatusOK, Success: true, Data: data})
	}, nil
}

func checkHandlerSignature(fTyp reflect.Type) error {
	if fTyp.NumIn() != 2 {
		return fmt.Errorf("want 2 arguments, got %d", fTyp.NumIn())
	}
	if !fTyp.In(0).Implements(contextType) {
		return fmt.Errorf("first argument must be echo.Context, got %v", fTyp.In(0))
	}
	if fTyp.In(1).Kind() != reflect.Struct {
		return fmt.Errorf("second argument must be a struct, got %v", fTyp.In(1))
	}
	numOut := fTyp.NumOut()
	if numOut < 1 || numOut > 2 {
		return fmt.Errorf("want 1 or 2 results, got %d", numOut)
	}
	if last := fTyp.Out(numOut - 1); last != errorType {
		return fmt.Errorf("last result must be error, got %v", last)
	}
	return nil
}
