package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// JSONSuccess writes a concise success response.
// Behavior:
// - if data == nil && message == "" -> 204 No Content
// - if data != nil && message == "" -> write data directly with given code
// - if data == nil && message != "" -> {"message": message}
// - if data != nil && message != "" -> {"message": message, "data": data}
func JSONSuccess(c echo.Context, code int, data any, message string) error {
	if data == nil && message == "" {
		return c.NoContent(http.StatusNoContent)
	}
	if message == "" {
		return c.JSON(code, data)
	}
	if data == nil {
		return c.JSON(code, map[string]string{"message": message})
	}
	return c.JSON(code, map[string]any{"message": message, "data": data})
}

// JSONError writes {"error":"<text>"} with the provided HTTP code.
// Accepts string, error, or any type (it will be fmt.Sprintf'd).
func JSONError(c echo.Context, code int, err any) error {
	var msg string
	switch v := err.(type) {
	case nil:
		msg = http.StatusText(code)
	case string:
		msg = v
	case error:
		msg = v.Error()
	default:
		msg = fmt.Sprintf("%v", v)
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return c.JSON(code, map[string]string{"error": msg})
}

// ErrInvalidRequest is returned by BindAndValidate after it has already
// written a 400 response.
var ErrInvalidRequest = errors.New("invalid request")

// BindAndValidate binds the request body into req and validates its struct
// tags. On failure it writes a 400 response naming the offending fields and
// returns ErrInvalidRequest; handlers should then return nil.
func BindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		_ = JSONError(c, http.StatusBadRequest, "invalid json")
		return ErrInvalidRequest
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Namespace())
			}
			_ = JSONError(c, http.StatusBadRequest, "missing or invalid fields: "+strings.Join(fields, ", "))
			return ErrInvalidRequest
		}
		_ = JSONError(c, http.StatusBadRequest, "missing or invalid fields")
		return ErrInvalidRequest
	}

	return nil
}
