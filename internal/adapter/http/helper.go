package http

import (
	"net/http"

	"pawn-lending-backend/internal/domain/apperr"
	"pawn-lending-backend/pkg/id"

	"github.com/labstack/echo/v4"
)

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

func invalid(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Code:    string(apperr.CodeValidation),
		Details: ToFieldErrors(err),
	})
}

// pathID reads a public id from the route. Malformed ids cannot exist, so
// they are reported as not found and ok is false.
func pathID(c echo.Context, name string) (string, bool) {
	v := c.Param(name)
	if !id.Valid(v) {
		_ = c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: string(apperr.CodeNotFound)})
		return "", false
	}
	return v, true
}
