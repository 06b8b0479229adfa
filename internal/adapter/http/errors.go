package http

import (
	"errors"
	"net/http"

	"pawn-lending-backend/internal/domain/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var codeStatus = map[apperr.Code]int{
	apperr.CodeValidation:        http.StatusUnprocessableEntity,
	apperr.CodeStateConflict:     http.StatusConflict,
	apperr.CodeNotFound:          http.StatusNotFound,
	apperr.CodeLimitExceeded:     http.StatusUnprocessableEntity,
	apperr.CodeForbidden:         http.StatusForbidden,
	apperr.CodeDependencyFailure: http.StatusServiceUnavailable,
}

// StatusOf maps a usecase error to its HTTP status. Uncoded errors are 500.
func StatusOf(err error) int {
	if s, ok := codeStatus[apperr.CodeOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// responder writes usecase errors. Embedded by every resource handler.
type responder struct{ log *zap.Logger }

func newResponder(log *zap.Logger) responder {
	if log == nil {
		log = zap.NewNop()
	}
	return responder{log: log}
}

func (r responder) fail(c echo.Context, err error) error {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		r.log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.JSON(status, ErrorResponse{Error: "internal error", Code: string(apperr.CodeInternal)})
	}

	msg := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg = ae.Msg
	}
	return c.JSON(status, ErrorResponse{Error: msg, Code: string(apperr.CodeOf(err))})
}
