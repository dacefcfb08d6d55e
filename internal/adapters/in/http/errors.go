package http

import (
	"context"
	"errors"
	"net/http"

	"dispatch/internal/adapters/in/http/openapi"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusFor maps a use case error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, assignment.ErrInvalidTransition),
		errors.Is(err, errs.ErrVersionIsInvalid),
		errors.Is(err, assignment.ErrRiderNotAssigned):
		return http.StatusConflict
	case errors.Is(err, assignment.ErrMissingProof),
		errors.Is(err, order.ErrUnresolvableLocation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(ctx echo.Context, err error) error {
	code := statusFor(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		s.logger.ErrorContext(ctx.Request().Context(), "request failed",
			"method", ctx.Request().Method, "path", ctx.Path(), "error", err)
		message = http.StatusText(code)
	}

	return ctx.JSON(code, openapi.Error{Code: code, Message: message})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, openapi.Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}
