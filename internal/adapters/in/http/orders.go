package http

import (
	"errors"
	"io"
	"net/http"

	"dispatch/internal/adapters/in/http/openapi"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

// DispatchOrder handles POST /api/v1/orders/{orderId}/dispatch - the order-paid event.
// An empty body dispatches an order already known locally.
func (s *Server) DispatchOrder(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderId")
	if err != nil {
		return s.fail(ctx, err)
	}

	var body openapi.DispatchOrderJSONRequestBody
	if err := ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return badRequest(ctx, "Invalid request body")
	}

	pickup, err := fromLocation(body.Pickup)
	if err != nil {
		return s.fail(ctx, err)
	}
	dropoff, err := fromLocation(body.Dropoff)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewRecordPaidOrderCommand(orderID, pickup, dropoff, body.Total, valueOf(body.Currency))
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.handlers.RecordPaidOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, openapi.DispatchResponse{
		Outcome:    openapi.DispatchResponseOutcome(result.Outcome),
		Assignment: toAssignment(result.Assignment.Snapshot()),
	})
}

// GetOrderAssignment handles GET /api/v1/orders/{orderId}/assignment.
func (s *Server) GetOrderAssignment(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderId")
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewGetOrderAssignmentQuery(orderID)
	if err != nil {
		return s.fail(ctx, err)
	}

	snapshot, err := s.handlers.GetOrderAssignment.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toAssignment(snapshot))
}
