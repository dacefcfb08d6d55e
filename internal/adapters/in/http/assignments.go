package http

import (
	"net/http"

	"dispatch/internal/adapters/in/http/openapi"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// GetAssignment handles GET /api/v1/assignments/{assignmentId}.
func (s *Server) GetAssignment(ctx echo.Context) error {
	assignmentID, err := pathUUID(ctx, "assignmentId")
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewGetAssignmentQuery(assignmentID)
	if err != nil {
		return s.fail(ctx, err)
	}

	snapshot, err := s.handlers.GetAssignment.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toAssignment(snapshot))
}

// ListAssignmentEvents handles GET /api/v1/assignments/{assignmentId}/events.
func (s *Server) ListAssignmentEvents(ctx echo.Context) error {
	assignmentID, err := pathUUID(ctx, "assignmentId")
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewListAssignmentEventsQuery(assignmentID)
	if err != nil {
		return s.fail(ctx, err)
	}

	events, err := s.handlers.ListAssignmentEvents.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]openapi.AssignmentEvent, len(events))
	for i, e := range events {
		response[i] = toEvent(e)
	}
	return ctx.JSON(http.StatusOK, response)
}

// ApplyAssignmentAction handles POST /api/v1/assignments/{assignmentId}/actions.
func (s *Server) ApplyAssignmentAction(ctx echo.Context) error {
	assignmentID, err := pathUUID(ctx, "assignmentId")
	if err != nil {
		return s.fail(ctx, err)
	}

	var body openapi.ApplyAssignmentActionJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	target, err := commands.ParseAction(body.Action)
	if err != nil {
		return s.fail(ctx, err)
	}

	var actingRider *kernel.UUID
	if body.RiderId != nil {
		id, err := kernel.UUIDFromGoogle(*body.RiderId)
		if err != nil {
			return s.fail(ctx, err)
		}
		actingRider = &id
	}

	position, err := fromLocation(body.Location)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewApplyTransitionCommand(
		assignmentID, target, actingRider, position,
		valueOf(body.ProofOfDeliveryUrl), valueOf(body.Notes), body.CustomerRating,
	)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.handlers.ApplyTransition.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, openapi.ActionResponse{
		Assignment:  toAssignment(result.Assignment.Snapshot()),
		OrderStatus: optionalString(result.OrderStatus.String()),
		OrderSynced: result.OrderSynced,
	})
}
