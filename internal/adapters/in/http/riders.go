package http

import (
	"net/http"

	"dispatch/internal/adapters/in/http/openapi"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/rider"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// DeviceIDHeader carries the optional installation id riders' apps send.
const DeviceIDHeader = "X-Device-Id"

// RegisterRider handles POST /api/v1/riders. The session is keyed by a fingerprint of
// the request, so the same device resumes its session without an account.
func (s *Server) RegisterRider(ctx echo.Context) error {
	var body openapi.RegisterRiderJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	req := ctx.Request()
	identity, err := rider.NewIdentity(rider.Signals{
		ClientIP:       ctx.RealIP(),
		UserAgent:      req.UserAgent(),
		AcceptLanguage: req.Header.Get("Accept-Language"),
		DeviceID:       req.Header.Get(DeviceIDHeader),
	})
	if err != nil {
		return s.fail(ctx, err)
	}

	location, err := fromLocation(body.Location)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewRegisterRiderCommand(identity, body.Name, body.Phone, location)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.handlers.RegisterRider.Handle(req.Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	status := http.StatusCreated
	if result.Resumed {
		status = http.StatusOK
	}
	return ctx.JSON(status, openapi.RegisterRiderResponse{
		Rider:   toRider(result.Rider),
		Resumed: result.Resumed,
	})
}

// UpdateRiderPresence handles PUT /api/v1/riders/{riderId}/presence.
func (s *Server) UpdateRiderPresence(ctx echo.Context) error {
	riderID, err := pathUUID(ctx, "riderId")
	if err != nil {
		return s.fail(ctx, err)
	}

	var body openapi.UpdateRiderPresenceJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	location, err := kernel.NewLocation(body.Lat, body.Lng)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewUpdateRiderPresenceCommand(riderID, location, body.Available)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.handlers.UpdatePresence.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, openapi.PresenceResponse{
		Rider:               toRider(result.Rider),
		Applied:             result.Applied,
		AvailabilityIgnored: result.AvailabilityIgnored,
	})
}

// FindAvailableRiders handles GET /api/v1/riders/available?lat=&lng=&exclude=.
func (s *Server) FindAvailableRiders(ctx echo.Context) error {
	lat, err := queryParam[float64](ctx, "lat", true)
	if err != nil {
		return s.fail(ctx, err)
	}
	lng, err := queryParam[float64](ctx, "lng", true)
	if err != nil {
		return s.fail(ctx, err)
	}
	rawExclude, err := queryParam[[]openapi_types.UUID](ctx, "exclude", false)
	if err != nil {
		return s.fail(ctx, err)
	}
	exclude, err := uuidsFrom(rawExclude)
	if err != nil {
		return s.fail(ctx, err)
	}

	point, err := kernel.NewLocation(lat, lng)
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewFindAvailableRidersQuery(point, exclude...)
	if err != nil {
		return s.fail(ctx, err)
	}

	riders, err := s.handlers.FindAvailableRiders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]openapi.AvailableRider, len(riders))
	for i, r := range riders {
		response[i] = toAvailableRider(r)
	}
	return ctx.JSON(http.StatusOK, response)
}

// PollRiderAssignment handles GET /api/v1/riders/{riderId}/assignment.
func (s *Server) PollRiderAssignment(ctx echo.Context) error {
	riderID, err := pathUUID(ctx, "riderId")
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewPollRiderAssignmentQuery(riderID)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.handlers.PollRiderAssignment.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, openapi.PollResponse{
		Assignment: toAssignment(result.Assignment),
		Own:        result.Own,
		DistanceKm: result.DistanceKm,
	})
}
