// Package http exposes the dispatch use cases over REST and websocket streams.
package http

import (
	"log/slog"
	"net/http"

	"dispatch/internal/adapters/out/hub"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Handlers groups the use cases the server delegates to.
type Handlers struct {
	RegisterRider    commands.RegisterRiderCommandHandler
	UpdatePresence   commands.UpdateRiderPresenceCommandHandler
	RecordPaidOrder  commands.RecordPaidOrderCommandHandler
	ApplyTransition  commands.ApplyTransitionCommandHandler
	SweepTimeouts    commands.SweepTimeoutsCommandHandler
	RedispatchQueued commands.RedispatchQueuedCommandHandler

	GetAssignment        queries.GetAssignmentQueryHandler
	GetOrderAssignment   queries.GetOrderAssignmentQueryHandler
	FindAvailableRiders  queries.FindAvailableRidersQueryHandler
	PollRiderAssignment  queries.PollRiderAssignmentQueryHandler
	ListAssignmentEvents queries.ListAssignmentEventsQueryHandler
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers Handlers
	hub      *hub.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewServer(handlers Handlers, changes *hub.Hub, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		hub:      changes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.With("component", "http"),
	}
}

// RegisterRoutes mounts the API under /api/v1.
func (s *Server) RegisterRoutes(e *echo.Echo, middleware ...echo.MiddlewareFunc) {
	api := e.Group("/api/v1", middleware...)

	api.POST("/orders/:orderId/dispatch", s.DispatchOrder)
	api.GET("/orders/:orderId/assignment", s.GetOrderAssignment)
	api.GET("/orders/:orderId/stream", s.StreamOrder)

	api.POST("/riders", s.RegisterRider)
	api.GET("/riders/available", s.FindAvailableRiders)
	api.PUT("/riders/:riderId/presence", s.UpdateRiderPresence)
	api.GET("/riders/:riderId/assignment", s.PollRiderAssignment)

	api.GET("/assignments/:assignmentId", s.GetAssignment)
	api.GET("/assignments/:assignmentId/events", s.ListAssignmentEvents)
	api.POST("/assignments/:assignmentId/actions", s.ApplyAssignmentAction)
	api.GET("/assignments/:assignmentId/stream", s.StreamAssignment)

	api.POST("/sweeps", s.RunSweep)
	api.POST("/dispatches/queued", s.RedispatchQueued)
}
