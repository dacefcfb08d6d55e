package http

import (
	"context"
	"time"

	"dispatch/internal/adapters/out/hub"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
)

// StreamAssignment handles GET /api/v1/assignments/{assignmentId}/stream.
// The stream ends after the assignment reaches a terminal status.
func (s *Server) StreamAssignment(ctx echo.Context) error {
	assignmentID, err := pathUUID(ctx, "assignmentId")
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewGetAssignmentQuery(assignmentID)
	if err != nil {
		return s.fail(ctx, err)
	}
	if _, err := s.handlers.GetAssignment.Handle(ctx.Request().Context(), query); err != nil {
		return s.fail(ctx, err)
	}

	return s.stream(ctx, assignmentID, true)
}

// StreamOrder handles GET /api/v1/orders/{orderId}/stream. It follows every
// assignment of the order, including re-dispatches after a cancellation.
func (s *Server) StreamOrder(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "orderId")
	if err != nil {
		return s.fail(ctx, err)
	}

	return s.stream(ctx, orderID, false)
}

func (s *Server) stream(ctx echo.Context, id kernel.UUID, untilTerminal bool) error {
	// Subscribed before the handshake completes, so nothing sent after it is missed.
	messages, unsubscribe := s.hub.Subscribe(id)
	defer unsubscribe()

	conn, err := s.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// Upgrade has already written the error response.
		return nil
	}
	defer conn.Close()

	// The server's request context is not cancelled on hijacked connections,
	// so the read loop is what notices the client leaving.
	readCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.readLoop(conn, cancel)

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-readCtx.Done():
			return nil
		case m, ok := <-messages:
			if !ok {
				return nil
			}
			if err := s.write(conn, m); err != nil {
				s.logger.Debug("stream write failed", "id", id.String(), "error", err)
				return nil
			}
			if untilTerminal && m.Terminal() {
				s.closeStream(conn)
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

func (s *Server) write(conn *websocket.Conn, m hub.Message) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(m)
}

func (s *Server) closeStream(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "assignment finished"),
		time.Now().Add(streamWriteWait))
}

// readLoop discards client frames and keeps the pong deadline fresh.
func (s *Server) readLoop(conn *websocket.Conn, done context.CancelFunc) {
	defer done()

	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
