package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	readWait  = 5 * time.Minute
)

// NewUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline.
func ReadJSON(conn *websocket.Conn, v any) error {
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	return conn.ReadJSON(v)
}

// IsClosed reports whether err is an ordinary end of the connection.
func IsClosed(err error) bool {
	return errors.Is(err, context.Canceled) ||
		websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived)
}

// Relay forwards every payload from events to conn until ctx ends, events
// closes or the client disconnects. Client pings are answered with pongs.
// All writes happen on the calling goroutine; a reader goroutine feeds it.
func Relay(ctx context.Context, conn *websocket.Conn, events <-chan string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	replies := make(chan any, 8)
	readErr := make(chan error, 1)
	go func() {
		defer cancel()
		for {
			var msg RequestEnvelope
			if err := ReadJSON(conn, &msg); err != nil {
				readErr <- err
				return
			}
			var reply any
			switch msg.Action {
			case ActionPing:
				reply = PongResponse{Event: EventPong}
			default:
				reply = ErrorResponse{Event: EventError, Error: "unknown action: " + string(msg.Action)}
			}
			select {
			case replies <- reply:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			select {
			case err := <-readErr:
				return err
			default:
				return ctx.Err()
			}
		case reply := <-replies:
			if err := WriteTyped(conn, reply); err != nil {
				return err
			}
		case payload, ok := <-events:
			if !ok {
				return nil
			}
			if !json.Valid([]byte(payload)) {
				continue
			}
			if err := WriteTyped(conn, EnrollmentResponse{Event: EventEnrollment, Data: json.RawMessage(payload)}); err != nil {
				return err
			}
		}
	}
}
