package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/unierp-backend/internal/config"
	"github.com/stemsi/unierp-backend/internal/middleware"
	"github.com/stemsi/unierp-backend/internal/response"
	ws "github.com/stemsi/unierp-backend/internal/websocket"
)

// WSHandler streams a student's enrollment events over WebSocket.
type WSHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
// allowedOrigins comes from config.Config.AllowedOrigins.
func NewWSHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: ws.NewUpgrader(allowedOrigins),
	}
}

// EnrollmentStream godoc
// WS /ws/v1/student/enrollments/stream?token=...
// Relays the student's enrollment events (registered, dropped, graded) as they
// are published. Clients may send {"action":"ping"} to keep the socket alive.
func (h *WSHandler) EnrollmentStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	studentID := claims.UserID.String()
	wsLog := h.log.With().Str("student_id", studentID).Logger()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	sub := h.rdb.Subscribe(ctx, config.CacheKey.StudentEnrollmentChannel(studentID))
	defer sub.Close()

	// Wait for the subscription so no event published after "ready" is missed.
	if _, err := sub.Receive(ctx); err != nil {
		wsLog.Error().Err(err).Msg("Subscribe failed")
		_ = ws.WriteError(conn, "event stream unavailable")
		return
	}
	if err := ws.WriteTyped(conn, ws.ReadyResponse{Event: ws.EventReady, StudentID: studentID}); err != nil {
		return
	}

	wsLog.Info().Msg("Student connected")

	events := make(chan string)
	go func() {
		defer close(events)
		for msg := range sub.Channel() {
			select {
			case events <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := ws.Relay(ctx, conn, events); err != nil && !ws.IsClosed(err) {
		wsLog.Warn().Err(err).Msg("Unexpected close")
		return
	}
	wsLog.Debug().Msg("Connection closed")
}
