package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is the only client message shape; the stream is server-driven.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventReady      Event = "ready"
	EventEnrollment Event = "enrollment"
	EventPong       Event = "pong"
	EventError      Event = "error"
)

// ReadyResponse is sent once the subscription is live.
type ReadyResponse struct {
	Event     Event  `json:"event"`
	StudentID string `json:"student_id"`
}

// EnrollmentResponse relays one enrollment event as published.
type EnrollmentResponse struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
