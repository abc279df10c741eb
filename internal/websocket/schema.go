package websocket

import "github.com/careacademy/academy-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action of a client message.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventReady Event = "ready"
	EventFeed  Event = "feed"
	EventError Event = "error"
	EventPong  Event = "pong"
)

// ReadyResponse is sent once the subscription is live.
type ReadyResponse struct {
	Event Event `json:"event"`
}

// FeedResponse wraps one admin feed event.
type FeedResponse struct {
	Event Event           `json:"event"`
	Data  model.FeedEvent `json:"data"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
