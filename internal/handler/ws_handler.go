package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/careacademy/academy-backend/internal/feed"
	"github.com/careacademy/academy-backend/internal/middleware"
	"github.com/careacademy/academy-backend/internal/response"
	ws "github.com/careacademy/academy-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// maxClientMessage bounds client frames; admins only ever send pings.
const maxClientMessage = 512

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
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

// WSHandler streams the admin live feed.
type WSHandler struct {
	feed     *feed.Publisher
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(publisher *feed.Publisher, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		feed:     publisher,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AdminFeed godoc
// WS /ws/v1/admin/feed?token=...
// Upgrades to WebSocket and forwards every admin feed event published on
// Redis. The connection is kept alive with ping/pong.
func (h *WSHandler) AdminFeed(c *gin.Context) {
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

	wsLog := h.log.With().Str("admin_id", claims.UserID.String()).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := h.feed.Subscribe(ctx)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		wsLog.Error().Err(err).Msg("Feed subscription failed")
		ws.WriteError(conn, "feed unavailable")
		return
	}
	events := sub.Channel()

	// Only this goroutine writes data frames; the reader hands its replies
	// over the channel.
	replies := make(chan interface{}, 4)
	go h.readLoop(conn, wsLog, replies, cancel)

	if err := ws.WriteTyped(conn, ws.ReadyResponse{Event: ws.EventReady}); err != nil {
		return
	}
	wsLog.Info().Msg("Admin feed connected")

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			ev, err := feed.Decode(msg.Payload)
			if err != nil {
				wsLog.Warn().Err(err).Msg("Dropping malformed feed event")
				continue
			}
			if err := ws.WriteTyped(conn, ws.FeedResponse{Event: ws.EventFeed, Data: ev}); err != nil {
				wsLog.Debug().Err(err).Msg("Feed write failed")
				return
			}
		case reply := <-replies:
			if err := ws.WriteTyped(conn, reply); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}

// readLoop consumes client frames until the connection closes, then
// cancels the stream.
func (h *WSHandler) readLoop(conn *websocket.Conn, wsLog zerolog.Logger, replies chan<- interface{}, cancel context.CancelFunc) {
	defer cancel()
	ws.PrepareRead(conn, maxClientMessage)

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var reply interface{}
		switch msg.Action {
		case ws.ActionPing:
			reply = ws.PongResponse{Event: ws.EventPong}
		default:
			reply = ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)}
		}
		select {
		case replies <- reply:
		default:
		}
	}
}
