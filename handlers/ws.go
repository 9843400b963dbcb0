package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/felixzhu97/whatschat-sub002/models"
	"github.com/felixzhu97/whatschat-sub002/services"
	"github.com/felixzhu97/whatschat-sub002/utils"
)

// Gateway owns the websocket endpoint: handshake authentication, presence
// lifecycle and per-connection event dispatch. One Gateway is wired per
// process.
type Gateway struct {
	upgrader  websocket.Upgrader
	auth      *services.Authenticator
	registry  *services.PresenceRegistry
	messages  *services.MessageRelay
	events    *services.EventRelay
	calls     *services.CallSignalingRelay
	users     services.UserDirectory
	queueSize int
	logger    *utils.Logger
}

func NewGateway(
	auth *services.Authenticator,
	registry *services.PresenceRegistry,
	messages *services.MessageRelay,
	events *services.EventRelay,
	calls *services.CallSignalingRelay,
	users services.UserDirectory,
	queueSize int,
	logger *utils.Logger,
) *Gateway {
	return &Gateway{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The browser client sends no Origin the gateway can trust;
			// authentication happens on the token, not the origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		auth:      auth,
		registry:  registry,
		messages:  messages,
		events:    events,
		calls:     calls,
		users:     users,
		queueSize: queueSize,
		logger:    logger,
	}
}

// HandleWS authenticates the handshake, upgrades the connection and runs the
// session until the peer goes away.
func (g *Gateway) HandleWS(c *gin.Context) {
	token := extractToken(c.Request)

	user, err := g.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.logger.Error("websocket upgrade failed", "user_id", user.ID, "error", err)
		return
	}

	client := NewClient(user.ID.String(), conn, g.queueSize, g.logger)
	g.handleConnect(client)

	go client.writePump()
	client.readPump(func(raw []byte) {
		g.dispatch(client, raw)
	})

	g.handleDisconnect(client)
}

// extractToken pulls the bearer credential from the Authorization header or,
// for browser websocket clients that cannot set headers, the token query
// parameter.
func extractToken(r *http.Request) string {
	bearerToken := r.Header.Get("Authorization")
	if strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimPrefix(bearerToken, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// handleConnect registers presence, confirms the connection to the caller and
// announces the user to everyone else. A previous connection for the same
// user is displaced and closed: last connection wins.
func (g *Gateway) handleConnect(client *Client) {
	if previous := g.registry.Register(client); previous != nil {
		g.logger.Info("displacing previous connection", "user_id", client.UserID())
		previous.Close()
	}

	client.Emit(models.EventUserConnect, models.PresenceEvent{
		UserID: client.UserID(),
		Online: true,
	})

	g.registry.Broadcast(models.EventUserOnline, models.PresenceEvent{
		UserID: client.UserID(),
		Online: true,
	}, client.UserID())

	// Catch the new connection up on its contacts' live statuses. Failure
	// here is not worth tearing the session down for.
	if err := g.events.SyncStatuses(context.Background(), client); err != nil {
		g.logger.Warn("status sync failed", "user_id", client.UserID(), "error", err)
	}

	g.logger.Info("user connected", "user_id", client.UserID(), "connections", g.registry.Count())
}

// handleDisconnect runs exactly once per connection, whatever closed it. If a
// reconnect already overwrote the presence entry the user never went offline,
// so neither the store write nor the broadcast happens.
func (g *Gateway) handleDisconnect(client *Client) {
	client.Close()

	if !g.registry.Unregister(client) {
		return
	}

	now := time.Now()
	if err := g.users.SetOnline(context.Background(), client.UserID(), false, now); err != nil {
		g.logger.Error("failed to persist last seen", "user_id", client.UserID(), "error", err)
	}

	g.registry.Broadcast(models.EventUserOffline, models.PresenceEvent{
		UserID:   client.UserID(),
		Online:   false,
		LastSeen: now.Format(time.RFC3339),
	}, client.UserID())

	g.logger.Info("user disconnected", "user_id", client.UserID(), "connections", g.registry.Count())
}

// dispatch routes one inbound frame. Relay failures surface as a single error
// event to this connection and nobody else.
func (g *Gateway) dispatch(client *Client, raw []byte) {
	var envelope models.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		client.Emit(models.EventError, models.ErrorEvent{Message: "invalid payload"})
		return
	}

	ctx := context.Background()

	switch envelope.Event {
	case models.EventMessageSend:
		var req models.SendMessageRequest
		if err := json.Unmarshal(envelope.Data, &req); err != nil {
			client.Emit(models.EventError, models.ErrorEvent{Message: "invalid payload"})
			return
		}
		if err := g.messages.Send(ctx, client, req); err != nil {
			g.emitError(client, envelope.Event, err, "failed to send message")
		}

	case models.EventMessageTyping:
		var event models.TypingEvent
		if err := json.Unmarshal(envelope.Data, &event); err != nil {
			client.Emit(models.EventError, models.ErrorEvent{Message: "invalid payload"})
			return
		}
		if err := g.events.Typing(ctx, client, event); err != nil {
			g.emitError(client, envelope.Event, err, "failed to relay typing")
		}

	case models.EventMessageRead:
		var event models.ReadEvent
		if err := json.Unmarshal(envelope.Data, &event); err != nil {
			client.Emit(models.EventError, models.ErrorEvent{Message: "invalid payload"})
			return
		}
		if err := g.events.MarkRead(ctx, client, event); err != nil {
			g.emitError(client, envelope.Event, err, "failed to mark message read")
		}

	case models.EventMessageReaction:
		var event models.ReactionEvent
		if err := json.Unmarshal(envelope.Data, &event); err != nil {
			client.Emit(models.EventError, models.ErrorEvent{Message: "invalid payload"})
			return
		}
		if err := g.events.React(ctx, client, event); err != nil {
			g.emitError(client, envelope.Event, err, "failed to save reaction")
		}

	case models.EventStatusCreate:
		var req models.CreateStatusRequest
		if err := json.Unmarshal(envelope.Data, &req); err != nil {
			client.Emit(models.EventError, models.ErrorEvent{Message: "invalid payload"})
			return
		}
		if err := g.events.CreateStatus(ctx, client, req); err != nil {
			g.emitError(client, envelope.Event, err, "failed to create status")
		}

	case models.EventUserStatus:
		var event models.UserStatusEvent
		if err := json.Unmarshal(envelope.Data, &event); err != nil {
			client.Emit(models.EventError, models.ErrorEvent{Message: "invalid payload"})
			return
		}
		if err := g.events.UpdateUserStatus(ctx, client, event); err != nil {
			g.emitError(client, envelope.Event, err, "failed to update status")
		}

	case models.EventCallIncoming, models.EventCallAnswer, models.EventCallReject,
		models.EventCallICE, models.EventCallOffer, models.EventCallWebRTC:
		var signal models.CallSignal
		if err := json.Unmarshal(envelope.Data, &signal); err != nil {
			client.Emit(models.EventError, models.ErrorEvent{Message: "invalid payload"})
			return
		}
		g.calls.Forward(envelope.Event, client, signal)

	case models.EventCallEnd:
		var event models.CallEndEvent
		if err := json.Unmarshal(envelope.Data, &event); err != nil {
			client.Emit(models.EventError, models.ErrorEvent{Message: "invalid payload"})
			return
		}
		g.calls.End(client, event)

	default:
		client.Emit(models.EventError, models.ErrorEvent{Message: "unknown event"})
	}
}

func (g *Gateway) emitError(client *Client, event string, err error, fallback string) {
	message := fallback
	if errors.Is(err, services.ErrNotParticipant) {
		message = services.ErrNotParticipant.Error()
	}

	g.logger.Warn("event failed", "event", event, "user_id", client.UserID(), "error", err)
	client.Emit(models.EventError, models.ErrorEvent{Message: message})
}
