package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"moodchat/internal/events"
	"moodchat/internal/metrics"
	redisstore "moodchat/internal/redis"
	"moodchat/internal/services"
	"moodchat/internal/transport/httpdto"
	moodchat_errors "moodchat/pkg/errors"
	"moodchat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const readDeadline = 60 * time.Second

type Handler struct {
	auth    *services.AuthService
	hub     *Hub
	gateway *Gateway
	router  *services.MessageRouter
	tracker *services.StatusTracker
	ledger  *services.ReactionLedger
	limiter *redisstore.RateLimiter
	log     *logger.Logger
}

func NewHandler(auth *services.AuthService, hub *Hub, gateway *Gateway, router *services.MessageRouter, tracker *services.StatusTracker, ledger *services.ReactionLedger, limiter *redisstore.RateLimiter, log *logger.Logger) *Handler {
	return &Handler{
		auth:    auth,
		hub:     hub,
		gateway: gateway,
		router:  router,
		tracker: tracker,
		ledger:  ledger,
		limiter: limiter,
		log:     log,
	}
}

// Connect upgrades an authenticated request to a WebSocket session and
// runs its read loop. An authenticated connect is the join intent: the
// gateway binds the user immediately after the upgrade.
func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	claims, err := h.auth.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, claims.UserID, claims.Username)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	metrics.WsConnections.Inc()
	go client.WriteLoop(ctx)

	if err := h.gateway.OnJoin(ctx, userID, client.ID); err != nil {
		// join_error already pushed; give the write loop a moment to
		// flush before tearing the connection down.
		time.Sleep(100 * time.Millisecond)
		h.hub.Unregister(client)
		metrics.WsConnections.Dec()
		client.Close()
		return
	}

	h.readLoop(ctx, client)

	h.hub.Unregister(client)
	metrics.WsConnections.Dec()
	h.gateway.OnDisconnect(ctx, client.ID)
}

func (h *Handler) readLoop(ctx context.Context, client *Client) {
	_ = client.Conn.SetReadDeadline(time.Now().Add(readDeadline))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		_, data, err := client.Conn.ReadMessage()
		if err != nil {
			return
		}
		_ = client.Conn.SetReadDeadline(time.Now().Add(readDeadline))

		var env events.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.pushError(client, moodchat_errors.ErrInvalidInput)
			continue
		}
		h.dispatch(ctx, client, env)
	}
}

func (h *Handler) dispatch(ctx context.Context, client *Client, env events.Envelope) {
	switch env.Type {
	case events.EventTypeSendMessage:
		var p events.SendMessagePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.pushError(client, moodchat_errors.ErrInvalidInput)
			return
		}
		if h.limiter != nil {
			if res, err := h.limiter.AllowMessage(ctx, client.UserID); err == nil && !res.Allowed {
				h.pushMessageError(client, moodchat_errors.ErrRateLimited)
				return
			}
		}
		if _, err := h.router.Send(ctx, client.ID, p); err != nil {
			h.pushMessageError(client, err)
		}

	case events.EventTypeTyping:
		var p events.TypingPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return
		}
		h.gateway.Typing(client.UserID, client.Username, p)

	case events.EventTypeMarkMessageSeen:
		var p events.MarkMessageSeenPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.pushError(client, moodchat_errors.ErrInvalidInput)
			return
		}
		messageID, err := uuid.Parse(p.MessageID)
		if err != nil {
			h.pushError(client, moodchat_errors.ErrInvalidInput)
			return
		}
		observerID, ok := h.observer(client)
		if !ok {
			h.pushError(client, moodchat_errors.ErrNotAuthenticated)
			return
		}
		if err := h.tracker.MarkSeen(ctx, messageID, observerID); err != nil {
			h.pushError(client, err)
		}

	case events.EventTypeMarkConversationSeen:
		var p events.MarkConversationSeenPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.pushError(client, moodchat_errors.ErrInvalidInput)
			return
		}
		senderID, err := uuid.Parse(p.SenderID)
		if err != nil {
			h.pushError(client, moodchat_errors.ErrInvalidInput)
			return
		}
		observerID, ok := h.observer(client)
		if !ok {
			h.pushError(client, moodchat_errors.ErrNotAuthenticated)
			return
		}
		if _, err := h.tracker.MarkAllSeenFrom(ctx, senderID, observerID); err != nil {
			h.pushError(client, err)
		}

	case events.EventTypeReact:
		var p events.ReactPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.pushError(client, moodchat_errors.ErrInvalidInput)
			return
		}
		messageID, err := uuid.Parse(p.MessageID)
		if err != nil {
			h.pushError(client, moodchat_errors.ErrInvalidInput)
			return
		}
		observerID, ok := h.observer(client)
		if !ok {
			h.pushError(client, moodchat_errors.ErrNotAuthenticated)
			return
		}
		if _, err := h.ledger.Toggle(ctx, messageID, p.Emoji, observerID); err != nil {
			h.pushError(client, err)
		}

	default:
		h.pushError(client, moodchat_errors.ErrInvalidInput)
	}
}

// observer resolves the caller's user id, requiring a live registry
// binding: a connection evicted by a newer login can no longer act.
func (h *Handler) observer(client *Client) (uuid.UUID, bool) {
	userRaw, ok := h.gateway.registry.UserFor(client.ID)
	if !ok {
		return uuid.UUID{}, false
	}
	userID, err := uuid.Parse(userRaw)
	if err != nil {
		return uuid.UUID{}, false
	}
	return userID, true
}

func (h *Handler) pushMessageError(client *Client, err error) {
	_ = h.hub.Push(client.ID, events.EventTypeMessageError, events.ErrorPayload{
		Error: err.Error(),
		Code:  errorCode(err),
	})
}

func (h *Handler) pushError(client *Client, err error) {
	_ = h.hub.Push(client.ID, events.EventTypeError, events.ErrorPayload{
		Error: err.Error(),
		Code:  errorCode(err),
	})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, moodchat_errors.ErrNotAuthenticated):
		return "NOT_AUTHENTICATED"
	case errors.Is(err, moodchat_errors.ErrEmptyMessage):
		return "EMPTY_MESSAGE"
	case errors.Is(err, moodchat_errors.ErrNotFound):
		return "MESSAGE_NOT_FOUND"
	case errors.Is(err, moodchat_errors.ErrInvalidInput):
		return "INVALID_REQUEST"
	case errors.Is(err, moodchat_errors.ErrRateLimited):
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}
