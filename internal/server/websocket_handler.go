package server

import (
	"context"
	"errors"
	"net/http"

	"nearchat/internal/events"
	"nearchat/internal/hub"
	"nearchat/internal/services"
	nearchat_errors "nearchat/pkg/errors"
	"nearchat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler owns the connection lifecycle: upgrade, the per-connection
// read loop dispatching inbound events, and disconnect cleanup.
type WebSocketHandler struct {
	hub        *hub.Hub
	auth       *services.AuthService
	presence   services.PresenceStore
	rooms      *services.RoomService
	messages   *services.MessageService
	unread     *services.UnreadService
	moderation *services.ModerationService
	log        *logger.Logger
}

func NewWebSocketHandler(
	h *hub.Hub,
	auth *services.AuthService,
	presence services.PresenceStore,
	rooms *services.RoomService,
	messages *services.MessageService,
	unread *services.UnreadService,
	moderation *services.ModerationService,
	log *logger.Logger,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:        h,
		auth:       auth,
		presence:   presence,
		rooms:      rooms,
		messages:   messages,
		unread:     unread,
		moderation: moderation,
		log:        log,
	}
}

// Handle upgrades the request and runs the connection's read loop until the
// peer goes away.
func (h *WebSocketHandler) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	user, err := h.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}

	client := hub.NewClient(h.hub, conn, h.log)
	client.UserID = user.ID
	client.Nickname = user.Nickname
	h.hub.Register(client)

	h.readLoop(client)
}

func (h *WebSocketHandler) readLoop(client *hub.Client) {
	defer h.cleanup(client)

	for {
		raw, err := client.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket closed unexpectedly", zap.Int64("user_id", client.UserID), zap.Error(err))
			}
			return
		}

		env, payload, err := events.ParseInbound(raw)
		if err != nil {
			h.log.Warn("inbound event rejected", zap.Int64("user_id", client.UserID), zap.Error(err))
			continue
		}

		ctx := context.Background()
		var handleErr error
		switch p := payload.(type) {
		case *events.JoinHome:
			handleErr = h.onJoinHome(ctx, client)
		case *events.JoinRoom:
			handleErr = h.onJoinRoom(ctx, client, p)
		case *events.LeaveRoom:
			handleErr = h.onLeaveRoom(ctx, client, p.RoomID)
		case *events.RoomMessage:
			handleErr = h.onRoomMessage(ctx, client, p)
		case *events.DeleteChat:
			handleErr = h.onDeleteChat(ctx, p)
		case *events.UpdateChatData:
			handleErr = h.onUpdateChatData(ctx, client, p)
		case *events.JoinPrivateRoom:
			handleErr = h.onJoinPrivateRoom(ctx, client, p)
		case *events.LeavePrivateRoom:
			handleErr = h.onLeavePrivateRoom(ctx, client, p.ConversationID)
		case *events.PrivateMessage:
			handleErr = h.onPrivateMessage(ctx, client, p)
		}

		if handleErr != nil {
			h.log.Error("event handling failed",
				zap.String("event", env.Event),
				zap.Int64("user_id", client.UserID),
				zap.Error(handleErr),
			)
		}
		if env.Ack != 0 {
			h.sendEvent(client, events.OutboundAck, events.Ack{ID: env.Ack, OK: handleErr == nil})
		}
	}
}

// cleanup mirrors a disconnect: presence leaves for whatever the session had
// joined, then hub deregistration. A connection that never identified has
// nothing to undo.
func (h *WebSocketHandler) cleanup(client *hub.Client) {
	defer h.hub.Unregister(client)

	if !client.Identified() {
		return
	}
	ctx := context.Background()

	if client.CurrentRoomID != 0 {
		if err := h.rooms.Leave(ctx, client.CurrentRoomID, client.UserID, client.Nickname); err != nil {
			h.log.Error("disconnect room leave failed", zap.Int64("room_id", client.CurrentRoomID), zap.Error(err))
		}
	}
	if client.CurrentConversationID != 0 {
		if err := h.presence.LeaveConversation(ctx, client.CurrentConversationID, client.UserID); err != nil {
			h.log.Error("disconnect conversation leave failed", zap.Int64("conversation_id", client.CurrentConversationID), zap.Error(err))
		}
	}
	if err := h.presence.SetUserOffline(ctx, client.UserID); err != nil {
		h.log.Error("offline mark failed", zap.Int64("user_id", client.UserID), zap.Error(err))
	}
}

func (h *WebSocketHandler) onJoinHome(ctx context.Context, client *hub.Client) error {
	h.hub.Subscribe(client, events.UserChannel(client.UserID))
	return h.presence.SetUserOnline(ctx, client.UserID)
}

func (h *WebSocketHandler) onJoinRoom(ctx context.Context, client *hub.Client, p *events.JoinRoom) error {
	if p.Nickname != "" {
		client.Nickname = p.Nickname
	}

	// A connection holds at most one room; switching rooms leaves the old one
	// first.
	if client.CurrentRoomID != 0 && client.CurrentRoomID != p.RoomID {
		if err := h.onLeaveRoom(ctx, client, client.CurrentRoomID); err != nil {
			return err
		}
	}

	_, err := h.rooms.Join(ctx, p.RoomID, client.UserID, client.Nickname)
	if err != nil {
		if errors.Is(err, nearchat_errors.ErrBanned) {
			h.sendEvent(client, events.OutboundBanned, events.Banned{ChatID: p.RoomID})
			return nil
		}
		return err
	}

	h.hub.Subscribe(client, events.RoomChannel(p.RoomID))
	// Re-subscribing the user channel and re-marking the global online set
	// are idempotent; both cover sessions that skipped join-home.
	h.hub.Subscribe(client, events.UserChannel(client.UserID))
	if err := h.presence.SetUserOnline(ctx, client.UserID); err != nil {
		return err
	}
	client.CurrentRoomID = p.RoomID
	return nil
}

func (h *WebSocketHandler) onLeaveRoom(ctx context.Context, client *hub.Client, roomID int64) error {
	h.hub.Unsubscribe(client, events.RoomChannel(roomID))
	if client.CurrentRoomID == roomID {
		client.CurrentRoomID = 0
	}
	return h.rooms.Leave(ctx, roomID, client.UserID, client.Nickname)
}

func (h *WebSocketHandler) onRoomMessage(ctx context.Context, client *hub.Client, p *events.RoomMessage) error {
	// frames without a room id have nowhere to go
	if p.RoomID == 0 {
		return nil
	}
	banned, err := h.moderation.IsBanned(ctx, client.UserID, p.RoomID)
	if err != nil {
		return err
	}
	if banned {
		h.sendEvent(client, events.OutboundBanned, events.Banned{ChatID: p.RoomID})
		return nil
	}
	_, err = h.messages.PublishRoomMessage(ctx, p.RoomID, client.UserID, p.Message)
	return err
}

// onDeleteChat re-authenticates with the token carried in the payload; room
// deletion is too destructive to trust session state alone.
func (h *WebSocketHandler) onDeleteChat(ctx context.Context, p *events.DeleteChat) error {
	actor, err := h.auth.Authenticate(ctx, p.Token)
	if err != nil {
		return err
	}
	return h.rooms.Delete(ctx, actor.ID, p.RoomID)
}

func (h *WebSocketHandler) onUpdateChatData(ctx context.Context, client *hub.Client, p *events.UpdateChatData) error {
	if client.CurrentRoomID == 0 {
		return nearchat_errors.ErrInvalidInput
	}
	return h.rooms.UpdateInfo(ctx, client.UserID, client.CurrentRoomID, p.Name, p.Description)
}

func (h *WebSocketHandler) onJoinPrivateRoom(ctx context.Context, client *hub.Client, p *events.JoinPrivateRoom) error {
	if client.CurrentConversationID != 0 && client.CurrentConversationID != p.ConversationID {
		if err := h.onLeavePrivateRoom(ctx, client, client.CurrentConversationID); err != nil {
			return err
		}
	}

	if err := h.presence.JoinConversation(ctx, p.ConversationID, client.UserID); err != nil {
		return err
	}
	h.hub.Subscribe(client, events.ConversationChannel(p.ConversationID))
	client.CurrentConversationID = p.ConversationID

	// Opening the conversation consumes its unread state.
	return h.unread.MarkViewed(ctx, p.ConversationID, client.UserID)
}

func (h *WebSocketHandler) onLeavePrivateRoom(ctx context.Context, client *hub.Client, conversationID int64) error {
	h.hub.Unsubscribe(client, events.ConversationChannel(conversationID))
	if client.CurrentConversationID == conversationID {
		client.CurrentConversationID = 0
	}
	return h.presence.LeaveConversation(ctx, conversationID, client.UserID)
}

func (h *WebSocketHandler) onPrivateMessage(ctx context.Context, client *hub.Client, p *events.PrivateMessage) error {
	_, err := h.messages.PublishPrivateMessage(ctx, p.ConversationID, client.UserID, p.Message.TargetID, p.Message.MessageBody)
	return err
}

// sendEvent encodes and queues a frame directly on one connection, bypassing
// pub/sub.
func (h *WebSocketHandler) sendEvent(client *hub.Client, event string, payload any) {
	data, err := events.Encode(event, payload)
	if err != nil {
		h.log.Error("event encode failed", zap.String("event", event), zap.Error(err))
		return
	}
	client.SendMessage(data)
}
