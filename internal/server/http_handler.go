package server

import (
	"errors"
	"net/http"
	"strconv"

	"nearchat/internal/domain"
	"nearchat/internal/middleware"
	"nearchat/internal/repository"
	"nearchat/internal/services"
	nearchat_errors "nearchat/pkg/errors"

	"github.com/gin-gonic/gin"
)

// HTTPHandler serves the small REST surface next to the socket: moderation,
// room deletion and push subscription registration.
type HTTPHandler struct {
	moderation *services.ModerationService
	rooms      *services.RoomService
	unread     *services.UnreadService
	users      repository.UserRepository
}

func NewHTTPHandler(
	moderation *services.ModerationService,
	rooms *services.RoomService,
	unread *services.UnreadService,
	users repository.UserRepository,
) *HTTPHandler {
	return &HTTPHandler{
		moderation: moderation,
		rooms:      rooms,
		unread:     unread,
		users:      users,
	}
}

type moderationRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

func (h *HTTPHandler) Ban(c *gin.Context) {
	actor, roomID, ok := h.actorAndRoom(c)
	if !ok {
		return
	}
	var req moderationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	if err := h.moderation.Ban(c.Request.Context(), actor.ID, req.UserID, roomID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"banned": req.UserID})
}

func (h *HTTPHandler) Unban(c *gin.Context) {
	actor, roomID, ok := h.actorAndRoom(c)
	if !ok {
		return
	}
	var req moderationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	if err := h.moderation.Unban(c.Request.Context(), actor.ID, req.UserID, roomID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unbanned": req.UserID})
}

func (h *HTTPHandler) DeleteRoom(c *gin.Context) {
	actor, roomID, ok := h.actorAndRoom(c)
	if !ok {
		return
	}
	if err := h.rooms.Delete(c.Request.Context(), actor.ID, roomID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": roomID})
}

type pushSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256dh   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

func (h *HTTPHandler) SubscribePush(c *gin.Context) {
	user, ok := contextUser(c)
	if !ok {
		return
	}
	var req pushSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint, p256dh and auth required"})
		return
	}
	err := h.users.SavePushSubscription(c.Request.Context(), &domain.PushSubscription{
		UserID:   user.ID,
		Endpoint: req.Endpoint,
		P256dh:   req.P256dh,
		Auth:     req.Auth,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subscribed": true})
}

func (h *HTTPHandler) UnreadCount(c *gin.Context) {
	user, ok := contextUser(c)
	if !ok {
		return
	}
	count, err := h.unread.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_private_messages_count": count})
}

func (h *HTTPHandler) actorAndRoom(c *gin.Context) (domain.User, int64, bool) {
	user, ok := contextUser(c)
	if !ok {
		return domain.User{}, 0, false
	}
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return domain.User{}, 0, false
	}
	return user, roomID, true
}

func contextUser(c *gin.Context) (domain.User, bool) {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return domain.User{}, false
	}
	user, ok := value.(domain.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return domain.User{}, false
	}
	return user, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, nearchat_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, nearchat_errors.ErrForbidden), errors.Is(err, nearchat_errors.ErrBanned):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, nearchat_errors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, nearchat_errors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case errors.Is(err, nearchat_errors.ErrConflict), errors.Is(err, nearchat_errors.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
