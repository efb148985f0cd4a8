package services

import (
	"context"
	"errors"

	"nearchat/internal/domain"
	"nearchat/internal/events"
	"nearchat/internal/repository"
	nearchat_errors "nearchat/pkg/errors"
	"nearchat/pkg/logger"

	"go.uber.org/zap"
)

// UnreadService maintains the per-conversation read flags and notifies the
// recipient of a private message: an in-band counter push when they are
// online elsewhere, a web push when they are offline, nothing when they are
// already viewing the conversation.
type UnreadService struct {
	conversations repository.ConversationRepository
	users         repository.UserRepository
	presence      PresenceStore
	publisher     Publisher
	push          PushSender
	log           *logger.Logger
}

func NewUnreadService(
	conversations repository.ConversationRepository,
	users repository.UserRepository,
	presence PresenceStore,
	publisher Publisher,
	push PushSender,
	log *logger.Logger,
) *UnreadService {
	return &UnreadService{
		conversations: conversations,
		users:         users,
		presence:      presence,
		publisher:     publisher,
		push:          push,
		log:           log,
	}
}

// AfterPrivateMessage updates read flags for a freshly stored private message
// and routes the recipient notification. Failures here never fail the send;
// the message is already persisted and broadcast.
func (s *UnreadService) AfterPrivateMessage(ctx context.Context, conv domain.Conversation, senderID int64, senderNickname, text string, msgType domain.MessageType) {
	recipientID := conv.OtherParticipant(senderID)
	if recipientID == 0 {
		return
	}

	viewing, err := s.presence.IsViewing(ctx, conv.ID, recipientID)
	if err != nil {
		s.log.Error("viewer check failed", zap.Int64("conversation_id", conv.ID), zap.Error(err))
		viewing = false
	}

	read1, read2 := true, viewing
	if senderID == conv.User2ID {
		read1, read2 = viewing, true
	}
	if err := s.conversations.SetReadFlags(ctx, conv.ID, read1, read2); err != nil {
		s.log.Error("read flag update failed", zap.Int64("conversation_id", conv.ID), zap.Error(err))
	}

	if viewing {
		return
	}

	online, err := s.presence.IsUserOnline(ctx, recipientID)
	if err != nil {
		s.log.Error("online check failed", zap.Int64("user_id", recipientID), zap.Error(err))
		return
	}
	if online {
		s.pushUnreadCount(ctx, recipientID)
		return
	}
	s.sendWebPush(ctx, recipientID, senderNickname, text, msgType)
}

// MarkViewed marks the conversation read for userID. Used when a user opens
// a private room, so counters drop immediately.
func (s *UnreadService) MarkViewed(ctx context.Context, conversationID, userID int64) error {
	return s.conversations.MarkRead(ctx, conversationID, userID)
}

// UnreadCount returns the number of conversations holding unread messages for
// userID.
func (s *UnreadService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.conversations.CountUnread(ctx, userID)
}

// pushUnreadCount recomputes the unread conversation count and pushes it on
// the recipient's user channel.
func (s *UnreadService) pushUnreadCount(ctx context.Context, userID int64) {
	count, err := s.conversations.CountUnread(ctx, userID)
	if err != nil {
		s.log.Error("unread count failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	payload, err := events.Encode(events.OutboundNewPrivateMessages, events.NewPrivateMessages{
		UnreadPrivateMessagesCount: count,
	})
	if err != nil {
		s.log.Error("unread count encode failed", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, events.UserChannel(userID), payload); err != nil {
		s.log.Error("unread count publish failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (s *UnreadService) sendWebPush(ctx context.Context, userID int64, senderNickname, text string, msgType domain.MessageType) {
	if s.push == nil {
		return
	}
	sub, err := s.users.GetPushSubscription(ctx, userID)
	if err != nil {
		if !errors.Is(err, nearchat_errors.ErrNotFound) {
			s.log.Error("push subscription lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		return
	}
	if err := s.push.Send(ctx, sub, senderNickname, pushPreview(text, msgType)); err != nil {
		s.log.Error("web push failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// pushPreview renders the notification body. Media messages carry an URL as
// body text, so they get a fixed caption instead.
func pushPreview(text string, msgType domain.MessageType) string {
	switch msgType {
	case domain.MessageTypeAudio:
		return "🎤 Audio sent"
	case domain.MessageTypeImage:
		return "🌅 Image sent"
	case domain.MessageTypeVideo:
		return "📹 Video sent"
	}
	return text
}
