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
	"gorm.io/gorm"
)

// MessageService persists room and private messages, enforces retention and
// fans the result out through the publisher. It also hands room messages to
// the bot scheduler when a bot occupies the room.
type MessageService struct {
	db            *gorm.DB
	rooms         repository.RoomRepository
	messages      repository.MessageRepository
	conversations repository.ConversationRepository
	presence      PresenceStore
	publisher     Publisher
	unread        *UnreadService
	bots          BotScheduler
	log           *logger.Logger
}

func NewMessageService(
	db *gorm.DB,
	rooms repository.RoomRepository,
	messages repository.MessageRepository,
	conversations repository.ConversationRepository,
	presence PresenceStore,
	publisher Publisher,
	unread *UnreadService,
	bots BotScheduler,
	log *logger.Logger,
) *MessageService {
	return &MessageService{
		db:            db,
		rooms:         rooms,
		messages:      messages,
		conversations: conversations,
		presence:      presence,
		publisher:     publisher,
		unread:        unread,
		bots:          bots,
		log:           log,
	}
}

// PublishRoomMessage persists a room message, trims retention, broadcasts the
// stored row to the room channel and schedules a bot reply when a bot is
// assigned to the room.
func (s *MessageService) PublishRoomMessage(ctx context.Context, roomID, userID int64, body events.MessageBody) (events.BroadcastMessage, error) {
	bm, err := s.publishRoom(ctx, roomID, userID, body)
	if err != nil {
		return events.BroadcastMessage{}, err
	}
	s.maybeScheduleBotReply(ctx, roomID, userID, bm.ID)
	return bm, nil
}

// InjectBotMessage persists and broadcasts a bot-authored room message. It
// never schedules another bot reply, so bots cannot converse with each other.
func (s *MessageService) InjectBotMessage(ctx context.Context, roomID, botID int64, text string) (events.BroadcastMessage, error) {
	return s.publishRoom(ctx, roomID, botID, events.MessageBody{
		Text:    text,
		MsgType: string(domain.MessageTypeText),
	})
}

func (s *MessageService) publishRoom(ctx context.Context, roomID, userID int64, body events.MessageBody) (events.BroadcastMessage, error) {
	// a message for a room that no longer exists must not leave a row behind
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return events.BroadcastMessage{}, err
	}

	msg := domain.Message{
		RoomID:          &roomID,
		UserID:          userID,
		Body:            body.Text,
		Type:            events.MsgTypeOf(body.MsgType),
		QuotedMessageID: body.QuotedMsg,
	}

	err := s.withTx(ctx, func(repo repository.MessageRepository) error {
		if err := repo.Create(ctx, &msg); err != nil {
			return err
		}
		count, err := repo.CountByRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if count > domain.RoomRetentionLimit {
			return repo.DeleteOldestInRoom(ctx, roomID)
		}
		return nil
	})
	if err != nil {
		return events.BroadcastMessage{}, err
	}

	bm, err := s.broadcastView(ctx, msg.ID)
	if err != nil {
		return events.BroadcastMessage{}, err
	}

	payload, err := events.Encode(events.OutboundBroadcastMessages, bm)
	if err != nil {
		return events.BroadcastMessage{}, err
	}
	if err := s.publisher.Publish(ctx, events.RoomChannel(roomID), payload); err != nil {
		s.log.Error("room message publish failed",
			zap.Int64("room_id", roomID),
			zap.Int64("message_id", bm.ID),
			zap.Error(err),
		)
	}
	return bm, nil
}

// PublishPrivateMessage persists a private message, creating the conversation
// lazily when conversationID is zero, trims retention and broadcasts to the
// conversation channel. Read flags and recipient notification follow.
func (s *MessageService) PublishPrivateMessage(ctx context.Context, conversationID, senderID, targetID int64, body events.MessageBody) (events.BroadcastMessage, error) {
	conv, err := s.resolveConversation(ctx, conversationID, senderID, targetID)
	if err != nil {
		return events.BroadcastMessage{}, err
	}
	if !conv.HasParticipant(senderID) {
		return events.BroadcastMessage{}, nearchat_errors.ErrForbidden
	}

	msg := domain.Message{
		ConversationID:  &conv.ID,
		UserID:          senderID,
		Body:            body.Text,
		Type:            events.MsgTypeOf(body.MsgType),
		QuotedMessageID: body.QuotedMsg,
	}

	err = s.withTx(ctx, func(repo repository.MessageRepository) error {
		if err := repo.Create(ctx, &msg); err != nil {
			return err
		}
		count, err := repo.CountByConversation(ctx, conv.ID)
		if err != nil {
			return err
		}
		if count > domain.ConversationRetentionLimit {
			return repo.DeleteOldestInConversation(ctx, conv.ID)
		}
		return nil
	})
	if err != nil {
		return events.BroadcastMessage{}, err
	}

	bm, err := s.broadcastView(ctx, msg.ID)
	if err != nil {
		return events.BroadcastMessage{}, err
	}

	payload, err := events.Encode(events.OutboundBroadcastPrivateMessage, bm)
	if err != nil {
		return events.BroadcastMessage{}, err
	}
	if err := s.publisher.Publish(ctx, events.ConversationChannel(conv.ID), payload); err != nil {
		s.log.Error("private message publish failed",
			zap.Int64("conversation_id", conv.ID),
			zap.Int64("message_id", bm.ID),
			zap.Error(err),
		)
	}

	if s.unread != nil {
		s.unread.AfterPrivateMessage(ctx, conv, senderID, bm.Nickname, bm.Message, domain.MessageType(bm.MsgType))
	}
	return bm, nil
}

// resolveConversation loads the conversation by id, or by normalized pair
// when the client does not know the id yet. Two clients racing on the first
// message both land on the same row via the unique pair index.
func (s *MessageService) resolveConversation(ctx context.Context, conversationID, senderID, targetID int64) (domain.Conversation, error) {
	if conversationID != 0 {
		return s.conversations.GetByID(ctx, conversationID)
	}
	if targetID == 0 {
		return domain.Conversation{}, nearchat_errors.ErrInvalidInput
	}

	conv, err := s.conversations.GetByPair(ctx, senderID, targetID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, nearchat_errors.ErrNotFound) {
		return domain.Conversation{}, err
	}

	conv = domain.Conversation{User1ID: senderID, User2ID: targetID, Read1: true, Read2: true}
	err = s.conversations.Create(ctx, &conv)
	if errors.Is(err, nearchat_errors.ErrAlreadyExists) {
		return s.conversations.GetByPair(ctx, senderID, targetID)
	}
	if err != nil {
		return domain.Conversation{}, err
	}
	return conv, nil
}

// broadcastView loads the stored message joined with its author and resolves
// the quoted preview. A quote already trimmed by retention degrades to nil.
func (s *MessageService) broadcastView(ctx context.Context, messageID int64) (events.BroadcastMessage, error) {
	view, err := s.messages.GetViewByID(ctx, messageID)
	if err != nil {
		return events.BroadcastMessage{}, err
	}

	bm := events.BroadcastMessage{
		ID:        view.ID,
		UserID:    view.UserID,
		Nickname:  view.Nickname,
		Message:   view.Body,
		MsgType:   string(view.Type),
		CreatedAt: view.CreatedAt,
	}
	if view.RoomID != nil {
		bm.RoomID = *view.RoomID
	}
	if view.ConversationID != nil {
		bm.ConversationID = *view.ConversationID
	}

	if view.QuotedMessageID != nil {
		quoted, err := s.messages.GetViewByID(ctx, *view.QuotedMessageID)
		switch {
		case err == nil:
			bm.QuotedMsg = &events.QuotedPreview{
				ID:       quoted.ID,
				Nickname: quoted.Nickname,
				Message:  quoted.Body,
				MsgType:  string(quoted.Type),
			}
		case errors.Is(err, nearchat_errors.ErrNotFound):
			// quote fell off the retention window
		default:
			return events.BroadcastMessage{}, err
		}
	}
	return bm, nil
}

func (s *MessageService) maybeScheduleBotReply(ctx context.Context, roomID, userID, messageID int64) {
	if s.bots == nil {
		return
	}
	botIDs, err := s.presence.RoomBots(ctx, roomID)
	if err != nil {
		s.log.Error("room bots lookup failed", zap.Int64("room_id", roomID), zap.Error(err))
		return
	}
	if len(botIDs) == 0 {
		return
	}
	for _, id := range botIDs {
		if id == userID {
			return
		}
	}
	if err := s.bots.ScheduleReply(ctx, roomID, messageID); err != nil {
		s.log.Error("bot reply scheduling failed",
			zap.Int64("room_id", roomID),
			zap.Int64("message_id", messageID),
			zap.Error(err),
		)
	}
}

// withTx runs fn against a transaction-scoped message repository. With no
// database handle, as in unit tests, fn runs against the injected repository
// directly.
func (s *MessageService) withTx(ctx context.Context, fn func(repo repository.MessageRepository) error) error {
	if s.db == nil {
		return fn(s.messages)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repository.NewMessageRepository(tx))
	})
}
