package services

import (
	"context"
	"testing"

	"nearchat/internal/domain"
	"nearchat/internal/events"
	"nearchat/internal/repository/mocks"
	nearchat_errors "nearchat/pkg/errors"
	"nearchat/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUnreadService(conversations *mocks.ConversationRepository, users *mocks.UserRepository, presence *presenceMock, publisher *publisherMock, push PushSender) *UnreadService {
	return NewUnreadService(conversations, users, presence, publisher, push, logger.GetGlobalLogger())
}

var testConv = domain.Conversation{ID: 10, User1ID: 5, User2ID: 8}

func TestAfterPrivateMessageRecipientViewing(t *testing.T) {
	conversations := new(mocks.ConversationRepository)
	conversations.On("SetReadFlags", mock.Anything, int64(10), true, true).Return(nil)
	presence := new(presenceMock)
	presence.On("IsViewing", mock.Anything, int64(10), int64(8)).Return(true, nil)

	publisher := new(publisherMock)
	svc := newUnreadService(conversations, new(mocks.UserRepository), presence, publisher, nil)
	svc.AfterPrivateMessage(context.Background(), testConv, 5, "ana", "hi", domain.MessageTypeText)

	conversations.AssertExpectations(t)
	assert.Empty(t, publisher.frames)
}

func TestAfterPrivateMessageSenderIsUser2(t *testing.T) {
	conversations := new(mocks.ConversationRepository)
	// sender 8 holds read2; recipient 5 is not viewing, so read1 goes false
	conversations.On("SetReadFlags", mock.Anything, int64(10), false, true).Return(nil)
	conversations.On("CountUnread", mock.Anything, int64(5)).Return(int64(3), nil)
	presence := new(presenceMock)
	presence.On("IsViewing", mock.Anything, int64(10), int64(5)).Return(false, nil)
	presence.On("IsUserOnline", mock.Anything, int64(5)).Return(true, nil)
	publisher := new(publisherMock)
	publisher.On("Publish", mock.Anything, "user:5", mock.Anything).Return(nil)

	svc := newUnreadService(conversations, new(mocks.UserRepository), presence, publisher, nil)
	svc.AfterPrivateMessage(context.Background(), testConv, 8, "bea", "hi", domain.MessageTypeText)

	conversations.AssertExpectations(t)
	require.Len(t, publisher.frames, 1)

	var counter events.NewPrivateMessages
	assert.Equal(t, events.OutboundNewPrivateMessages, publisher.decodeFrame(0, &counter))
	assert.Equal(t, int64(3), counter.UnreadPrivateMessagesCount)
}

func TestAfterPrivateMessageOfflineSendsWebPush(t *testing.T) {
	conversations := new(mocks.ConversationRepository)
	conversations.On("SetReadFlags", mock.Anything, int64(10), true, false).Return(nil)
	presence := new(presenceMock)
	presence.On("IsViewing", mock.Anything, int64(10), int64(8)).Return(false, nil)
	presence.On("IsUserOnline", mock.Anything, int64(8)).Return(false, nil)

	sub := domain.PushSubscription{UserID: 8, Endpoint: "https://push", P256dh: "k", Auth: "a"}
	users := new(mocks.UserRepository)
	users.On("GetPushSubscription", mock.Anything, int64(8)).Return(sub, nil)
	push := new(pushSenderMock)
	push.On("Send", mock.Anything, sub, "ana", "hola!").Return(nil)

	svc := newUnreadService(conversations, users, presence, new(publisherMock), push)
	svc.AfterPrivateMessage(context.Background(), testConv, 5, "ana", "hola!", domain.MessageTypeText)
	push.AssertExpectations(t)
}

func TestAfterPrivateMessageOfflineMediaCaptions(t *testing.T) {
	tests := []struct {
		msgType domain.MessageType
		caption string
	}{
		{domain.MessageTypeAudio, "🎤 Audio sent"},
		{domain.MessageTypeImage, "🌅 Image sent"},
		{domain.MessageTypeVideo, "📹 Video sent"},
	}
	for _, tt := range tests {
		t.Run(string(tt.msgType), func(t *testing.T) {
			conversations := new(mocks.ConversationRepository)
			conversations.On("SetReadFlags", mock.Anything, int64(10), true, false).Return(nil)
			presence := new(presenceMock)
			presence.On("IsViewing", mock.Anything, int64(10), int64(8)).Return(false, nil)
			presence.On("IsUserOnline", mock.Anything, int64(8)).Return(false, nil)

			sub := domain.PushSubscription{UserID: 8, Endpoint: "https://push"}
			users := new(mocks.UserRepository)
			users.On("GetPushSubscription", mock.Anything, int64(8)).Return(sub, nil)
			push := new(pushSenderMock)
			push.On("Send", mock.Anything, sub, "ana", tt.caption).Return(nil)

			svc := newUnreadService(conversations, users, presence, new(publisherMock), push)
			svc.AfterPrivateMessage(context.Background(), testConv, 5, "ana", "ignored-url", tt.msgType)
			push.AssertExpectations(t)
		})
	}
}

func TestAfterPrivateMessageOfflineNoSubscription(t *testing.T) {
	conversations := new(mocks.ConversationRepository)
	conversations.On("SetReadFlags", mock.Anything, int64(10), true, false).Return(nil)
	presence := new(presenceMock)
	presence.On("IsViewing", mock.Anything, int64(10), int64(8)).Return(false, nil)
	presence.On("IsUserOnline", mock.Anything, int64(8)).Return(false, nil)
	users := new(mocks.UserRepository)
	users.On("GetPushSubscription", mock.Anything, int64(8)).Return(domain.PushSubscription{}, nearchat_errors.ErrNotFound)
	push := new(pushSenderMock)

	svc := newUnreadService(conversations, users, presence, new(publisherMock), push)
	svc.AfterPrivateMessage(context.Background(), testConv, 5, "ana", "hi", domain.MessageTypeText)
	push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkViewed(t *testing.T) {
	conversations := new(mocks.ConversationRepository)
	conversations.On("MarkRead", mock.Anything, int64(10), int64(8)).Return(nil)

	svc := newUnreadService(conversations, new(mocks.UserRepository), new(presenceMock), new(publisherMock), nil)
	require.NoError(t, svc.MarkViewed(context.Background(), 10, 8))
	conversations.AssertExpectations(t)
}
