package bot

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

type presenceMock struct {
	mock.Mock
}

func (m *presenceMock) RoomBots(ctx context.Context, roomID int64) ([]int64, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type completerMock struct {
	mock.Mock
}

func (m *completerMock) Complete(ctx context.Context, system string, turns []Turn) (string, error) {
	args := m.Called(ctx, system, turns)
	return args.String(0), args.Error(1)
}

type injectorMock struct {
	mock.Mock
}

func (m *injectorMock) InjectBotMessage(ctx context.Context, roomID, botID int64, text string) (events.BroadcastMessage, error) {
	args := m.Called(ctx, roomID, botID, text)
	return args.Get(0).(events.BroadcastMessage), args.Error(1)
}

func TestSanitizeReply(t *testing.T) {
	reply, ok := sanitizeReply("  hola\n\n\nque tal  ")
	require.True(t, ok)
	assert.Equal(t, "hola\nque tal", reply)

	_, ok = sanitizeReply("   \n  ")
	assert.False(t, ok)

	_, ok = sanitizeReply("weird####payload")
	assert.False(t, ok)
}

func TestBuildTurns(t *testing.T) {
	roomID := int64(1)
	history := []domain.RoomMessageView{
		{Message: domain.Message{RoomID: &roomID, UserID: 5, Body: "hi there", Type: domain.MessageTypeText}, Nickname: "ana"},
		{Message: domain.Message{RoomID: &roomID, UserID: 9000001, Body: "hey!", Type: domain.MessageTypeText}, Nickname: "Marta"},
		{Message: domain.Message{RoomID: &roomID, UserID: 5, Body: "http://img", Type: domain.MessageTypeImage}, Nickname: "ana"},
		{Message: domain.Message{RoomID: &roomID, UserID: 7, Body: "what's up", Type: domain.MessageTypeText}, Nickname: "leo99"},
	}

	turns := buildTurns(history, 9000001)
	require.Len(t, turns, 3)
	assert.Equal(t, Turn{Content: "ana: hi there"}, turns[0])
	assert.Equal(t, Turn{FromBot: true, Content: "hey!"}, turns[1])
	assert.Equal(t, Turn{Content: "leo99: what's up"}, turns[2])
}

func newTestReplier(rooms *mocks.RoomRepository, messages *mocks.MessageRepository, users *mocks.UserRepository, presence *presenceMock, completer *completerMock, injector *injectorMock) *Replier {
	return NewReplier(rooms, messages, users, presence, completer, injector, logger.GetGlobalLogger())
}

func TestReplyRoomGone(t *testing.T) {
	rooms := new(mocks.RoomRepository)
	rooms.On("GetByID", mock.Anything, int64(1)).Return(domain.Room{}, nearchat_errors.ErrNotFound)

	r := newTestReplier(rooms, new(mocks.MessageRepository), new(mocks.UserRepository), new(presenceMock), new(completerMock), new(injectorMock))
	assert.NoError(t, r.Reply(context.Background(), 1))
	rooms.AssertExpectations(t)
}

func TestReplyBotWithdrawn(t *testing.T) {
	rooms := new(mocks.RoomRepository)
	rooms.On("GetByID", mock.Anything, int64(1)).Return(domain.Room{ID: 1, Name: "plaza"}, nil)
	presence := new(presenceMock)
	presence.On("RoomBots", mock.Anything, int64(1)).Return([]int64{}, nil)

	injector := new(injectorMock)
	r := newTestReplier(rooms, new(mocks.MessageRepository), new(mocks.UserRepository), presence, new(completerMock), injector)
	assert.NoError(t, r.Reply(context.Background(), 1))
	injector.AssertNotCalled(t, "InjectBotMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReplyCompletionFailureStaysSilent(t *testing.T) {
	roomID := int64(1)
	rooms := new(mocks.RoomRepository)
	rooms.On("GetByID", mock.Anything, roomID).Return(domain.Room{ID: 1, Name: "plaza"}, nil)
	presence := new(presenceMock)
	presence.On("RoomBots", mock.Anything, roomID).Return([]int64{9000001}, nil)
	users := new(mocks.UserRepository)
	users.On("EnsureBot", mock.Anything, mock.Anything).Return(nil)
	messages := new(mocks.MessageRepository)
	messages.On("LastRoomMessages", mock.Anything, roomID, historyWindow).Return([]domain.RoomMessageView{
		{Message: domain.Message{RoomID: &roomID, UserID: 5, Body: "hello?", Type: domain.MessageTypeText}, Nickname: "ana"},
	}, nil)
	completer := new(completerMock)
	completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", assert.AnError)

	injector := new(injectorMock)
	r := newTestReplier(rooms, messages, users, presence, completer, injector)
	assert.NoError(t, r.Reply(context.Background(), roomID))
	injector.AssertNotCalled(t, "InjectBotMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReplyInjectsSanitizedText(t *testing.T) {
	roomID := int64(1)
	rooms := new(mocks.RoomRepository)
	rooms.On("GetByID", mock.Anything, roomID).Return(domain.Room{ID: 1, Name: "plaza"}, nil)
	presence := new(presenceMock)
	presence.On("RoomBots", mock.Anything, roomID).Return([]int64{9000001, 9000002}, nil)
	users := new(mocks.UserRepository)
	users.On("EnsureBot", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == 9000001 && u.Nickname == "Marta"
	})).Return(nil)
	messages := new(mocks.MessageRepository)
	messages.On("LastRoomMessages", mock.Anything, roomID, historyWindow).Return([]domain.RoomMessageView{
		{Message: domain.Message{RoomID: &roomID, UserID: 5, Body: "anyone here?", Type: domain.MessageTypeText}, Nickname: "ana"},
	}, nil)
	completer := new(completerMock)
	completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("yes!\n\n\nstill around ", nil)
	injector := new(injectorMock)
	injector.On("InjectBotMessage", mock.Anything, roomID, int64(9000001), "yes!\nstill around").
		Return(events.BroadcastMessage{ID: 10}, nil)

	r := newTestReplier(rooms, messages, users, presence, completer, injector)
	require.NoError(t, r.Reply(context.Background(), roomID))
	injector.AssertExpectations(t)
}

func TestReplyEmptyHistorySkips(t *testing.T) {
	roomID := int64(1)
	rooms := new(mocks.RoomRepository)
	rooms.On("GetByID", mock.Anything, roomID).Return(domain.Room{ID: 1, Name: "plaza"}, nil)
	presence := new(presenceMock)
	presence.On("RoomBots", mock.Anything, roomID).Return([]int64{9000001}, nil)
	users := new(mocks.UserRepository)
	users.On("EnsureBot", mock.Anything, mock.Anything).Return(nil)
	messages := new(mocks.MessageRepository)
	messages.On("LastRoomMessages", mock.Anything, roomID, historyWindow).Return([]domain.RoomMessageView{}, nil)

	completer := new(completerMock)
	r := newTestReplier(rooms, messages, users, presence, completer, new(injectorMock))
	assert.NoError(t, r.Reply(context.Background(), roomID))
	completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}
