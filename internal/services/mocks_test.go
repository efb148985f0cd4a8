package services

import (
	"context"
	"encoding/json"

	"nearchat/internal/domain"
	"nearchat/internal/events"

	"github.com/stretchr/testify/mock"
)

type presenceMock struct {
	mock.Mock
}

func (m *presenceMock) SetUserOnline(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *presenceMock) SetUserOffline(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *presenceMock) IsUserOnline(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *presenceMock) JoinRoom(ctx context.Context, roomID int64, nickname string, userID int64) error {
	return m.Called(ctx, roomID, nickname, userID).Error(0)
}

func (m *presenceMock) LeaveRoom(ctx context.Context, roomID int64, nickname string, userID int64) error {
	return m.Called(ctx, roomID, nickname, userID).Error(0)
}

func (m *presenceMock) RoomMembers(ctx context.Context, roomID int64) ([]string, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *presenceMock) JoinConversation(ctx context.Context, conversationID, userID int64) error {
	return m.Called(ctx, conversationID, userID).Error(0)
}

func (m *presenceMock) LeaveConversation(ctx context.Context, conversationID, userID int64) error {
	return m.Called(ctx, conversationID, userID).Error(0)
}

func (m *presenceMock) IsViewing(ctx context.Context, conversationID, userID int64) (bool, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *presenceMock) RoomBots(ctx context.Context, roomID int64) ([]int64, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *presenceMock) ClearRoom(ctx context.Context, roomID int64) error {
	return m.Called(ctx, roomID).Error(0)
}

func (m *presenceMock) RoomKeys(ctx context.Context) (map[int64][]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]string), args.Error(1)
}

// publisherMock records every published frame so tests can assert on channel
// and decoded payload.
type publisherMock struct {
	mock.Mock
	frames []publishedFrame
}

type publishedFrame struct {
	Channel string
	Payload []byte
}

func (m *publisherMock) Publish(ctx context.Context, channel string, payload []byte) error {
	m.frames = append(m.frames, publishedFrame{Channel: channel, Payload: payload})
	return m.Called(ctx, channel, payload).Error(0)
}

// decodeFrame unwraps the envelope of the i-th published frame into out and
// returns the event name.
func (m *publisherMock) decodeFrame(i int, out any) string {
	var env events.Envelope
	if err := json.Unmarshal(m.frames[i].Payload, &env); err != nil {
		panic(err)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			panic(err)
		}
	}
	return env.Event
}

type pushSenderMock struct {
	mock.Mock
}

func (m *pushSenderMock) Send(ctx context.Context, sub domain.PushSubscription, title, body string) error {
	return m.Called(ctx, sub, title, body).Error(0)
}

type botSchedulerMock struct {
	mock.Mock
}

func (m *botSchedulerMock) ScheduleReply(ctx context.Context, roomID, messageID int64) error {
	return m.Called(ctx, roomID, messageID).Error(0)
}
