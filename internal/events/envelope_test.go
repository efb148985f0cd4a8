package events

import (
	"encoding/json"
	"testing"

	"nearchat/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInboundRoomMessage(t *testing.T) {
	raw := []byte(`{"event":"message","ack":7,"data":{"room_id":42,"user_id":9,"message":{"text":"hola","msg_type":"text","quoted_msg":3}}}`)

	env, payload, err := ParseInbound(raw)
	require.NoError(t, err)
	assert.Equal(t, InboundRoomMessage, env.Event)
	assert.Equal(t, int64(7), env.Ack)

	msg, ok := payload.(*RoomMessage)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.RoomID)
	assert.Equal(t, int64(9), msg.UserID)
	assert.Equal(t, "hola", msg.Message.Text)
	require.NotNil(t, msg.Message.QuotedMsg)
	assert.Equal(t, int64(3), *msg.Message.QuotedMsg)
}

func TestParseInboundVariants(t *testing.T) {
	tests := []struct {
		event string
		data  string
		want  any
	}{
		{InboundJoinHome, `{"user_id":5}`, &JoinHome{}},
		{InboundJoinRoom, `{"room_id":1,"nickname":"ana","user_id":5}`, &JoinRoom{}},
		{InboundLeaveRoom, `{"room_id":1}`, &LeaveRoom{}},
		{InboundDeleteChat, `{"room_id":1,"token":"tok"}`, &DeleteChat{}},
		{InboundUpdateChatData, `{"name":"n","description":"d"}`, &UpdateChatData{}},
		{InboundJoinPrivateRoom, `{"conversation_id":3,"user":{"id":5,"nickname":"ana"}}`, &JoinPrivateRoom{}},
		{InboundLeavePrivateRoom, `{"conversation_id":3}`, &LeavePrivateRoom{}},
		{InboundPrivateMessage, `{"conversation_id":3,"message":{"text":"hi","msg_type":"text","target_id":8}}`, &PrivateMessage{}},
	}
	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			raw := []byte(`{"event":"` + tt.event + `","data":` + tt.data + `}`)
			_, payload, err := ParseInbound(raw)
			require.NoError(t, err)
			assert.IsType(t, tt.want, payload)
		})
	}
}

func TestParseInboundJoinPrivateRoomUser(t *testing.T) {
	raw := []byte(`{"event":"join-private-room","data":{"conversation_id":3,"user":{"id":5,"nickname":"ana"}}}`)
	_, payload, err := ParseInbound(raw)
	require.NoError(t, err)

	p := payload.(*JoinPrivateRoom)
	assert.Equal(t, int64(3), p.ConversationID)
	assert.Equal(t, int64(5), p.User.ID)
	assert.Equal(t, "ana", p.User.Nickname)
}

func TestParseInboundUnknownEvent(t *testing.T) {
	raw := []byte(`{"event":"nope","data":{}}`)
	env, payload, err := ParseInbound(raw)

	assert.Nil(t, payload)
	assert.Equal(t, "nope", env.Event)
	var unknown ErrUnknownEvent
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Event)
}

func TestParseInboundMalformed(t *testing.T) {
	_, _, err := ParseInbound([]byte(`not json`))
	assert.Error(t, err)

	_, _, err = ParseInbound([]byte(`{"event":"message","data":{"room_id":"oops"}}`))
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	raw, err := Encode(OutboundBanned, Banned{ChatID: 12})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, OutboundBanned, env.Event)

	var banned Banned
	require.NoError(t, json.Unmarshal(env.Data, &banned))
	assert.Equal(t, int64(12), banned.ChatID)
}

func TestChannels(t *testing.T) {
	assert.Equal(t, "room:7", RoomChannel(7))
	assert.Equal(t, "conv:7", ConversationChannel(7))
	assert.Equal(t, "user:7", UserChannel(7))
}

func TestMsgTypeOf(t *testing.T) {
	assert.Equal(t, domain.MessageTypeText, MsgTypeOf("text"))
	assert.Equal(t, domain.MessageTypeText, MsgTypeOf(""))
	assert.Equal(t, domain.MessageTypeText, MsgTypeOf("weird"))
	assert.Equal(t, domain.MessageTypeAudio, MsgTypeOf("audio"))
	assert.Equal(t, domain.MessageTypeImage, MsgTypeOf("image"))
	assert.Equal(t, domain.MessageTypeVideo, MsgTypeOf("video"))
}
