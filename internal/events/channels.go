package events

import "fmt"

// Broadcast group / pub-sub channel names. The same names are used for local
// hub groups and for the Redis channels that fan events out across processes.
const (
	ChannelPrefixRoom         = "room:"
	ChannelPrefixConversation = "conv:"
	ChannelPrefixUser         = "user:"
)

func RoomChannel(roomID int64) string {
	return fmt.Sprintf("%s%d", ChannelPrefixRoom, roomID)
}

func ConversationChannel(conversationID int64) string {
	return fmt.Sprintf("%s%d", ChannelPrefixConversation, conversationID)
}

// UserChannel is the user-scoped group used for out-of-band events (ban
// notice, unread-count push) regardless of which room the user is viewing.
func UserChannel(userID int64) string {
	return fmt.Sprintf("%s%d", ChannelPrefixUser, userID)
}
