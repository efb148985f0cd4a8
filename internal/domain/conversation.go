package domain

import "time"

// ConversationRetentionLimit caps how many messages a two-party conversation
// keeps.
const ConversationRetentionLimit = 50

// Conversation is a private two-party chat, created lazily on the first
// message between a pair of users. The pair is stored normalized
// (User1ID < User2ID) so the unordered pair is unique, and Read1/Read2 always
// refer to the lower and higher user id respectively.
type Conversation struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	User1ID   int64     `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"user_1"`
	User2ID   int64     `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"user_2"`
	Read1     bool      `gorm:"default:true" json:"read_1"`
	Read2     bool      `gorm:"default:true" json:"read_2"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizePair orders an unordered user-id pair the way conversations store
// it.
func NormalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// HasParticipant reports whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID int64) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherParticipant returns the peer of userID, or 0 when userID is not a
// participant.
func (c *Conversation) OtherParticipant(userID int64) int64 {
	switch userID {
	case c.User1ID:
		return c.User2ID
	case c.User2ID:
		return c.User1ID
	}
	return 0
}

// ReadFlag returns the read flag belonging to userID.
func (c *Conversation) ReadFlag(userID int64) bool {
	if userID == c.User1ID {
		return c.Read1
	}
	return c.Read2
}
