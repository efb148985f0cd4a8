package domain

import "time"

// RoomRetentionLimit caps how many messages a room keeps; the oldest message
// is pruned once an insert pushes the count past the limit.
const RoomRetentionLimit = 100

// Room is a geo-discoverable chat. Deletion is an explicit admin action that
// cascades to messages and roles and clears presence.
type Room struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:512" json:"description"`
	IsPrivate   bool      `gorm:"default:false" json:"is_private"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	CreatedAt   time.Time `json:"created_at"`
}

// OnlineSnapshot is the periodic copy of a room's presence set into the
// durable store, consumed by the discovery/popularity collaborator.
type OnlineSnapshot struct {
	RoomID    int64     `gorm:"primaryKey" json:"room_id"`
	Users     string    `gorm:"type:text" json:"users"` // JSON array of nicknames
	UpdatedAt time.Time `json:"updated_at"`
}
