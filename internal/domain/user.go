package domain

import "time"

// User is an anonymous identity keyed by an opaque signed token. Nicknames are
// not unique; the token is the only credential.
type User struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	Nickname  string     `gorm:"size:64;not null" json:"nickname"`
	Token     string     `gorm:"size:512;uniqueIndex" json:"-"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	IsBot     bool       `gorm:"default:false" json:"is_bot"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// PushSubscription stores one web-push endpoint per user, used when a private
// message arrives and the recipient has no live connection.
type PushSubscription struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	Endpoint  string    `gorm:"size:1024;not null" json:"endpoint"`
	P256dh    string    `gorm:"size:256;not null" json:"p256dh"`
	Auth      string    `gorm:"size:256;not null" json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}
