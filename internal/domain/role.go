package domain

import "time"

// RoleType encodes a user's standing in a room.
type RoleType int

const (
	RoleTypeAdmin     RoleType = 1
	RoleTypeModerator RoleType = 2
	RoleTypeMember    RoleType = 3
	RoleTypeBanned    RoleType = 4
)

// Role is the (user, room) membership row. Admin is assigned once at room
// creation; member<->banned transitions go through the moderation engine only.
type Role struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"not null;uniqueIndex:idx_role_user_room" json:"user_id"`
	RoomID     int64     `gorm:"not null;uniqueIndex:idx_role_user_room" json:"room_id"`
	RoleType   RoleType  `gorm:"not null;default:3" json:"role_type"`
	LastAccess time.Time `json:"last_access"`
}
