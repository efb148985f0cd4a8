package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	goredis "github.com/redis/go-redis/v9"
)

// Presence key families. These are shared by every server process; the store
// is the single source of truth for who is online where.
const (
	keyGlobalOnline = "online"          // set of user ids connected anywhere
	keyRoomPrefix   = "online_users:"   // set of "nickname####userID" per room
	keyViewerPrefix = "private_room:"   // set of user ids viewing a conversation
	keyBotsPrefix   = "bots_chat:"      // set of bot ids assigned to a room
)

// memberSep joins nickname and user id inside a room presence member. The
// id is always the segment after the last separator, so nicknames containing
// the sequence still parse.
const memberSep = "####"

// PresenceStore keeps the three presence set families in Redis. All mutations
// use native set commands so concurrent processes never race on
// check-then-act.
type PresenceStore struct {
	client *goredis.Client
}

func NewPresenceStore(client *goredis.Client) *PresenceStore {
	return &PresenceStore{client: client}
}

// Generic atomic set primitives.

func (p *PresenceStore) AddToSet(ctx context.Context, key, member string) error {
	return p.client.SAdd(ctx, key, member).Err()
}

func (p *PresenceStore) RemoveFromSet(ctx context.Context, key, member string) error {
	return p.client.SRem(ctx, key, member).Err()
}

func (p *PresenceStore) MembersOf(ctx context.Context, key string) ([]string, error) {
	return p.client.SMembers(ctx, key).Result()
}

func (p *PresenceStore) IsMember(ctx context.Context, key, member string) (bool, error) {
	return p.client.SIsMember(ctx, key, member).Result()
}

func (p *PresenceStore) Cardinality(ctx context.Context, key string) (int64, error) {
	return p.client.SCard(ctx, key).Result()
}

// Global online set.

func (p *PresenceStore) SetUserOnline(ctx context.Context, userID int64) error {
	return p.AddToSet(ctx, keyGlobalOnline, formatID(userID))
}

func (p *PresenceStore) SetUserOffline(ctx context.Context, userID int64) error {
	return p.RemoveFromSet(ctx, keyGlobalOnline, formatID(userID))
}

func (p *PresenceStore) IsUserOnline(ctx context.Context, userID int64) (bool, error) {
	return p.IsMember(ctx, keyGlobalOnline, formatID(userID))
}

// Room presence.

func (p *PresenceStore) JoinRoom(ctx context.Context, roomID int64, nickname string, userID int64) error {
	return p.AddToSet(ctx, RoomKey(roomID), Member(nickname, userID))
}

func (p *PresenceStore) LeaveRoom(ctx context.Context, roomID int64, nickname string, userID int64) error {
	return p.RemoveFromSet(ctx, RoomKey(roomID), Member(nickname, userID))
}

func (p *PresenceStore) RoomMembers(ctx context.Context, roomID int64) ([]string, error) {
	return p.MembersOf(ctx, RoomKey(roomID))
}

// Conversation viewers.

func (p *PresenceStore) JoinConversation(ctx context.Context, conversationID, userID int64) error {
	return p.AddToSet(ctx, ViewerKey(conversationID), formatID(userID))
}

func (p *PresenceStore) LeaveConversation(ctx context.Context, conversationID, userID int64) error {
	return p.RemoveFromSet(ctx, ViewerKey(conversationID), formatID(userID))
}

func (p *PresenceStore) IsViewing(ctx context.Context, conversationID, userID int64) (bool, error) {
	return p.IsMember(ctx, ViewerKey(conversationID), formatID(userID))
}

// Room bot assignment. A bot occupies a presence slot like a human member.

func (p *PresenceStore) AssignBot(ctx context.Context, roomID, botID int64, botNickname string) error {
	pipe := p.client.Pipeline()
	pipe.SAdd(ctx, BotsKey(roomID), formatID(botID))
	pipe.SAdd(ctx, RoomKey(roomID), Member(botNickname, botID))
	_, err := pipe.Exec(ctx)
	return err
}

func (p *PresenceStore) WithdrawBot(ctx context.Context, roomID, botID int64, botNickname string) error {
	pipe := p.client.Pipeline()
	pipe.SRem(ctx, BotsKey(roomID), formatID(botID))
	pipe.SRem(ctx, RoomKey(roomID), Member(botNickname, botID))
	_, err := pipe.Exec(ctx)
	return err
}

// RoomBots returns the ids of bots assigned to a room in ascending order so
// "first bot in the set" is deterministic across processes.
func (p *PresenceStore) RoomBots(ctx context.Context, roomID int64) ([]int64, error) {
	members, err := p.MembersOf(ctx, BotsKey(roomID))
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ClearRoom removes every presence key owned by a deleted room.
func (p *PresenceStore) ClearRoom(ctx context.Context, roomID int64) error {
	return p.client.Del(ctx, RoomKey(roomID), BotsKey(roomID)).Err()
}

// RoomKeys lists the room presence keys currently present in the store, used
// by the periodic snapshot job.
func (p *PresenceStore) RoomKeys(ctx context.Context) (map[int64][]string, error) {
	out := make(map[int64][]string)
	iter := p.client.Scan(ctx, 0, keyRoomPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		roomID, err := strconv.ParseInt(strings.TrimPrefix(key, keyRoomPrefix), 10, 64)
		if err != nil {
			continue
		}
		members, err := p.client.SMembers(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		out[roomID] = members
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Key helpers.

func RoomKey(roomID int64) string {
	return keyRoomPrefix + formatID(roomID)
}

func ViewerKey(conversationID int64) string {
	return keyViewerPrefix + formatID(conversationID)
}

func BotsKey(roomID int64) string {
	return keyBotsPrefix + formatID(roomID)
}

// Member composes the room presence member string.
func Member(nickname string, userID int64) string {
	return fmt.Sprintf("%s%s%d", nickname, memberSep, userID)
}

// ParseMember splits a room presence member back into nickname and user id.
// The split happens at the last separator occurrence.
func ParseMember(member string) (nickname string, userID int64, ok bool) {
	idx := strings.LastIndex(member, memberSep)
	if idx < 0 {
		return "", 0, false
	}
	id, err := strconv.ParseInt(member[idx+len(memberSep):], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return member[:idx], id, true
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
