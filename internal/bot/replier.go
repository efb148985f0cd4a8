package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"nearchat/internal/domain"
	"nearchat/internal/events"
	"nearchat/internal/repository"
	nearchat_errors "nearchat/pkg/errors"
	"nearchat/pkg/logger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// historyWindow is how many recent room messages the model sees.
const historyWindow = 5

// Presence is the slice of the presence store the replier needs.
type Presence interface {
	RoomBots(ctx context.Context, roomID int64) ([]int64, error)
}

// Injector publishes a bot-authored message into a room.
type Injector interface {
	InjectBotMessage(ctx context.Context, roomID, botID int64, text string) (events.BroadcastMessage, error)
}

// Replier turns a reply task into an actual bot message. Every failure mode
// that means "nothing sensible to say" ends in silence, not an error: a
// deleted room, a withdrawn bot, a declined or garbled completion.
type Replier struct {
	rooms     repository.RoomRepository
	messages  repository.MessageRepository
	users     repository.UserRepository
	presence  Presence
	completer Completer
	injector  Injector
	log       *logger.Logger
}

func NewReplier(
	rooms repository.RoomRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	presence Presence,
	completer Completer,
	injector Injector,
	log *logger.Logger,
) *Replier {
	return &Replier{
		rooms:     rooms,
		messages:  messages,
		users:     users,
		presence:  presence,
		completer: completer,
		injector:  injector,
		log:       log,
	}
}

// HandleReply is the asynq handler for TypeBotReply tasks.
func (r *Replier) HandleReply(ctx context.Context, task *asynq.Task) error {
	var payload ReplyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("bot reply payload: %w", err)
	}
	return r.Reply(ctx, payload.RoomID)
}

// Reply produces one bot message in roomID, if the room still exists and
// still hosts a bot.
func (r *Replier) Reply(ctx context.Context, roomID int64) error {
	room, err := r.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, nearchat_errors.ErrNotFound) {
			return nil
		}
		return err
	}

	botIDs, err := r.presence.RoomBots(ctx, roomID)
	if err != nil {
		return err
	}
	if len(botIDs) == 0 {
		return nil
	}
	botID := botIDs[0]

	profile, ok := ProfileByID(botID)
	if !ok {
		r.log.Warn("bot id has no persona, skipping reply", zap.Int64("bot_id", botID))
		return nil
	}

	if err := r.users.EnsureBot(ctx, &domain.User{ID: profile.ID, Nickname: profile.Nickname}); err != nil {
		return err
	}

	history, err := r.messages.LastRoomMessages(ctx, roomID, historyWindow)
	if err != nil {
		return err
	}
	turns := buildTurns(history, botID)
	if len(turns) == 0 {
		return nil
	}

	raw, err := r.completer.Complete(ctx, systemPrompt(profile, room), turns)
	if err != nil {
		r.log.Error("completion failed, bot stays silent",
			zap.Int64("room_id", roomID),
			zap.Int64("bot_id", botID),
			zap.Error(err),
		)
		return nil
	}

	reply, ok := sanitizeReply(raw)
	if !ok {
		return nil
	}

	_, err = r.injector.InjectBotMessage(ctx, roomID, botID, reply)
	return err
}

// buildTurns maps the recent history onto completion turns. The replying
// bot's own messages become assistant turns; everyone else is a user turn
// prefixed with their nickname so the model can track speakers. Media
// messages carry URLs as bodies and are skipped.
func buildTurns(history []domain.RoomMessageView, botID int64) []Turn {
	turns := make([]Turn, 0, len(history))
	for _, v := range history {
		if v.Type != domain.MessageTypeText {
			continue
		}
		if v.UserID == botID {
			turns = append(turns, Turn{FromBot: true, Content: v.Body})
			continue
		}
		turns = append(turns, Turn{Content: fmt.Sprintf("%s: %s", v.Nickname, v.Body)})
	}
	return turns
}

func systemPrompt(profile Profile, room domain.Room) string {
	return fmt.Sprintf(
		"%s You are chatting in a public room called %q. Reply in the language the others are using. Never reveal that you are a bot.",
		profile.Persona, room.Name,
	)
}

var multiNewline = regexp.MustCompile(`\n{2,}`)

// sanitizeReply normalizes the model output. Replies containing the presence
// member separator would corrupt parsing downstream, so they are dropped.
func sanitizeReply(raw string) (string, bool) {
	reply := strings.TrimSpace(multiNewline.ReplaceAllString(raw, "\n"))
	if reply == "" || strings.Contains(reply, "####") {
		return "", false
	}
	return reply, true
}
