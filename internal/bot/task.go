package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/hibiken/asynq"
)

// TypeBotReply is the asynq task type for a delayed bot reply.
const TypeBotReply = "bot:reply"

// Replies land between these bounds after the triggering message, so bots
// never answer instantly.
const (
	replyDelayMin = 3 * time.Second
	replyDelayMax = 7 * time.Second
)

// ReplyPayload identifies the message a bot should react to.
type ReplyPayload struct {
	RoomID    int64 `json:"room_id"`
	MessageID int64 `json:"message_id"`
}

// NewReplyTask builds the asynq task for a reply trigger.
func NewReplyTask(roomID, messageID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(ReplyPayload{RoomID: roomID, MessageID: messageID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBotReply, payload), nil
}

// AsynqScheduler enqueues reply tasks with a randomized delay. The task id is
// derived from room and message so duplicate triggers collapse into one task.
type AsynqScheduler struct {
	client *asynq.Client
}

func NewAsynqScheduler(client *asynq.Client) *AsynqScheduler {
	return &AsynqScheduler{client: client}
}

func (s *AsynqScheduler) ScheduleReply(ctx context.Context, roomID, messageID int64) error {
	task, err := NewReplyTask(roomID, messageID)
	if err != nil {
		return err
	}
	delay := replyDelayMin + time.Duration(rand.Int63n(int64(replyDelayMax-replyDelayMin)))
	_, err = s.client.EnqueueContext(ctx, task,
		asynq.ProcessIn(delay),
		asynq.TaskID(fmt.Sprintf("%s:%d:%d", TypeBotReply, roomID, messageID)),
	)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return err
	}
	return nil
}
