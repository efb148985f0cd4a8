// Package worker runs the background task side of the server: delayed bot
// replies and the periodic presence snapshot.
package worker

import (
	"context"

	"nearchat/internal/bot"
	"nearchat/internal/services"
	"nearchat/pkg/logger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypePresenceSnapshot is the periodic task that copies room presence into
// Postgres.
const TypePresenceSnapshot = "presence:snapshot"

// snapshotSchedule is how often presence is flushed.
const snapshotSchedule = "@every 45s"

// Server wraps the asynq worker and its periodic scheduler.
type Server struct {
	srv       *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	log       *logger.Logger
}

func NewServer(
	redisOpt asynq.RedisClientOpt,
	concurrency int,
	replier *bot.Replier,
	snapshots *services.SnapshotService,
	log *logger.Logger,
) *Server {
	if concurrency <= 0 {
		concurrency = 5
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error("task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(bot.TypeBotReply, replier.HandleReply)
	mux.HandleFunc(TypePresenceSnapshot, func(ctx context.Context, _ *asynq.Task) error {
		return snapshots.SnapshotOnline(ctx)
	})

	return &Server{
		srv:       srv,
		scheduler: asynq.NewScheduler(redisOpt, nil),
		mux:       mux,
		log:       log,
	}
}

// Run starts the scheduler and blocks serving tasks until Shutdown.
func (s *Server) Run() error {
	if _, err := s.scheduler.Register(snapshotSchedule, asynq.NewTask(TypePresenceSnapshot, nil)); err != nil {
		return err
	}
	if err := s.scheduler.Start(); err != nil {
		return err
	}
	return s.srv.Run(s.mux)
}

// Shutdown stops task processing and the scheduler.
func (s *Server) Shutdown() {
	s.scheduler.Shutdown()
	s.srv.Shutdown()
}
