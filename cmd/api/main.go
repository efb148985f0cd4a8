package main

import (
	"context"
	"log"

	"nearchat/config"
	"nearchat/internal/bot"
	"nearchat/internal/hub"
	"nearchat/internal/notify"
	"nearchat/internal/redis"
	"nearchat/internal/repository"
	"nearchat/internal/server"
	"nearchat/internal/services"
	"nearchat/internal/worker"
	"nearchat/pkg/database"
	"nearchat/pkg/logger"

	"github.com/hibiken/asynq"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	presence := redis.NewPresenceStore(redisClient)
	publisher := redis.NewPublisher(redisClient)
	subscriber := redis.NewSubscriber(redisClient)

	roomRepo := repository.NewRoomRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	userRepo := repository.NewUserRepository(db)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()
	scheduler := bot.NewAsynqScheduler(asynqClient)

	var push services.PushSender
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		push = notify.NewWebPushSender(notify.Config{
			Subject:    cfg.VAPIDSubject,
			PublicKey:  cfg.VAPIDPublicKey,
			PrivateKey: cfg.VAPIDPrivateKey,
		})
	} else {
		l.Infof("VAPID keys not configured, web push disabled")
	}

	unreadSvc := services.NewUnreadService(conversationRepo, userRepo, presence, publisher, push, l)
	messageSvc := services.NewMessageService(db, roomRepo, messageRepo, conversationRepo, presence, publisher, unreadSvc, scheduler, l)
	roomSvc := services.NewRoomService(db, roomRepo, messageRepo, roleRepo, presence, publisher, l)
	moderationSvc := services.NewModerationService(roleRepo, userRepo, presence, publisher, l)
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret)
	snapshotSvc := services.NewSnapshotService(roomRepo, presence, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.New(l)
	go h.Run(ctx)

	bridge := hub.NewRedisBridge(subscriber, h)
	go func() {
		if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
			l.Errorf("Redis bridge stopped: %s", err)
		}
	}()

	keyRing := bot.NewKeyRing(cfg.CompletionAPIKeys)
	completer := bot.NewOpenAICompleter(keyRing, cfg.CompletionModel)
	replier := bot.NewReplier(roomRepo, messageRepo, userRepo, presence, completer, messageSvc, l)

	workers := worker.NewServer(redisOpt, cfg.BotWorkerConcurrency, replier, snapshotSvc, l)
	go func() {
		if err := workers.Run(); err != nil {
			l.Errorf("Worker server stopped: %s", err)
		}
	}()
	defer workers.Shutdown()

	wsHandler := server.NewWebSocketHandler(h, authSvc, presence, roomSvc, messageSvc, unreadSvc, moderationSvc, l)
	apiHandler := server.NewHTTPHandler(moderationSvc, roomSvc, unreadSvc, userRepo)

	srv := server.New(cfg, l)
	srv.SetupRoutes(wsHandler, apiHandler, authSvc)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
