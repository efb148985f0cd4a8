package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"nearchat/config"
	"nearchat/internal/bot"
	"nearchat/internal/domain"
	"nearchat/internal/events"
	"nearchat/internal/redis"
	"nearchat/internal/repository"
	"nearchat/pkg/database"
)

const usage = `
nearchat - Bot Control Tool

Usage:
  botctl [command] [args]

Commands:
  join <room-id> <nickname>   Assign a bot persona to a room
  leave <room-id> <nickname>  Withdraw a bot persona from a room
  list                        List available bot personas

Examples:
  go run cmd/botctl/main.go join 42 Marta
  go run cmd/botctl/main.go leave 42 Marta
  go run cmd/botctl/main.go list
`

func main() {
	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	command := flag.Arg(0)

	if command == "list" {
		for _, p := range bot.Profiles() {
			fmt.Printf("%d\t%s\n", p.ID, p.Nickname)
		}
		return
	}

	if flag.NArg() < 3 {
		flag.Usage()
		os.Exit(1)
	}
	roomID, err := strconv.ParseInt(flag.Arg(1), 10, 64)
	if err != nil {
		log.Fatalf("Invalid room id %q", flag.Arg(1))
	}
	profile, ok := bot.ProfileByNickname(flag.Arg(2))
	if !ok {
		log.Fatalf("Unknown bot persona %q, see 'list'", flag.Arg(2))
	}

	cfg := config.LoadConfig()
	ctx := context.Background()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	presence := redis.NewPresenceStore(redisClient)
	publisher := redis.NewPublisher(redisClient)
	rooms := repository.NewRoomRepository(db)
	users := repository.NewUserRepository(db)
	roles := repository.NewRoleRepository(db)

	if _, err := rooms.GetByID(ctx, roomID); err != nil {
		log.Fatalf("Room %d: %v", roomID, err)
	}

	switch command {
	case "join":
		if err := users.EnsureBot(ctx, &domain.User{ID: profile.ID, Nickname: profile.Nickname}); err != nil {
			log.Fatalf("Failed to ensure bot user: %v", err)
		}
		if err := roles.Upsert(ctx, &domain.Role{
			UserID:   profile.ID,
			RoomID:   roomID,
			RoleType: domain.RoleTypeMember,
		}); err != nil {
			log.Fatalf("Failed to record bot membership: %v", err)
		}
		if err := presence.AssignBot(ctx, roomID, profile.ID, profile.Nickname); err != nil {
			log.Fatalf("Failed to assign bot: %v", err)
		}
		fmt.Printf("Bot %s joined room %d\n", profile.Nickname, roomID)

	case "leave":
		if err := presence.WithdrawBot(ctx, roomID, profile.ID, profile.Nickname); err != nil {
			log.Fatalf("Failed to withdraw bot: %v", err)
		}
		fmt.Printf("Bot %s left room %d\n", profile.Nickname, roomID)

	default:
		flag.Usage()
		os.Exit(1)
	}

	// Connected clients see the bot appear or disappear right away.
	members, err := presence.RoomMembers(ctx, roomID)
	if err != nil {
		log.Fatalf("Failed to list room members: %v", err)
	}
	payload, err := events.Encode(events.OutboundAlertMessage, events.AlertMessage{Users: members})
	if err != nil {
		log.Fatalf("Failed to encode member list: %v", err)
	}
	if err := publisher.Publish(ctx, events.RoomChannel(roomID), payload); err != nil {
		log.Fatalf("Failed to publish member list: %v", err)
	}
}
