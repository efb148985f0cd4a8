// Package hub fans frames out to the WebSocket connections of this process.
// Connections subscribe to named channels (room:<id>, conv:<id>, user:<id>)
// and every frame published on a channel reaches all local subscribers;
// cross-process delivery rides the Redis bridge.
package hub

import (
	"context"

	"nearchat/pkg/logger"

	"go.uber.org/zap"
)

type subscription struct {
	client  *Client
	channel string
	leave   bool
}

type frame struct {
	channel string
	payload []byte
}

// Hub maintains the set of active clients and their channel memberships.
// Both maps are owned by the Run goroutine; all mutation goes through the
// channels.
type Hub struct {
	clients       map[*Client]map[string]struct{}
	channels      map[string]map[*Client]struct{}
	register      chan *Client
	unregister    chan *Client
	subscriptions chan subscription
	broadcast     chan frame
	log           *logger.Logger
}

func New(log *logger.Logger) *Hub {
	return &Hub{
		clients:       make(map[*Client]map[string]struct{}),
		channels:      make(map[string]map[*Client]struct{}),
		register:      make(chan *Client, 256),
		unregister:    make(chan *Client, 256),
		subscriptions: make(chan subscription, 256),
		broadcast:     make(chan frame, 1024),
		log:           log,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case sub := <-h.subscriptions:
			h.handleSubscription(sub)

		case f := <-h.broadcast:
			h.handleBroadcast(f)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Register adds a connection and starts its write loop.
func (h *Hub) Register(client *Client) {
	client.setupRead()
	go client.WriteLoop()
	h.register <- client
}

// Unregister removes a connection and all its channel memberships.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe adds client to a channel's local membership.
func (h *Hub) Subscribe(client *Client, channel string) {
	h.subscriptions <- subscription{client: client, channel: channel}
}

// Unsubscribe removes client from a channel's local membership.
func (h *Hub) Unsubscribe(client *Client, channel string) {
	h.subscriptions <- subscription{client: client, channel: channel, leave: true}
}

// Broadcast delivers payload to every local subscriber of channel.
func (h *Hub) Broadcast(channel string, payload []byte) {
	h.broadcast <- frame{channel: channel, payload: payload}
}

func (h *Hub) handleRegister(client *Client) {
	h.clients[client] = make(map[string]struct{})
	h.log.Info("client connected", zap.String("client_id", client.ID))
}

func (h *Hub) handleUnregister(client *Client) {
	channels, ok := h.clients[client]
	if !ok {
		return
	}
	for channel := range channels {
		h.dropMember(client, channel)
	}
	delete(h.clients, client)
	close(client.send)

	h.log.Info("client disconnected",
		zap.String("client_id", client.ID),
		zap.Int64("user_id", client.UserID),
	)
}

func (h *Hub) handleSubscription(sub subscription) {
	channels, ok := h.clients[sub.client]
	if !ok {
		// raced with an unregister; nothing to track
		return
	}

	if sub.leave {
		delete(channels, sub.channel)
		h.dropMember(sub.client, sub.channel)
		return
	}

	channels[sub.channel] = struct{}{}
	if h.channels[sub.channel] == nil {
		h.channels[sub.channel] = make(map[*Client]struct{})
	}
	h.channels[sub.channel][sub.client] = struct{}{}
}

func (h *Hub) dropMember(client *Client, channel string) {
	members, ok := h.channels[channel]
	if !ok {
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.channels, channel)
	}
}

func (h *Hub) handleBroadcast(f frame) {
	for client := range h.channels[f.channel] {
		client.SendMessage(f.payload)
	}
}

func (h *Hub) closeAll() {
	for client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[*Client]map[string]struct{})
	h.channels = make(map[string]map[*Client]struct{})
}
