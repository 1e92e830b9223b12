package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/themestore/demoaccess/internal/model"
)

const redisChannel = "demoaccess:feed"

// Hub fans live lead-engagement events out to every connected dashboard.
// Events travel through Redis Pub/Sub so all API instances deliver them,
// whichever instance the originating request hit.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client

	rdb *redis.Client
}

// NewHub creates the dashboard feed hub
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
	}
}

// Run starts the hub's main event loop
func (h *Hub) Run(ctx context.Context) {
	go h.subscribeRedis(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register queues a dashboard connection for registration
func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	log.Printf("✅ Dashboard connected: %s (watching: %d)", client.Username, len(h.clients))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	log.Printf("❌ Dashboard disconnected: %s", client.Username)
}

// Publish pushes a feed event to every dashboard on every instance.
// Timestamp is filled in if the caller left it zero.
func (h *Hub) Publish(event *model.FeedEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling feed event: %v", err)
		return
	}
	if err := h.rdb.Publish(context.Background(), redisChannel, data).Err(); err != nil {
		log.Printf("Error publishing feed event: %v", err)
	}
}

// deliverLocal writes an already-encoded event to every local dashboard.
// Takes the write lock: a slow client gets dropped from the map here.
func (h *Hub) deliverLocal(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Send buffer full, drop the connection
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// subscribeRedis relays feed events from Redis to local dashboards
func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	log.Println("📡 Feed subscriber started")

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			h.deliverLocal([]byte(msg.Payload))
		}
	}
}
