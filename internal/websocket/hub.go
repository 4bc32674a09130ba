package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"studytime-backend/internal/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub relays each community's report pub/sub stream to its connected
// listeners. One Redis subscription runs per community while it has at
// least one connection.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*websocket.Conn
	redisClient *redis.Client
	cancelFuncs map[string]context.CancelFunc
}

func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		connections: make(map[string][]*websocket.Conn),
		redisClient: redisClient,
		cancelFuncs: make(map[string]context.CancelFunc),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	communityID := r.URL.Query().Get("community")
	if communityID == "" {
		http.Error(w, "community query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.registerConnection(communityID, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(communityID, conn)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(communityID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[communityID] = append(h.connections[communityID], conn)

	// Start pub/sub subscription on the community's first connection
	if len(h.connections[communityID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[communityID] = cancel
		go h.subscribeToPubSub(ctx, communityID)
	}

	log.Printf("WebSocket connected: community %s (total: %d)", communityID, len(h.connections[communityID]))
}

func (h *Hub) unregisterConnection(communityID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[communityID]
	for i, c := range conns {
		if c == conn {
			h.connections[communityID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// If no more connections, cancel pub/sub
	if len(h.connections[communityID]) == 0 {
		delete(h.connections, communityID)
		if cancel, ok := h.cancelFuncs[communityID]; ok {
			cancel()
			delete(h.cancelFuncs, communityID)
		}
	}

	log.Printf("WebSocket disconnected: community %s", communityID)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, communityID string) {
	pubsub := h.redisClient.Subscribe(ctx, notify.ReportChannel(communityID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(communityID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(communityID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[communityID] {
		conn.WriteMessage(websocket.TextMessage, data)
	}
}
