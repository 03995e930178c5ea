package ws

import (
	"context"
	"sync"
	"time"

	"memberhub_backend/internal/logger"
	"memberhub_backend/internal/metrics"
)

// Event is the envelope pushed to connected clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	SentAt  time.Time   `json:"sent_at"`
}

type delivery struct {
	userID string
	event  Event
}

// WebSocketManager tracks connections per user. A user may hold several
// connections (one per open tab); every one of them gets the user's events.
type WebSocketManager struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	mu         sync.RWMutex
	done       chan struct{}
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
	}
}

// Run owns the client map until ctx is cancelled, then closes every
// connection.
func (manager *WebSocketManager) Run(ctx context.Context) {
	defer close(manager.done)
	for {
		select {
		case client := <-manager.register:
			manager.mu.Lock()
			set, ok := manager.clients[client.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				manager.clients[client.UserID] = set
			}
			set[client] = struct{}{}
			manager.mu.Unlock()
			metrics.WebsocketClients.Inc()
			logger.Debug("Websocket client registered", "user_id", client.UserID)

		case client := <-manager.unregister:
			manager.remove(client)

		case d := <-manager.deliver:
			manager.sendToUser(d.userID, d.event)

		case <-ctx.Done():
			manager.mu.Lock()
			for userID, set := range manager.clients {
				for client := range set {
					close(client.Send)
					metrics.WebsocketClients.Dec()
				}
				delete(manager.clients, userID)
			}
			manager.mu.Unlock()
			return
		}
	}
}

// Done is closed once Run has returned.
func (manager *WebSocketManager) Done() <-chan struct{} {
	return manager.done
}

func (manager *WebSocketManager) remove(client *Client) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	set, ok := manager.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	close(client.Send)
	delete(set, client)
	if len(set) == 0 {
		delete(manager.clients, client.UserID)
	}
	metrics.WebsocketClients.Dec()
	logger.Debug("Websocket client unregistered", "user_id", client.UserID)
}

// sendToUser runs on the Run goroutine. Slow clients whose buffer is full
// are dropped.
func (manager *WebSocketManager) sendToUser(userID string, event Event) {
	manager.mu.RLock()
	var stale []*Client
	for client := range manager.clients[userID] {
		select {
		case client.Send <- event:
		default:
			stale = append(stale, client)
		}
	}
	manager.mu.RUnlock()

	for _, client := range stale {
		logger.Warn("Websocket client too slow, disconnecting", "user_id", userID)
		manager.remove(client)
	}
}

// Notify queues an event for every connection of userID. It never blocks the
// caller; events are dropped when the queue is full or the hub has stopped.
func (manager *WebSocketManager) Notify(userID, eventType string, payload interface{}) {
	d := delivery{userID: userID, event: Event{Type: eventType, Payload: payload, SentAt: time.Now().UTC()}}
	select {
	case <-manager.done:
	case manager.deliver <- d:
	default:
		logger.Warn("Websocket delivery queue full, dropping event", "user_id", userID, "type", eventType)
	}
}

// ClientCount returns the number of open connections.
func (manager *WebSocketManager) ClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	n := 0
	for _, set := range manager.clients {
		n += len(set)
	}
	return n
}

func (manager *WebSocketManager) IsUserConnected(userID string) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients[userID]) > 0
}
