package ws

import (
	"encoding/json"
	"sync"

	"github.com/annapurna-pos/api/internal/enum"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// viewEvent is an internal struct for routing events to view rooms
type viewEvent struct {
	Views []enum.View
	Event Event
}

// Hub maintains the set of active clients and broadcasts messages to them.
// Clients join the room of the view their role routes to, so kitchen
// displays and billing terminals each see their own event stream.
type Hub struct {
	// Registered clients by view room
	rooms map[enum.View]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *viewEvent

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[enum.View]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *viewEvent, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.view] == nil {
				h.rooms[client.view] = make(map[*Client]bool)
			}
			h.rooms[client.view][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.view]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					// Clean up empty rooms
					if len(clients) == 0 {
						delete(h.rooms, client.view)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			// Marshal event to JSON once
			message, err := json.Marshal(event.Event)
			if err != nil {
				h.mu.Unlock()
				continue
			}

			for _, view := range event.Views {
				for client := range h.rooms[view] {
					select {
					case client.send <- message:
					default:
						// Client's send buffer is full, close and unregister
						close(client.send)
						delete(h.rooms[view], client)
						if len(h.rooms[view]) == 0 {
							delete(h.rooms, view)
						}
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToViews sends an event to all clients in the given view rooms.
// This is the public API for handlers to broadcast order and ticket events.
func (h *Hub) BroadcastToViews(event Event, views ...enum.View) {
	h.broadcast <- &viewEvent{
		Views: views,
		Event: event,
	}
}
