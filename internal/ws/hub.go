// Package ws is the real-time fan-out channel pushed to by CRM mutations.
// Delivery is best-effort to currently connected clients: slow clients are
// dropped, nothing is replayed.
package ws

import (
	"log"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Emitter is what handlers depend on, so tests can substitute a recorder.
type Emitter interface {
	Emit(event string, payload any)
	EmitRoom(room, event string, payload any)
}

type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// clientCommand is what connected clients send: room membership only.
type clientCommand struct {
	Action string `json:"action"` // "join-room" or "leave-room"
	Room   string `json:"room"`
}

type client struct {
	id    string
	send  chan envelope
	rooms map[string]struct{}
}

type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Emit broadcasts an event to every connected client.
func (h *Hub) Emit(event string, payload any) {
	h.broadcast("", event, payload)
}

// EmitRoom broadcasts an event to the clients that joined the room.
func (h *Hub) EmitRoom(room, event string, payload any) {
	h.broadcast(room, event, payload)
}

func (h *Hub) broadcast(room, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.clients {
		if room != "" {
			if _, ok := cl.rooms[room]; !ok {
				continue
			}
		}
		select {
		case cl.send <- envelope{Event: event, Payload: payload}:
		default:
			// Client not keeping up; skip rather than block the mutation.
		}
	}
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
}

// Upgrade gates the route so plain HTTP requests get a 426 instead of a
// panic inside the websocket handler.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler serves one websocket connection: a write pump goroutine plus a
// read loop handling join-room/leave-room commands.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		cl := &client{
			id:    uuid.NewString(),
			send:  make(chan envelope, 32),
			rooms: make(map[string]struct{}),
		}
		h.register(cl)
		log.Printf("[WS] client connected: %s", cl.id)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for env := range cl.send {
				if err := conn.WriteJSON(env); err != nil {
					return
				}
			}
		}()

		for {
			var cmd clientCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				break
			}
			h.mu.Lock()
			switch cmd.Action {
			case "join-room":
				cl.rooms[cmd.Room] = struct{}{}
			case "leave-room":
				delete(cl.rooms, cmd.Room)
			}
			h.mu.Unlock()
		}

		h.unregister(cl)
		<-done
		log.Printf("[WS] client disconnected: %s", cl.id)
	})
}
