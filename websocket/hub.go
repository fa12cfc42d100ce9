// Package websocket serves chat over WebSocket and pushes request events to
// connected admin monitors.
package websocket

import (
	"context"
	"sync/atomic"

	"github.com/egor/vicai/logging"
	"github.com/egor/vicai/service"
)

// Hub tracks connections. Only admin clients receive broadcasts.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	connected atomic.Int64
	dropped   atomic.Int64
	log       *logging.Logger
}

func NewHub(log *logging.Logger) *Hub {
	if log == nil {
		log = logging.Nop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				c.close()
				delete(h.clients, c)
			}
			h.connected.Store(0)
			return

		case c := <-h.register:
			h.clients[c] = true
			h.connected.Store(int64(len(h.clients)))
			h.log.Info("ws client connected", map[string]any{"kind": c.Kind, "id": c.ID, "total": len(h.clients)})

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.close()
				h.connected.Store(int64(len(h.clients)))
				h.log.Info("ws client disconnected", map[string]any{"kind": c.Kind, "id": c.ID, "total": len(h.clients)})
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				if c.Kind != KindAdmin {
					continue
				}
				if !c.trySend(msg) {
					// slow consumer
					delete(h.clients, c)
					c.close()
				}
			}
			h.connected.Store(int64(len(h.clients)))
		}
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues data for admin clients. It never blocks: when the queue
// is full the frame is dropped.
func (h *Hub) Broadcast(data []byte) bool {
	select {
	case h.broadcast <- data:
		return true
	default:
		h.dropped.Add(1)
		return false
	}
}

// Observe pushes a request event to admin monitors.
func (h *Hub) Observe(ev service.Event) {
	data, err := NewEventMessage(ev)
	if err != nil {
		h.log.Error("encode event", err.Error())
		return
	}
	h.Broadcast(data)
}

// Connected is the number of registered clients.
func (h *Hub) Connected() int { return int(h.connected.Load()) }

// Dropped counts broadcasts lost to a full queue.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }
