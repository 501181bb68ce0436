package notify

import (
	"context"
	"encoding/json"

	"github.com/1gassner/energy-management-mvp-sub002/internal/logger"
)

const broadcastBuffer = 64

type broadcastMsg struct {
	buildingID string
	payload    []byte
}

// Hub maintains the set of live websocket subscribers and broadcasts alert
// events to them. Clients may subscribe to a single building or to all.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan broadcastMsg
	register   chan *Client
	unregister chan *Client
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastMsg, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run owns the client set. It exits when ctx is cancelled, closing all
// client send channels.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.log.Debugw("ws_client_registered", "building_id", c.buildingID)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Debugw("ws_client_unregistered", "building_id", c.buildingID)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				if c.buildingID != "" && c.buildingID != msg.buildingID {
					continue
				}
				select {
				case c.send <- msg.payload:
				default:
					// Slow consumer: drop it rather than stall the hub.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Register attaches a client to the hub.
func (h *Hub) Register(c *Client) { h.register <- c }

// Publish implements Sink by queueing the event for broadcast. If the hub's
// queue is full the event is dropped; subscribers are a best-effort surface.
func (h *Hub) Publish(ctx context.Context, buildingID string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- broadcastMsg{buildingID: buildingID, payload: payload}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		h.log.Warnw("ws_broadcast_dropped", "building_id", buildingID)
		return nil
	}
}
