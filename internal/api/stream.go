package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"neurofleetx/internal/metrics"
	"neurofleetx/internal/sim"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// the dashboard is served from a different origin in development
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans simulation snapshots out to connected websocket clients.
// Clients that cannot keep up are dropped rather than blocking the tick.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan sim.Snapshot
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Broadcast queues a snapshot for every connected client. Intended as the
// simulator's tick hook.
func (h *Hub) Broadcast(snap sim.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- snap:
		default:
			h.dropLocked(c)
		}
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.dropLocked(c)
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	metrics.StreamClients.Set(float64(len(h.clients)))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.dropLocked(c)
	}
}

func (h *Hub) dropLocked(c *client) {
	delete(h.clients, c)
	close(c.send)
	metrics.StreamClients.Set(float64(len(h.clients)))
}

// handleStream upgrades the request and streams tick snapshots until the
// client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan sim.Snapshot, 8)}
	s.hub.add(c)
	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("Stream client connected")

	ctx, cancel := context.WithCancel(r.Context())
	go func() {
		defer cancel()
		// drain control frames and detect disconnects
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.hub.remove(c)
			conn.Close()
			return
		case snap, ok := <-c.send:
			if !ok {
				conn.Close()
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				s.hub.remove(c)
				conn.Close()
				return
			}
		}
	}
}
