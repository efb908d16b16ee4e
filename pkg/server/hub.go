package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"weixiang/pkg/game"
)

const wsIdlePingInterval = 30 * time.Second

// Hub fans every game update out to the connected websocket clients.
type Hub struct {
	mu        sync.Mutex
	clients   map[*client]struct{}
	broadcast chan game.Update
	log       *zap.Logger
}

type client struct {
	send chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:   make(map[*client]struct{}),
		broadcast: make(chan game.Update, 32),
		log:       log,
	}
}

// Publish queues u for broadcast. It never blocks; updates are dropped
// when the queue is full.
func (h *Hub) Publish(u game.Update) {
	select {
	case h.broadcast <- u:
	default:
		h.log.Warn("update dropped", zap.String("game_id", u.GameID), zap.Uint64("epoch", u.Epoch))
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case u := <-h.broadcast:
			msg := wsMessage{Type: "update", Payload: mustMarshal(u)}
			h.mu.Lock()
			for c := range h.clients {
				c.sendJSON(msg)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (c *client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// serveWS upgrades the request, sends the current state and then streams
// updates until the peer goes away. Incoming messages are ignored.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{send: make(chan []byte, 16)}

	var state game.Update
	if err := s.session.Do(r.Context(), func(g *game.Game) { state = g.State() }); err != nil {
		conn.Close()
		return
	}
	c.sendJSON(wsMessage{Type: "update", Payload: mustMarshal(state)})
	s.hub.register(c)

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, c.send); err != nil {
			s.log.Debug("websocket write failed", zap.Error(err))
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.unregister(c)
			return
		}
	}
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
