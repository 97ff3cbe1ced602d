package live

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"travelagency/internal/events"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

// connection is one operator socket. An operator may have several open tabs.
type connection struct {
	operatorID string
	role       string
	conn       *websocket.Conn
	send       chan []byte
}

// Hub pushes domain events to connected operators. It implements
// events.Sink.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*connection]struct{} // operatorID -> sockets
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]map[*connection]struct{}),
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.connections[c.operatorID]
	if !ok {
		set = make(map[*connection]struct{})
		h.connections[c.operatorID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.connections[c.operatorID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.connections, c.operatorID)
	}
}

// Count returns the number of open sockets.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.connections {
		n += len(set)
	}
	return n
}

func matches(c *connection, a events.Audience) bool {
	if a.OperatorID != "" && a.OperatorID != c.operatorID {
		return false
	}
	if a.Role != "" && a.Role != c.role {
		return false
	}
	return true
}

// Publish delivers ev to every socket in its audience. Slow clients are
// skipped rather than blocking the caller.
func (h *Hub) Publish(_ context.Context, ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("live_event_marshal_failed type=%s err=%v", ev.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	deliver := func(set map[*connection]struct{}) {
		for c := range set {
			if !matches(c, ev.Audience) {
				continue
			}
			select {
			case c.send <- data:
			default:
				log.Printf("live_event_dropped type=%s operator_id=%s", ev.Type, c.operatorID)
			}
		}
	}

	if ev.Audience.OperatorID != "" {
		deliver(h.connections[ev.Audience.OperatorID])
		return
	}
	for _, set := range h.connections {
		deliver(set)
	}
}

// serve registers conn and blocks until the client disconnects.
func (h *Hub) serve(conn *websocket.Conn, operatorID, role string) {
	c := &connection{
		operatorID: operatorID,
		role:       role,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

// readPump only watches for disconnects and pongs; the feed is one-way.
func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("live_socket_error operator_id=%s err=%v", c.operatorID, err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
