package feed

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"albumhub/internal/reconcile"
)

const (
	writeTimeout = 2 * time.Second
	// queueSize is how many lines a subscriber may fall behind before it is
	// dropped.
	queueSize = 16
)

// conn is one feed connection. send must honour writeTimeout.
type conn interface {
	send(line []byte) error
	close() error
}

type tcpConn struct{ c net.Conn }

func (t tcpConn) send(line []byte) error {
	_ = t.c.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err := t.c.Write(line)
	return err
}

func (t tcpConn) close() error { return t.c.Close() }

type wsConn struct{ c *websocket.Conn }

func (w wsConn) send(line []byte) error {
	_ = w.c.SetWriteDeadline(time.Now().Add(writeTimeout))
	return w.c.WriteMessage(websocket.TextMessage, line)
}

func (w wsConn) close() error { return w.c.Close() }

// subscriber owns a queue drained by its own writer goroutine, so the only
// thing done under the hub lock is a non-blocking enqueue.
type subscriber struct {
	conn  conn
	queue chan []byte
}

// Hub fans album change events out to TCP and WebSocket subscribers, one
// JSON document per line or message. It implements reconcile.Notifier and
// never blocks the caller.
type Hub struct {
	mu        sync.Mutex
	subs      map[any]*subscriber // keyed by the underlying connection
	published int
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
	Published  int `json:"published"`
}

func NewHub() *Hub {
	return &Hub{subs: make(map[any]*subscriber)}
}

func (h *Hub) Add(c net.Conn) { h.add(c, tcpConn{c}) }
func (h *Hub) Remove(c net.Conn) { h.remove(c) }
func (h *Hub) AddWS(ws *websocket.Conn) { h.add(ws, wsConn{ws}) }
func (h *Hub) RemoveWS(ws *websocket.Conn) { h.remove(ws) }

func (h *Hub) add(key any, c conn) {
	s := &subscriber{conn: c, queue: make(chan []byte, queueSize)}
	h.mu.Lock()
	h.subs[key] = s
	h.mu.Unlock()

	go func() {
		for line := range s.queue {
			if err := c.send(line); err != nil {
				h.remove(key)
				return
			}
		}
	}()
}

func (h *Hub) remove(key any) {
	h.mu.Lock()
	s, ok := h.subs[key]
	if ok {
		h.dropLocked(key, s)
	}
	h.mu.Unlock()
}

// dropLocked forgets s and closes its queue and connection. The queue is
// only ever sent to under h.mu while s is in subs.
func (h *Hub) dropLocked(key any, s *subscriber) {
	delete(h.subs, key)
	close(s.queue)
	_ = s.conn.close()
}

func (h *Hub) AlbumChanged(ev reconcile.Event) {
	h.BroadcastJSON(ev)
}

// BroadcastJSON queues v for every subscriber. A subscriber whose queue is
// full is dropped.
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	b = append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	h.published++
	for key, s := range h.subs {
		select {
		case s.queue <- b:
		default:
			h.dropLocked(key, s)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := Stats{Published: h.published}
	for _, s := range h.subs {
		switch s.conn.(type) {
		case tcpConn:
			st.TCPClients++
		case wsConn:
			st.WSClients++
		}
	}
	return st
}

// Welcome queues a greeting for a TCP subscriber added with Add. It goes
// through the same queue as broadcasts, so lines never interleave.
func (h *Hub) Welcome(c net.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.subs[c]
	if !ok {
		return
	}
	total := len(h.subs)
	msg := fmt.Sprintf("{\"type\":\"welcome\",\"transport\":\"tcp\",\"clients\":%d}\n", total)
	select {
	case s.queue <- []byte(msg):
	default:
	}
}
