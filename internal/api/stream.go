package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atlasforge/chronicle/internal/engine"
)

// maxStreamConns caps simultaneous websocket viewers, mirroring the
// teacher's maxSSEConns guard against unbounded fan-out on a broadcast
// channel.
const maxStreamConns = 32

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamHub fans a single append-only event stream out to every connected
// websocket client. It never reads from a client — spec §3.6 fixes /stream
// as a passive push channel that accepts no simulation commands.
type streamHub struct {
	mu      sync.Mutex
	clients map[*streamClient]struct{}
}

type streamClient struct {
	conn *websocket.Conn
	send chan engine.Event
}

func newStreamHub() *streamHub {
	return &streamHub{clients: make(map[*streamClient]struct{})}
}

func (h *streamHub) broadcast(e engine.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- e:
		default:
			// Slow client; drop the event rather than block the tick loop.
		}
	}
}

func (h *streamHub) add(c *streamClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) >= maxStreamConns {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *streamHub) remove(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// handleStream upgrades the connection and streams newly emitted surface
// events until the client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	client := &streamClient{conn: conn, send: make(chan engine.Event, 64)}
	if !s.stream.add(client) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too many viewers"))
		return
	}
	defer s.stream.remove(client)

	// Discard anything the client sends; this channel is read-only by
	// design. A read loop is still required so the connection notices a
	// client-initiated close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case e, ok := <-client.send:
			if !ok {
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
