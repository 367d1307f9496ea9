package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/custodia-labs/folio/internal/binding"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Notifier = (*LiveHub)(nil)

// Live message types
const (
	LiveMessageState        = "state"
	LiveMessageNotification = "notification"
)

const (
	liveSendBuffer = 16
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = livePongWait * 9 / 10
)

// LiveMessage is one frame on the /api/v1/live stream
type LiveMessage struct {
	ID           string               `json:"id"`
	Type         string               `json:"type"`
	Site         *SiteResponse        `json:"site,omitempty"`
	Notification *domain.Notification `json:"notification,omitempty"`
}

// LiveHub streams site state changes and notifications to connected
// browsers. Slow clients that fill their buffer are disconnected.
type LiveHub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*liveClient]struct{}
	closed  bool
	wg      sync.WaitGroup
}

type liveClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *liveClient) close() {
	c.once.Do(func() { close(c.send) })
}

// NewLiveHub creates a hub accepting the given origins. An empty list
// only accepts same-origin connections; "*" accepts any.
func NewLiveHub(allowedOrigins []string, logger *slog.Logger) *LiveHub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &LiveHub{
		logger:  logger,
		clients: make(map[*liveClient]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}
	if len(allowedOrigins) > 0 {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		}
	}
	return h
}

// Notify implements driven.Notifier by broadcasting a notification frame
func (h *LiveHub) Notify(ctx context.Context, n domain.Notification) {
	h.broadcast(LiveMessage{Type: LiveMessageNotification, Notification: &n})
}

// PublishState broadcasts a state frame. It fits binding.SiteBinding.OnChange.
func (h *LiveHub) PublishState(state binding.SiteState) {
	site := newSiteResponse(state)
	h.broadcast(LiveMessage{Type: LiveMessageState, Site: &site})
}

// Clients returns the number of connected clients
func (h *LiveHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and waits for their goroutines
func (h *LiveHub) Close() {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
	h.wg.Wait()
}

// serve upgrades the request and sends initial as the first frame
func (h *LiveHub) serve(w http.ResponseWriter, r *http.Request, initial binding.SiteState) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		h.logger.Debug("live upgrade failed", "error", err)
		return
	}

	c := &liveClient{conn: conn, send: make(chan []byte, liveSendBuffer)}

	site := newSiteResponse(initial)
	first, err := encodeLive(LiveMessage{Type: LiveMessageState, Site: &site})
	if err != nil {
		conn.Close()
		return
	}
	c.send <- first

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.wg.Add(2)
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

func (h *LiveHub) broadcast(msg LiveMessage) {
	data, err := encodeLive(msg)
	if err != nil {
		h.logger.Warn("failed to encode live message", "type", msg.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow live client")
			delete(h.clients, c)
			c.close()
		}
	}
}

func (h *LiveHub) remove(c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
}

func (h *LiveHub) writePump(c *liveClient) {
	defer h.wg.Done()
	ticker := time.NewTicker(livePingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readPump discards client frames and notices disconnects
func (h *LiveHub) readPump(c *liveClient) {
	defer h.wg.Done()
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(livePongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(livePongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func encodeLive(msg LiveMessage) ([]byte, error) {
	msg.ID = uuid.NewString()
	return json.Marshal(msg)
}
