package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/fantasy-live/internal/domain/ticker"
	"github.com/riskibarqy/fantasy-live/internal/platform/id"
	"github.com/riskibarqy/fantasy-live/internal/platform/logging"
	"github.com/riskibarqy/fantasy-live/internal/usecase"
)

const (
	streamSendBuffer    = 64
	streamWriteDeadline = 5 * time.Second
	streamPongWait      = 60 * time.Second
	streamPingInterval  = 25 * time.Second
)

const (
	streamMessageHello   = "hello"
	streamMessageChanges = "changes"
)

// streamMessage is the only frame the stream sends.
type streamMessage struct {
	Type     string               `json:"type"`
	ClientID string               `json:"client_id,omitempty"`
	Gameweek int                  `json:"gameweek"`
	Events   []ticker.ChangeEvent `json:"events"`
}

type streamClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// StreamHub pushes committed change events to websocket subscribers. A
// subscriber that cannot keep up loses messages rather than blocking the
// refresh pass.
type StreamHub struct {
	upgrader websocket.Upgrader
	ids      id.Generator
	logger   *logging.Logger

	mu      sync.Mutex
	backlog func() (int, []ticker.ChangeEvent)
	clients map[*streamClient]struct{}
	closed  bool
}

var _ usecase.ChangeNotifier = (*StreamHub)(nil)

// NewStreamHub builds a hub. backlog, when set, supplies the events a new
// subscriber receives in its hello frame.
func NewStreamHub(ids id.Generator, backlog func() (int, []ticker.ChangeEvent), allowedOrigins []string, logger *logging.Logger) *StreamHub {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &StreamHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		ids:     ids,
		backlog: backlog,
		logger:  logger.Named("stream"),
		clients: make(map[*streamClient]struct{}),
	}
}

// SetBacklog replaces the hello-frame source. It exists because the live
// service and the hub reference each other.
func (h *StreamHub) SetBacklog(backlog func() (int, []ticker.ChangeEvent)) {
	h.mu.Lock()
	h.backlog = backlog
	h.mu.Unlock()
}

// LiveBacklog adapts a LiveReader to the hub's backlog source.
func LiveBacklog(live LiveReader) func() (int, []ticker.ChangeEvent) {
	return func() (int, []ticker.ChangeEvent) {
		latest, ok := live.Latest()
		if !ok {
			return 0, nil
		}
		return latest.Gameweek, latest.ChangeEvents
	}
}

func (h *StreamHub) PublishChanges(ctx context.Context, gameweek int, events []ticker.ChangeEvent) {
	if len(events) == 0 {
		return
	}
	data, err := sonic.Marshal(streamMessage{Type: streamMessageChanges, Gameweek: gameweek, Events: events})
	if err != nil {
		h.logger.WarnContext(ctx, "encode change events failed", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.WarnContext(ctx, "dropping change events for slow subscriber", "client_id", c.id, "events", len(events))
		}
	}
}

func (h *StreamHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber and rejects new ones.
func (h *StreamHub) Close() {
	h.mu.Lock()
	clients := make([]*streamClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.closed = true
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(streamWriteDeadline),
		)
		_ = c.conn.Close()
	}
}

func (h *StreamHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.mu.Lock()
	closed := h.closed
	backlog := h.backlog
	h.mu.Unlock()
	if closed {
		writeError(ctx, w, usecase.ErrDependencyUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "websocket upgrade failed", "error", err)
		return
	}

	c := &streamClient{
		id:   h.ids.NewID(),
		conn: conn,
		send: make(chan []byte, streamSendBuffer),
		done: make(chan struct{}),
	}

	hello := streamMessage{Type: streamMessageHello, ClientID: c.id, Events: []ticker.ChangeEvent{}}
	if backlog != nil {
		gameweek, events := backlog()
		hello.Gameweek = gameweek
		if len(events) > 0 {
			hello.Events = events
		}
	}
	if data, err := sonic.Marshal(hello); err == nil {
		c.send <- data
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("stream subscriber connected", "client_id", c.id, "subscribers", count)

	go h.writePump(c)
	go h.readPump(c)
}

// writePump owns the connection: on exit it unregisters the client and
// closes the socket.
func (h *StreamHub) writePump(c *streamClient) {
	pinger := time.NewTicker(streamPingInterval)
	defer func() {
		pinger.Stop()
		h.remove(c)
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(streamWriteDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Debug("stream write failed", "client_id", c.id, "error", err)
				return
			}
		case <-pinger.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(streamWriteDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump only services pongs and close frames; subscribers send nothing.
func (h *StreamHub) readPump(c *streamClient) {
	defer close(c.done)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHub) remove(c *streamClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Info("stream subscriber disconnected", "client_id", c.id, "subscribers", count)
	}
}

// originChecker mirrors the CORS allow-list. Requests without an Origin
// header are not browsers and are always accepted.
func originChecker(allowedOrigins []string) func(*http.Request) bool {
	allowAll := false
	allowMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		switch origin {
		case "":
		case "*":
			allowAll = true
		default:
			allowMap[origin] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		_, ok := allowMap[origin]
		return ok
	}
}
