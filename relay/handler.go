package relay

import (
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Akif-Ali-10p/BotInterpreter/config"
	"github.com/Akif-Ali-10p/BotInterpreter/metrics"
)

// Handler owns the connection lifecycle: accept, register with the tracker,
// run the read loop, and guarantee the single teardown path fires exactly
// once on every exit (graceful close, read error, or reaper termination).
type Handler struct {
	registry *Registry
	tracker  *Tracker
	router   *Router
	cfg      *config.WebSocketConfig
	logger   *zap.SugaredLogger

	upgrader  websocket.Upgrader
	connCount atomic.Int64
}

func NewHandler(registry *Registry, tracker *Tracker, router *Router, cfg *config.WebSocketConfig, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		registry: registry,
		tracker:  tracker,
		router:   router,
		cfg:      cfg,
		logger:   logger,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: time.Duration(cfg.HandshakeTimeout) * time.Second,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
	}
}

// ConnectionCount returns the number of live connections on this instance.
func (h *Handler) ConnectionCount() int64 {
	return h.connCount.Load()
}

// HandleWebSocket upgrades the request and serves the connection until it
// ends.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.connCount.Load() >= int64(h.cfg.MaxConnections) {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := NewClient(uuid.New().String(), conn, h.cfg, h.logger)
	c.onTeardown = func(c *Client) {
		h.tracker.Remove(c)
		if sessionID := c.SessionID(); sessionID != "" {
			h.registry.Leave(sessionID, c)
		}
		h.connCount.Add(-1)
		metrics.ActiveConnections.Dec()
		h.logger.Infow("client disconnected", "client_id", c.ID, "remote", r.RemoteAddr)
	}

	h.tracker.Add(c)
	h.connCount.Add(1)
	metrics.ActiveConnections.Inc()
	metrics.TotalConnections.Inc()
	h.logger.Infow("client connected", "client_id", c.ID, "remote", r.RemoteAddr)

	conn.SetReadLimit(h.cfg.MessageSizeLimit)
	conn.SetPongHandler(func(string) error {
		c.Touch()
		return nil
	})

	h.readLoop(r, c, conn)
}

// readLoop processes frames strictly in order: each frame is dispatched to
// completion, including any translate/detect/store calls, before the next
// is read. That serialization is the relay's per-connection ordering
// guarantee.
func (h *Handler) readLoop(r *http.Request, c *Client, conn *websocket.Conn) {
	defer c.Close(websocket.CloseNormalClosure, "client disconnected")

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) &&
				!errors.Is(err, net.ErrClosed) {
				h.logger.Warnw("read error", "client_id", c.ID, "error", err)
			}
			return
		}

		metrics.MessagesReceived.Inc()
		c.Touch()
		h.router.Dispatch(r.Context(), c, msg)
	}
}
