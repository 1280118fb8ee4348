package relay

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Akif-Ali-10p/BotInterpreter/config"
)

const writeRetryDelay = 200 * time.Millisecond

// CloseInactivityTimeout is the close code sent when the reaper ends an
// idle connection.
const CloseInactivityTimeout = 4000

// State is a connection's position in the relay's per-connection state
// machine. Closed is terminal.
type State int32

const (
	StateUnjoined State = iota
	StateJoined
	StateClosed
)

// Conn is the subset of *websocket.Conn the relay uses. Tests substitute a
// fake; production always passes a gorilla connection.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v interface{}) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one live connection. The session registry and the liveness
// tracker hold references to it but the lifecycle (accept to teardown) is
// owned here: teardown runs exactly once no matter which path triggers it.
type Client struct {
	ID string

	conn   Conn
	cfg    *config.WebSocketConfig
	logger *zap.SugaredLogger

	state        atomic.Int32
	sessionMu    sync.RWMutex
	sessionID    string
	lastActivity atomic.Int64

	writeMu   sync.Mutex
	closeOnce sync.Once

	// onTeardown deregisters the client from the registry and tracker. Set
	// by the handler before the client is exposed to any other component.
	onTeardown func(*Client)
}

func NewClient(id string, conn Conn, cfg *config.WebSocketConfig, logger *zap.SugaredLogger) *Client {
	c := &Client{
		ID:     id,
		conn:   conn,
		cfg:    cfg,
		logger: logger,
	}
	c.lastActivity.Store(time.Now().UnixNano())
	return c
}

func (c *Client) State() State {
	return State(c.state.Load())
}

// Open reports whether the connection can still receive frames.
func (c *Client) Open() bool {
	return c.State() != StateClosed
}

// Join marks the client as a member of sessionID. Only the router calls
// this, after the registry accepted the membership.
func (c *Client) Join(sessionID string) {
	c.sessionMu.Lock()
	c.sessionID = sessionID
	c.sessionMu.Unlock()
	c.state.CompareAndSwap(int32(StateUnjoined), int32(StateJoined))
}

// SessionID returns the joined session id, or "" before a successful join.
func (c *Client) SessionID() string {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	return c.sessionID
}

// Touch records activity now. Called for every inbound frame and every
// pong.
func (c *Client) Touch() {
	c.lastActivity.Store(time.Now().UnixNano())
}

// LastActivity returns the instant of the most recent inbound frame or
// pong.
func (c *Client) LastActivity() time.Time {
	return time.Unix(0, c.lastActivity.Load())
}

// WriteJSON sends one frame, retrying transient failures a bounded number
// of times. Writes are serialized; gorilla connections allow only one
// concurrent writer.
func (c *Client) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.State() == StateClosed {
		return websocket.ErrCloseSent
	}

	operation := func() error {
		return c.conn.WriteJSON(v)
	}

	backoffStrategy := backoff.WithMaxRetries(
		backoff.NewConstantBackOff(writeRetryDelay),
		uint64(c.cfg.WriteMaxRetries),
	)

	return backoff.RetryNotify(operation, backoffStrategy, func(err error, d time.Duration) {
		c.logger.Warnw("retrying websocket write", "client_id", c.ID, "error", err, "next_in", d)
	})
}

// SendPing writes a protocol-level ping probe.
func (c *Client) SendPing() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteControl(
		websocket.PingMessage,
		[]byte{},
		time.Now().Add(time.Duration(c.cfg.WriteTimeout)*time.Second),
	)
}

// Close ends the connection gracefully: a close frame with the given code
// and reason, then teardown. Safe to call from any goroutine and any number
// of times; only the first call acts.
func (c *Client) Close(code int, reason string) {
	c.shutdown(true, code, reason)
}

// ForceClose ends the connection immediately without a close frame. Used by
// the reaper and the broadcaster for connections presumed dead.
func (c *Client) ForceClose() {
	c.shutdown(false, 0, "")
}

func (c *Client) shutdown(graceful bool, code int, reason string) {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))

		if graceful {
			deadline := time.Now().Add(time.Duration(c.cfg.WriteTimeout) * time.Second)
			c.writeMu.Lock()
			if err := c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline); err != nil {
				c.logger.Debugw("failed to send close frame", "client_id", c.ID, "error", err)
			}
			c.writeMu.Unlock()
		}

		if err := c.conn.Close(); err != nil {
			c.logger.Debugw("connection close error", "client_id", c.ID, "error", err)
		}

		if c.onTeardown != nil {
			c.onTeardown(c)
		}
	})
}
