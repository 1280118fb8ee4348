package relay

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/Akif-Ali-10p/BotInterpreter/config"
)

// fakeConn records everything written to it. Satisfies Conn.
type fakeConn struct {
	mu         sync.Mutex
	frames     [][]byte
	pings      int
	closeCode  int
	closed     bool
	failWrites bool
	failPings  bool
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {} // unit tests never read through the fake
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return websocket.ErrCloseSent
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeConn) WriteControl(messageType int, data []byte, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch messageType {
	case websocket.PingMessage:
		if f.failPings {
			return websocket.ErrCloseSent
		}
		f.pings++
	case websocket.CloseMessage:
		if len(data) >= 2 {
			f.closeCode = int(data[0])<<8 | int(data[1])
		}
	}
	return nil
}

func (f *fakeConn) SetReadLimit(int64)                {}
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) sentFrames() []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]interface{}, 0, len(f.frames))
	for _, raw := range f.frames {
		var decoded map[string]interface{}
		if err := json.Unmarshal(raw, &decoded); err == nil {
			out = append(out, decoded)
		}
	}
	return out
}

func (f *fakeConn) framesOfType(msgType string) []map[string]interface{} {
	var out []map[string]interface{}
	for _, frame := range f.sentFrames() {
		if frame["type"] == msgType {
			out = append(out, frame)
		}
	}
	return out
}

func testWSConfig() *config.WebSocketConfig {
	return &config.WebSocketConfig{
		MaxConnections:    100,
		MessageSizeLimit:  65536,
		HandshakeTimeout:  2,
		PingInterval:      1,
		ReapInterval:      1,
		InactivityTimeout: 300,
		WriteTimeout:      1,
		WriteMaxRetries:   0,
	}
}

func testLogger(t *testing.T) *zap.SugaredLogger {
	return zaptest.NewLogger(t).Sugar()
}

// newTestClient builds a client wired to a fake conn with teardown into the
// given registry and tracker (either may be nil).
func newTestClient(t *testing.T, id string, registry *Registry, tracker *Tracker) (*Client, *fakeConn) {
	conn := &fakeConn{}
	c := NewClient(id, conn, testWSConfig(), testLogger(t))
	c.onTeardown = func(c *Client) {
		if tracker != nil {
			tracker.Remove(c)
		}
		if registry != nil {
			if sid := c.SessionID(); sid != "" {
				registry.Leave(sid, c)
			}
		}
	}
	if tracker != nil {
		tracker.Add(c)
	}
	return c, conn
}

func TestClientTeardownRunsExactlyOnce(t *testing.T) {
	var teardowns int
	conn := &fakeConn{}
	c := NewClient("c1", conn, testWSConfig(), testLogger(t))
	c.onTeardown = func(*Client) { teardowns++ }

	c.Close(websocket.CloseNormalClosure, "bye")
	c.Close(websocket.CloseNormalClosure, "bye again")
	c.ForceClose()

	require.Equal(t, 1, teardowns)
	require.Equal(t, StateClosed, c.State())
	require.True(t, conn.closed)
}

func TestClientForceCloseSkipsCloseFrame(t *testing.T) {
	conn := &fakeConn{}
	c := NewClient("c1", conn, testWSConfig(), testLogger(t))

	c.ForceClose()

	require.True(t, conn.closed)
	require.Zero(t, conn.closeCode)
}

func TestClientWriteAfterCloseFails(t *testing.T) {
	c, _ := newTestClient(t, "c1", nil, nil)
	c.ForceClose()

	err := c.WriteJSON(newErrorEvent("too late"))
	require.Error(t, err)
}

func TestClientTouchAdvancesLastActivity(t *testing.T) {
	c, _ := newTestClient(t, "c1", nil, nil)
	before := c.LastActivity()

	time.Sleep(5 * time.Millisecond)
	c.Touch()

	require.True(t, c.LastActivity().After(before))
}
