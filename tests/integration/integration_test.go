package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Akif-Ali-10p/BotInterpreter/broker"
	"github.com/Akif-Ali-10p/BotInterpreter/config"
	"github.com/Akif-Ali-10p/BotInterpreter/relay"
	"github.com/Akif-Ali-10p/BotInterpreter/storage"
	"github.com/Akif-Ali-10p/BotInterpreter/translate"
)

const readTimeout = 2 * time.Second

type fixture struct {
	ts       *httptest.Server
	registry *relay.Registry
	store    storage.Store
}

// newFixture starts a full in-process relay: real handler, real registry,
// memory store, offline translator.
func newFixture(t *testing.T) *fixture {
	logger := zaptest.NewLogger(t).Sugar()
	store := storage.NewMemoryStore(100)

	wsCfg := &config.WebSocketConfig{
		MaxConnections:   50,
		MessageSizeLimit: 65536,
		HandshakeTimeout: 2,
		WriteTimeout:     2,
		WriteMaxRetries:  1,
	}
	registry := relay.NewRegistry(logger)
	tracker := relay.NewTracker()
	router := relay.NewRouter(registry, translate.NewStaticTranslator(), store, broker.Noop{}, "integration", logger)
	handler := relay.NewHandler(registry, tracker, router, wsCfg, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.HandleWebSocket)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return &fixture{ts: ts, registry: registry, store: store}
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	wsURL := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, frame string) {
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "expected no frame to arrive")
}

func join(t *testing.T, conn *websocket.Conn, sessionID string) {
	send(t, conn, `{"type":"join","sessionId":"`+sessionID+`"}`)
	ack := readFrame(t, conn)
	require.Equal(t, "join", ack["type"])
	require.Equal(t, true, ack["success"])
	require.Equal(t, sessionID, ack["sessionId"])
}

func TestSpeechRoundTrip(t *testing.T) {
	f := newFixture(t)

	connA := f.dial(t)
	connB := f.dial(t)
	join(t, connA, "s1")
	join(t, connB, "s1")

	send(t, connA, `{"type":"speech","text":"Hello","speakerId":1,"language":"en","targetLanguage":"es"}`)

	for _, conn := range []*websocket.Conn{connA, connB} {
		event := readFrame(t, conn)
		require.Equal(t, "translation", event["type"])

		msg, ok := event["message"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "s1", msg["sessionId"])
		assert.Equal(t, float64(1), msg["speakerId"])
		assert.Equal(t, "Hello", msg["originalText"])
		assert.Equal(t, "Hola", msg["translatedText"])
		assert.Equal(t, "en", msg["originalLanguage"])
		assert.Equal(t, "es", msg["targetLanguage"])
	}

	// The broadcast payload is the persisted record.
	messages, err := f.store.GetMessages(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Hola", messages[0].TranslatedText)
}

func TestInterimBroadcastSkipsPersistence(t *testing.T) {
	f := newFixture(t)

	connA := f.dial(t)
	connB := f.dial(t)
	join(t, connA, "s1")
	join(t, connB, "s1")

	send(t, connA, `{"type":"continuous","interimText":"Hel","finalSpeakerId":2,"targetLang":"es"}`)

	for _, conn := range []*websocket.Conn{connA, connB} {
		event := readFrame(t, conn)
		require.Equal(t, "interim", event["type"])
		assert.Equal(t, float64(2), event["speakerId"])
		assert.Equal(t, "Hel", event["text"])
	}

	messages, err := f.store.GetMessages(context.Background(), "s1")
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestValidationErrorStaysWithSender(t *testing.T) {
	f := newFixture(t)

	connA := f.dial(t)
	connB := f.dial(t)
	join(t, connA, "s1")
	join(t, connB, "s1")

	send(t, connA, `{"type":"speech","text":"Hello","speakerId":1}`)

	event := readFrame(t, connA)
	require.Equal(t, "error", event["type"])
	assert.Contains(t, event["message"], "targetLanguage")

	expectSilence(t, connB)
}

func TestPingPong(t *testing.T) {
	f := newFixture(t)

	connA := f.dial(t)
	connB := f.dial(t)
	join(t, connA, "s1")
	join(t, connB, "s1")

	send(t, connA, `{"type":"ping","timestamp":1000}`)

	pong := readFrame(t, connA)
	require.Equal(t, "pong", pong["type"])
	assert.Equal(t, float64(1000), pong["timestamp"])
	assert.NotZero(t, pong["serverTime"])

	expectSilence(t, connB)
}

func TestDisconnectCleansUpMembership(t *testing.T) {
	f := newFixture(t)

	connA := f.dial(t)
	connB := f.dial(t)
	join(t, connA, "s1")
	join(t, connB, "s1")
	require.Equal(t, 2, f.registry.MemberCount("s1"))

	require.NoError(t, connA.Close())

	require.Eventually(t, func() bool {
		return f.registry.MemberCount("s1") == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The remaining member still receives broadcasts.
	send(t, connB, `{"type":"continuous","interimText":"still here","finalSpeakerId":1,"targetLang":"es"}`)
	event := readFrame(t, connB)
	require.Equal(t, "interim", event["type"])

	require.NoError(t, connB.Close())
	require.Eventually(t, func() bool {
		return f.registry.MemberCount("s1") == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMalformedFrameKeepsConnectionUsable(t *testing.T) {
	f := newFixture(t)

	conn := f.dial(t)
	send(t, conn, `this is not json`)

	event := readFrame(t, conn)
	require.Equal(t, "error", event["type"])

	// The connection is still usable afterwards.
	join(t, conn, "s1")
}
