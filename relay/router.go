package relay

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Akif-Ali-10p/BotInterpreter/broker"
	"github.com/Akif-Ali-10p/BotInterpreter/metrics"
	"github.com/Akif-Ali-10p/BotInterpreter/storage"
	"github.com/Akif-Ali-10p/BotInterpreter/translate"
)

// Router interprets inbound frames and drives the per-connection state
// machine (Unjoined -> Joined -> Closed). Every failure inside a handler is
// converted into an error event for the sender only; nothing a single
// connection sends can take down the relay or disturb its session peers.
type Router struct {
	registry   *Registry
	translator translate.Translator
	store      storage.Store
	publisher  broker.Publisher
	serverID   string
	logger     *zap.SugaredLogger
}

func NewRouter(registry *Registry, translator translate.Translator, store storage.Store, publisher broker.Publisher, serverID string, logger *zap.SugaredLogger) *Router {
	return &Router{
		registry:   registry,
		translator: translator,
		store:      store,
		publisher:  publisher,
		serverID:   serverID,
		logger:     logger,
	}
}

// Dispatch handles one inbound frame to completion. The caller (the
// connection's read loop) invokes it serially, which is what preserves
// per-connection event ordering.
func (rt *Router) Dispatch(ctx context.Context, c *Client, raw []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			rt.logger.Errorw("handler panic", "client_id", c.ID, "panic", rec)
			rt.sendError(c, "internal error")
		}
	}()

	if c.State() == StateClosed {
		return
	}

	var frame clientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		rt.sendError(c, "invalid message format")
		return
	}
	if frame.Type == "" {
		rt.sendError(c, "missing message type")
		return
	}

	switch frame.Type {
	case MsgJoin:
		rt.handleJoin(c, frame)
	case MsgSpeech:
		rt.handleSpeech(ctx, c, frame)
	case MsgContinuous:
		rt.handleContinuous(c, frame)
	case MsgPing:
		rt.handlePing(c, frame)
	default:
		rt.sendError(c, "unknown message type: "+string(frame.Type))
	}
}

func (rt *Router) handleJoin(c *Client, frame clientFrame) {
	if frame.SessionID == "" {
		rt.sendError(c, "sessionId is required")
		return
	}
	if current := c.SessionID(); current != "" && current != frame.SessionID {
		// Membership is only ever removed by teardown, so a connection
		// cannot hop sessions; re-joining the same session is idempotent.
		rt.sendError(c, "already joined a session")
		return
	}

	rt.registry.Join(frame.SessionID, c)
	c.Join(frame.SessionID)
	rt.logger.Infow("client joined session", "client_id", c.ID, "session_id", frame.SessionID)

	if err := c.WriteJSON(newJoinAck(frame.SessionID)); err != nil {
		rt.logger.Warnw("failed to send join ack", "client_id", c.ID, "error", err)
		return
	}
	metrics.MessagesSent.Inc()
}

func (rt *Router) handleSpeech(ctx context.Context, c *Client, frame clientFrame) {
	if c.State() != StateJoined {
		rt.sendError(c, "join a session before sending speech")
		return
	}
	if frame.Text == "" {
		rt.sendError(c, "text is required")
		return
	}
	if frame.SpeakerID == nil {
		rt.sendError(c, "speakerId is required")
		return
	}
	if frame.TargetLanguage == "" {
		rt.sendError(c, "targetLanguage is required")
		return
	}

	source := frame.Language
	if source == "" {
		detection, err := rt.translator.Detect(ctx, frame.Text)
		if err != nil {
			// Detection is best-effort: let the translate step fall back to
			// the backend's own auto-detection.
			rt.logger.Warnw("language detection failed", "client_id", c.ID, "error", err)
			source = translate.AutoLanguage
		} else {
			source = detection.Language
		}
	}

	result, err := rt.translator.Translate(ctx, frame.Text, source, frame.TargetLanguage)
	if err != nil {
		metrics.Translations.WithLabelValues("failure").Inc()
		rt.logger.Errorw("translation failed", "client_id", c.ID, "error", err)
		rt.sendError(c, "translation failed")
		return
	}
	metrics.Translations.WithLabelValues("success").Inc()

	originalLanguage := source
	if result.DetectedLanguage != "" && (originalLanguage == "" || originalLanguage == translate.AutoLanguage) {
		originalLanguage = result.DetectedLanguage
	}

	sessionID := c.SessionID()
	stored, err := rt.store.CreateMessage(ctx, storage.Message{
		SessionID:        sessionID,
		SpeakerID:        *frame.SpeakerID,
		OriginalText:     frame.Text,
		TranslatedText:   result.TranslatedText,
		OriginalLanguage: originalLanguage,
		TargetLanguage:   frame.TargetLanguage,
	})
	if err != nil {
		rt.logger.Errorw("failed to persist message", "client_id", c.ID, "session_id", sessionID, "error", err)
		rt.sendError(c, "failed to store message")
		return
	}

	event := newTranslationEvent(stored)
	rt.registry.Broadcast(sessionID, event)
	rt.publishEvent(ctx, sessionID, event)
}

func (rt *Router) handleContinuous(c *Client, frame clientFrame) {
	if c.State() != StateJoined {
		rt.sendError(c, "join a session before sending interim text")
		return
	}
	if frame.InterimText == "" {
		rt.sendError(c, "interimText is required")
		return
	}
	if frame.FinalSpeakerID == nil {
		rt.sendError(c, "finalSpeakerId is required")
		return
	}
	if frame.TargetLang == "" {
		rt.sendError(c, "targetLang is required")
		return
	}

	// Interim text is broadcast-only: no translation, no persistence. This
	// path has to stay cheap, it fires on every partial transcript.
	rt.registry.Broadcast(c.SessionID(), newInterimEvent(*frame.FinalSpeakerID, frame.InterimText))
}

func (rt *Router) handlePing(c *Client, frame clientFrame) {
	var timestamp int64
	if frame.Timestamp != nil {
		timestamp = *frame.Timestamp
	}
	if err := c.WriteJSON(newPong(timestamp, time.Now().UnixMilli())); err != nil {
		rt.logger.Warnw("failed to send pong", "client_id", c.ID, "error", err)
		return
	}
	metrics.MessagesSent.Inc()
}

// publishEvent exports a broadcast to the configured broker. Export is
// best-effort and never affects the relay path.
func (rt *Router) publishEvent(ctx context.Context, sessionID string, event TranslationEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		rt.logger.Errorw("failed to marshal broker event", "error", err)
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := rt.publisher.Publish(publishCtx, broker.Event{
		SessionID: sessionID,
		ServerID:  rt.serverID,
		Type:      string(MsgTranslation),
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		rt.logger.Errorw("failed to publish broker event", "session_id", sessionID, "error", err)
		return
	}
	metrics.BrokerEventsPublished.WithLabelValues(rt.publisher.Type()).Inc()
}

func (rt *Router) sendError(c *Client, message string) {
	if err := c.WriteJSON(newErrorEvent(message)); err != nil {
		rt.logger.Debugw("failed to send error event", "client_id", c.ID, "error", err)
		return
	}
	metrics.MessagesSent.Inc()
}
