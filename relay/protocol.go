package relay

import "github.com/Akif-Ali-10p/BotInterpreter/storage"

type MessageType string

const (
	MsgJoin        MessageType = "join"
	MsgSpeech      MessageType = "speech"
	MsgContinuous  MessageType = "continuous"
	MsgPing        MessageType = "ping"
	MsgTranslation MessageType = "translation"
	MsgInterim     MessageType = "interim"
	MsgPong        MessageType = "pong"
	MsgError       MessageType = "error"
)

// clientFrame is the inbound envelope. All client message kinds share one
// flat shape; the Type discriminator decides which fields matter.
type clientFrame struct {
	Type MessageType `json:"type"`

	// join
	SessionID string `json:"sessionId"`

	// speech
	Text           string `json:"text"`
	SpeakerID      *int   `json:"speakerId"`
	Language       string `json:"language"`
	TargetLanguage string `json:"targetLanguage"`

	// continuous
	InterimText    string `json:"interimText"`
	FinalSpeakerID *int   `json:"finalSpeakerId"`
	TargetLang     string `json:"targetLang"`

	// ping
	Timestamp *int64 `json:"timestamp"`
}

type JoinAck struct {
	Type      MessageType `json:"type"`
	Success   bool        `json:"success"`
	SessionID string      `json:"sessionId"`
}

type TranslationEvent struct {
	Type    MessageType     `json:"type"`
	Message storage.Message `json:"message"`
}

type InterimEvent struct {
	Type      MessageType `json:"type"`
	SpeakerID int         `json:"speakerId"`
	Text      string      `json:"text"`
}

type Pong struct {
	Type       MessageType `json:"type"`
	Timestamp  int64       `json:"timestamp"`
	ServerTime int64       `json:"serverTime"`
}

type ErrorEvent struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

func newJoinAck(sessionID string) JoinAck {
	return JoinAck{Type: MsgJoin, Success: true, SessionID: sessionID}
}

func newTranslationEvent(msg storage.Message) TranslationEvent {
	return TranslationEvent{Type: MsgTranslation, Message: msg}
}

func newInterimEvent(speakerID int, text string) InterimEvent {
	return InterimEvent{Type: MsgInterim, SpeakerID: speakerID, Text: text}
}

func newPong(timestamp, serverTime int64) Pong {
	return Pong{Type: MsgPong, Timestamp: timestamp, ServerTime: serverTime}
}

func newErrorEvent(message string) ErrorEvent {
	return ErrorEvent{Type: MsgError, Message: message}
}
