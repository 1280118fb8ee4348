package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore implements Store using Redis. Messages live in a per-session
// list trimmed to historyLimit, IDs come from a shared counter, settings
// are one JSON value per session.
type RedisStore struct {
	client       *redis.Client
	keyPrefix    string
	historyLimit int
}

func NewRedisStore(client *redis.Client, keyPrefix string, historyLimit int) *RedisStore {
	if historyLimit < 1 {
		historyLimit = 500
	}
	return &RedisStore{
		client:       client,
		keyPrefix:    keyPrefix,
		historyLimit: historyLimit,
	}
}

func (s *RedisStore) messagesKey(sessionID string) string {
	return fmt.Sprintf("%s:messages:%s", s.keyPrefix, sessionID)
}

func (s *RedisStore) settingsKey(sessionID string) string {
	return fmt.Sprintf("%s:settings:%s", s.keyPrefix, sessionID)
}

func (s *RedisStore) counterKey() string {
	return fmt.Sprintf("%s:message-id", s.keyPrefix)
}

func (s *RedisStore) CreateMessage(ctx context.Context, msg Message) (Message, error) {
	id, err := s.client.Incr(ctx, s.counterKey()).Result()
	if err != nil {
		return Message{}, fmt.Errorf("failed to allocate message id: %w", err)
	}
	msg.ID = id
	msg.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(msg)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal message: %w", err)
	}

	key := s.messagesKey(msg.SessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-s.historyLimit), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return Message{}, fmt.Errorf("failed to store message: %w", err)
	}

	return msg, nil
}

func (s *RedisStore) GetMessages(ctx context.Context, sessionID string) ([]Message, error) {
	values, err := s.client.LRange(ctx, s.messagesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	messages := make([]Message, 0, len(values))
	for _, value := range values {
		var msg Message
		if err := json.Unmarshal([]byte(value), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *RedisStore) ClearMessages(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.messagesKey(sessionID)).Err()
}

func (s *RedisStore) GetSettings(ctx context.Context, sessionID string) (Settings, error) {
	data, err := s.client.Get(ctx, s.settingsKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return Settings{}, ErrSettingsNotFound
		}
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return settings, nil
}

func (s *RedisStore) CreateOrUpdateSettings(ctx context.Context, settings Settings) (Settings, error) {
	settings.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(settings)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := s.client.Set(ctx, s.settingsKey(settings.SessionID), data, 0).Err(); err != nil {
		return Settings{}, fmt.Errorf("failed to store settings: %w", err)
	}
	return settings, nil
}
