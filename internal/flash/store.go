// Package flash carries one-shot notifications from the request that raised
// them to the next page rendered for the same browser.
package flash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Level classifies a message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Message is a single notification.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Store keeps undelivered messages per browser.
type Store interface {
	Push(ctx context.Context, id string, msg Message) error
	Drain(ctx context.Context, id string) ([]Message, error)
}

// RedisStore keeps messages in a Redis list per browser.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a store; ttl bounds how long undelivered messages live.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id string) string {
	return "flash:" + id
}

// Push appends msg and refreshes the list expiry.
func (s *RedisStore) Push(ctx context.Context, id string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, redisKey(id), payload)
	if s.ttl > 0 {
		pipe.Expire(ctx, redisKey(id), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push flash: %w", err)
	}
	return nil
}

// Drain returns every pending message and deletes them atomically.
func (s *RedisStore) Drain(ctx context.Context, id string) ([]Message, error) {
	pipe := s.client.TxPipeline()
	items := pipe.LRange(ctx, redisKey(id), 0, -1)
	pipe.Del(ctx, redisKey(id))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("drain flash: %w", err)
	}

	raw := items.Val()
	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	messages []Message
	expires  time.Time
}

// NewMemoryStore builds an empty store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Push(_ context.Context, id string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	entry := s.entries[id]
	entry.messages = append(entry.messages, msg)
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}
	s.entries[id] = entry
	return nil
}

func (s *MemoryStore) Drain(_ context.Context, id string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	entry, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	delete(s.entries, id)
	return entry.messages, nil
}

func (s *MemoryStore) sweep() {
	now := s.now()
	for id, entry := range s.entries {
		if !entry.expires.IsZero() && now.After(entry.expires) {
			delete(s.entries, id)
		}
	}
}

// FallbackStore writes to the primary store and falls back to the secondary
// one when the primary fails. Drain reads both so nothing pushed during an
// outage is lost.
type FallbackStore struct {
	primary   Store
	secondary Store
	logger    *zap.Logger
}

// NewFallbackStore pairs a shared store with a process-local one.
func NewFallbackStore(primary, secondary Store, logger *zap.Logger) *FallbackStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackStore{primary: primary, secondary: secondary, logger: logger}
}

func (s *FallbackStore) Push(ctx context.Context, id string, msg Message) error {
	err := s.primary.Push(ctx, id, msg)
	if err == nil {
		return nil
	}
	s.logger.Warn("flash primary store failed; keeping message locally", zap.Error(err))
	return s.secondary.Push(ctx, id, msg)
}

func (s *FallbackStore) Drain(ctx context.Context, id string) ([]Message, error) {
	out, err := s.primary.Drain(ctx, id)
	if err != nil {
		s.logger.Warn("flash primary store drain failed", zap.Error(err))
	}
	local, lerr := s.secondary.Drain(ctx, id)
	if lerr != nil {
		return out, lerr
	}
	return append(out, local...), nil
}
