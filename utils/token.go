package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/rueidis"
)

// TokenBlacklist records logged-out tokens until they would have expired anyway.
type TokenBlacklist interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

type MemoryBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
	now    func() time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{tokens: make(map[string]time.Time), now: time.Now}
}

func (b *MemoryBlacklist) Add(_ context.Context, token string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for t, expiry := range b.tokens {
		if now.After(expiry) {
			delete(b.tokens, t)
		}
	}
	b.tokens[token] = now.Add(ttl)
	return nil
}

func (b *MemoryBlacklist) Contains(_ context.Context, token string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	expiry, ok := b.tokens[token]
	return ok && b.now().Before(expiry), nil
}

// RedisBlacklist shares the blacklist between API replicas.
type RedisBlacklist struct {
	client rueidis.Client
	prefix string
}

func NewRedisBlacklist(client rueidis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client, prefix: "hospital:blacklist:"}
}

func (b *RedisBlacklist) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return b.prefix + hex.EncodeToString(sum[:])
}

func (b *RedisBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	cmd := b.client.B().Set().Key(b.key(token)).Value("1").ExSeconds(seconds).Build()
	return b.client.Do(ctx, cmd).Error()
}

func (b *RedisBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	cmd := b.client.B().Exists().Key(b.key(token)).Build()
	n, err := b.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func NewRedisClient(addr string) (rueidis.Client, error) {
	return rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
}
