package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/techsolutions/pos/internal/infrastructure/config"
)

// RevocationList records tokens revoked at logout until they would have
// expired anyway
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const revocationKeyPrefix = "pos:token:revoked:"

// RedisRevocationList shares revocations between server instances
type RedisRevocationList struct {
	client *redis.Client
}

// NewRedisRevocationList connects to Redis and verifies the connection
func NewRedisRevocationList(cfg config.RedisConfig) (*RedisRevocationList, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for token revocation: %w", err)
	}
	return NewRedisRevocationListWithClient(client), nil
}

// NewRedisRevocationListWithClient uses an existing client
func NewRedisRevocationListWithClient(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

// Revoke stores the token id with the given TTL
func (l *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, revocationKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id was revoked
func (l *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, revocationKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// Close closes the Redis client
func (l *RedisRevocationList) Close() error {
	return l.client.Close()
}

// InMemoryRevocationList keeps revocations in process. Entries are dropped
// lazily once expired.
type InMemoryRevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewInMemoryRevocationList creates an empty list
func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke records the token id until now+ttl
func (l *InMemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[jti] = l.now().Add(ttl)
	return nil
}

// IsRevoked reports whether the token id is revoked and not yet expired
func (l *InMemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expiresAt, ok := l.entries[jti]
	if !ok {
		return false, nil
	}
	if l.now().After(expiresAt) {
		delete(l.entries, jti)
		return false, nil
	}
	return true, nil
}

var (
	_ RevocationList = (*RedisRevocationList)(nil)
	_ RevocationList = (*InMemoryRevocationList)(nil)
)
