package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	apptrade "github.com/techsolutions/pos/internal/application/trade"
)

const (
	defaultInvoiceKeyPrefix = "pos:invoice:seq:"

	// Per-second counters only need to outlive the second they count
	invoiceKeyTTL = 2 * time.Minute
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisInvoiceSequence hands out invoice numbers from a Redis counter keyed
// by prefix and second, so every server instance draws from one sequence.
type RedisInvoiceSequence struct {
	client    *redis.Client
	prefix    string
	keyPrefix string
}

// NewRedisInvoiceSequence connects to Redis and verifies the connection
func NewRedisInvoiceSequence(cfg RedisConfig, invoicePrefix string) (*RedisInvoiceSequence, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisInvoiceSequenceWithClient(client, invoicePrefix, ""), nil
}

// NewRedisInvoiceSequenceWithClient creates a sequence on an existing client
func NewRedisInvoiceSequenceWithClient(client *redis.Client, invoicePrefix, keyPrefix string) *RedisInvoiceSequence {
	if keyPrefix == "" {
		keyPrefix = defaultInvoiceKeyPrefix
	}
	return &RedisInvoiceSequence{
		client:    client,
		prefix:    invoicePrefix,
		keyPrefix: keyPrefix,
	}
}

// Next increments the counter for at's second and formats the number
func (s *RedisInvoiceSequence) Next(ctx context.Context, at time.Time) (string, error) {
	key := s.key(at)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, invoiceKeyTTL)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to increment invoice sequence: %w", err)
	}

	return apptrade.FormatInvoiceNumber(s.prefix, at, incr.Val()), nil
}

func (s *RedisInvoiceSequence) key(at time.Time) string {
	return s.keyPrefix + s.prefix + ":" + at.Format("20060102150405")
}

// Close closes the Redis client
func (s *RedisInvoiceSequence) Close() error {
	return s.client.Close()
}

var _ apptrade.InvoiceNumberGenerator = (*RedisInvoiceSequence)(nil)
