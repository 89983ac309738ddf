package cache

import (
	"fmt"

	apptrade "github.com/techsolutions/pos/internal/application/trade"
	"github.com/techsolutions/pos/internal/infrastructure/config"
	"go.uber.org/zap"
)

// InvoiceGeneratorFactory picks the invoice number generator from configuration
type InvoiceGeneratorFactory struct {
	sales         config.SalesConfig
	redisConfig   config.RedisConfig
	logger        *zap.Logger
	allowFallback bool
}

// InvoiceGeneratorFactoryOption is a functional option for configuring the factory
type InvoiceGeneratorFactoryOption func(*InvoiceGeneratorFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) InvoiceGeneratorFactoryOption {
	return func(f *InvoiceGeneratorFactory) {
		f.logger = logger
	}
}

// WithLocalFallback controls whether an unreachable Redis falls back to the
// in-process sequence. Default is true.
func WithLocalFallback(allow bool) InvoiceGeneratorFactoryOption {
	return func(f *InvoiceGeneratorFactory) {
		f.allowFallback = allow
	}
}

// NewInvoiceGeneratorFactory creates a new factory
func NewInvoiceGeneratorFactory(sales config.SalesConfig, redisCfg config.RedisConfig, opts ...InvoiceGeneratorFactoryOption) *InvoiceGeneratorFactory {
	f := &InvoiceGeneratorFactory{
		sales:         sales,
		redisConfig:   redisCfg,
		logger:        zap.NewNop(),
		allowFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the configured generator. The unique constraint on
// invoice numbers still guards against collisions after a fallback, since
// the engine retries on duplicates.
func (f *InvoiceGeneratorFactory) Create() (apptrade.InvoiceNumberGenerator, error) {
	if f.sales.InvoiceSequence != config.SequenceRedis {
		f.logger.Info("Using in-process invoice sequence", zap.String("prefix", f.sales.InvoicePrefix))
		return apptrade.NewSequenceInvoiceGenerator(f.sales.InvoicePrefix), nil
	}

	seq, err := NewRedisInvoiceSequence(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.sales.InvoicePrefix)
	if err == nil {
		f.logger.Info("Using Redis invoice sequence", zap.String("addr", f.redisConfig.Addr()))
		return seq, nil
	}

	if !f.allowFallback {
		return nil, fmt.Errorf("redis invoice sequence unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-process invoice sequence",
		zap.Error(err),
	)
	return apptrade.NewSequenceInvoiceGenerator(f.sales.InvoicePrefix), nil
}
