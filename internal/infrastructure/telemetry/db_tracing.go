package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls the otelgorm plugin.
type DBTracingConfig struct {
	Enabled    bool
	DBSystem   string // "postgresql" or "sqlite"
	LogFullSQL bool   // include bound query variables in spans; dev only
}

// RegisterDBTracing installs otelgorm on db so every statement becomes a span
// child of the request span carried in the statement context.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled", zap.String("db_system", cfg.DBSystem))
	return nil
}
