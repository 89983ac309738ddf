package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	Sales     SalesConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
}

// Storage modes for AppConfig.Mode
const (
	ModeDatabase = "database"
	ModeDemo     = "demo"
)

// Database drivers for DatabaseConfig.Driver
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Invoice sequence backends for SalesConfig.InvoiceSequence
const (
	SequenceLocal = "local"
	SequenceRedis = "redis"
)

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
	Mode string // database or demo; demo serves an in-memory data set
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	ConnectTimeout  time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Revocation stores for JWTConfig.RevocationStore
const (
	RevocationMemory = "memory"
	RevocationRedis  = "redis"
)

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                string
	AccessTokenExpiration time.Duration
	Issuer                string
	RevocationStore       string // memory or redis; where logged-out token ids are kept
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// SalesConfig holds sale engine settings
type SalesConfig struct {
	TaxRate            decimal.Decimal
	InvoicePrefix      string
	InvoiceMaxAttempts int
	InvoiceSequence    string // local or redis
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	LoginRatePerMin  int
	LoginBurst       int
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsInterval   time.Duration
	DBTraceEnabled    bool
	DBLogFullSQL      bool
	ProfilingEnabled  bool
	PyroscopeAddress  string
}

// Load loads configuration from config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with POS_ prefix (e.g., POS_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pos")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("POS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	taxRate := decimal.Zero
	hasTaxRate := false
	if raw := strings.TrimSpace(v.GetString("sales.tax_rate")); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("sales.tax_rate is not a decimal: %w", err)
		}
		taxRate = rate
		hasTaxRate = true
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
			Mode: strings.ToLower(v.GetString("app.mode")),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("database.driver")),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			ConnectTimeout:  v.GetDuration("database.connect_timeout"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
			Issuer:                v.GetString("jwt.issuer"),
			RevocationStore:       strings.ToLower(v.GetString("jwt.revocation_store")),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Sales: SalesConfig{
			TaxRate:            taxRate,
			InvoicePrefix:      v.GetString("sales.invoice_prefix"),
			InvoiceMaxAttempts: v.GetInt("sales.invoice_max_attempts"),
			InvoiceSequence:    strings.ToLower(v.GetString("sales.invoice_sequence")),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			LoginRatePerMin:  v.GetInt("http.login_rate_per_min"),
			LoginBurst:       v.GetInt("http.login_burst"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeAddress:  v.GetString("telemetry.pyroscope_address"),
		},
	}

	applyDefaults(cfg, hasTaxRate)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config, hasTaxRate bool) {
	if cfg.App.Name == "" {
		cfg.App.Name = "pos-server"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.Mode == "" {
		cfg.App.Mode = ModeDatabase
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "sistema_ventas"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "pos.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.ConnectTimeout == 0 {
		cfg.Database.ConnectTimeout = 5 * time.Second
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 8 * time.Hour // one shift
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "pos-server"
	}
	if cfg.JWT.RevocationStore == "" {
		cfg.JWT.RevocationStore = RevocationMemory
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if !hasTaxRate {
		cfg.Sales.TaxRate = decimal.RequireFromString("0.10")
	}
	if cfg.Sales.InvoicePrefix == "" {
		cfg.Sales.InvoicePrefix = "FAC"
	}
	if cfg.Sales.InvoiceMaxAttempts == 0 {
		cfg.Sales.InvoiceMaxAttempts = 5
	}
	if cfg.Sales.InvoiceSequence == "" {
		cfg.Sales.InvoiceSequence = SequenceLocal
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.HTTP.LoginRatePerMin == 0 {
		cfg.HTTP.LoginRatePerMin = 10
	}
	if cfg.HTTP.LoginBurst == 0 {
		cfg.HTTP.LoginBurst = 5
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.App.Mode {
	case ModeDatabase, ModeDemo:
	default:
		return fmt.Errorf("app.mode must be %q or %q, got %q", ModeDatabase, ModeDemo, c.App.Mode)
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Sales.TaxRate.IsNegative() || c.Sales.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("sales.tax_rate must be in [0, 1), got %s", c.Sales.TaxRate)
	}
	if c.Sales.InvoiceMaxAttempts < 1 {
		return fmt.Errorf("sales.invoice_max_attempts must be at least 1")
	}
	if strings.ContainsAny(c.Sales.InvoicePrefix, " -") {
		return fmt.Errorf("sales.invoice_prefix cannot contain spaces or dashes")
	}
	if len(c.Sales.InvoicePrefix) > 20 {
		return fmt.Errorf("sales.invoice_prefix cannot exceed 20 characters")
	}
	switch c.Sales.InvoiceSequence {
	case SequenceLocal, SequenceRedis:
	default:
		return fmt.Errorf("sales.invoice_sequence must be %q or %q, got %q", SequenceLocal, SequenceRedis, c.Sales.InvoiceSequence)
	}
	switch c.JWT.RevocationStore {
	case RevocationMemory, RevocationRedis:
	default:
		return fmt.Errorf("jwt.revocation_store must be %q or %q, got %q", RevocationMemory, RevocationRedis, c.JWT.RevocationStore)
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.App.Mode == ModeDemo {
			return fmt.Errorf("app.mode=demo is not allowed in production")
		}
		if c.Database.Driver == DriverPostgres && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.PyroscopeAddress == "" {
		return fmt.Errorf("telemetry.pyroscope_address is required when profiling is enabled")
	}

	return nil
}

// DSN returns the PostgreSQL connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	if d.ConnectTimeout > 0 {
		q.Set("connect_timeout", fmt.Sprintf("%d", int(d.ConnectTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
