package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, batch sizes, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	DB        DBConfig
	Log       LogConfig
	Engine    EngineConfig
	Sweep     SweepConfig
	Outbox    OutboxConfig
	Ops       OpsConfig
	Telemetry TelemetryConfig
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	Format     string `envconfig:"LOG_FORMAT" default:"json"`
	TimeZone   string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

// EngineConfig is injected into the orchestrator at construction time.
type EngineConfig struct {
	// Applied when a request carries no hold duration. Zero disables expiry.
	DefaultHold    time.Duration `envconfig:"ENGINE_DEFAULT_HOLD" default:"15m"`
	LockTimeout    time.Duration `envconfig:"ENGINE_LOCK_TIMEOUT" default:"2s"`
	MaxRetries     int           `envconfig:"ENGINE_MAX_RETRIES" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"ENGINE_RETRY_BASE_DELAY" default:"50ms"`
}

type SweepConfig struct {
	Interval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"30s"`
	BatchSize int           `envconfig:"SWEEP_BATCH_SIZE" default:"200"`
	Workers   int           `envconfig:"SWEEP_WORKERS" default:"4"`
}

type OutboxConfig struct {
	Interval    time.Duration `envconfig:"OUTBOX_INTERVAL" default:"5s"`
	BatchSize   int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	PublishRPS  float64       `envconfig:"OUTBOX_PUBLISH_RPS" default:"50"`
	MaxAttempts int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type OpsConfig struct {
	Port string `envconfig:"OPS_PORT" default:"9090"`
}

type TelemetryConfig struct {
	Enabled     bool   `envconfig:"OTEL_ENABLED" default:"false"`
	Endpoint    string `envconfig:"OTEL_ENDPOINT" default:"localhost:4318"`
	Insecure    bool   `envconfig:"OTEL_INSECURE" default:"true"`
	ServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"reservation-engine"`
	Environment string `envconfig:"APP_ENV" default:"dev"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

// LoadConfig reads an optional .env file, then the process environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Engine.MaxRetries < 0 {
		return fmt.Errorf("ENGINE_MAX_RETRIES must be >= 0, got %d", c.Engine.MaxRetries)
	}
	if c.Engine.LockTimeout <= 0 {
		return fmt.Errorf("ENGINE_LOCK_TIMEOUT must be positive")
	}
	if c.Engine.DefaultHold < 0 {
		return fmt.Errorf("ENGINE_DEFAULT_HOLD must not be negative")
	}
	if c.Sweep.BatchSize <= 0 || c.Sweep.Workers <= 0 {
		return fmt.Errorf("SWEEP_BATCH_SIZE and SWEEP_WORKERS must be positive")
	}
	if c.Outbox.PublishRPS <= 0 {
		return fmt.Errorf("OUTBOX_PUBLISH_RPS must be positive")
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 40,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			Format:     "text",
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Engine: EngineConfig{
			DefaultHold:    15 * time.Minute,
			LockTimeout:    2 * time.Second,
			MaxRetries:     3,
			RetryBaseDelay: 5 * time.Millisecond,
		},
		Sweep: SweepConfig{
			Interval:  time.Second,
			BatchSize: 50,
			Workers:   2,
		},
		Outbox: OutboxConfig{
			Interval:    time.Second,
			BatchSize:   50,
			PublishRPS:  1000,
			MaxAttempts: 3,
		},
		Ops: OpsConfig{Port: "19090"},
		Telemetry: TelemetryConfig{
			ServiceName: "reservation-engine-test",
			Environment: "test",
		},
	}
}
