// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Engine   EngineConfig   `mapstructure:"engine"`
	GenAI    GenAIConfig    `mapstructure:"genai"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	QueryTimeout   int    `mapstructure:"query_timeout"` // milliseconds
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Query Engine Config ---

// EngineConfig holds the tunables of the query-understanding pipeline.
type EngineConfig struct {
	Router   RouterConfig   `mapstructure:"router"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Security SecurityConfig `mapstructure:"security"`
	Fallback FallbackConfig `mapstructure:"fallback"`
}

type RouterConfig struct {
	BreakerFailureThreshold int `mapstructure:"breaker_failure_threshold"`
	BreakerCooldown         int `mapstructure:"breaker_cooldown"`          // milliseconds
	AvailabilityInterval    int `mapstructure:"availability_interval"`     // milliseconds
	HealthProbeTimeout      int `mapstructure:"health_probe_timeout"`      // milliseconds
}

type CacheConfig struct {
	Capacity            int     `mapstructure:"capacity"`
	MinTTL              int     `mapstructure:"min_ttl"` // milliseconds
	MaxTTL              int     `mapstructure:"max_ttl"` // milliseconds
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	FuzzyMaxDistance    int     `mapstructure:"fuzzy_max_distance"`
}

type SecurityConfig struct {
	AllowThreshold int `mapstructure:"allow_threshold"` // 0-100 risk score floor
}

type FallbackConfig struct {
	ConfidenceFloor float64 `mapstructure:"confidence_floor"`
}

// GenAIConfig holds settings for the external text-completion backend.
type GenAIConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	MaxRetries  int     `mapstructure:"max_retries"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
