package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"-"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// kafka
	KafkaBrokers         []string `toml:"kafka_brokers"`
	KafkaWorkoutTopic    string   `toml:"kafka_workout_topic"`
	KafkaPublishDisabled bool     `toml:"kafka_publish_disabled"`

	// composition cache, in megabytes
	CompositionCacheSizeMB int `toml:"composition_cache_size_mb"`

	AnalysisRateLimitAllowedPerMin int `toml:"analysis_rate_limit_allowed_per_min"`

	// http
	AllowedOrigins []string `toml:"allowed_origins"`
	MCPEnabled     bool     `toml:"mcp_enabled"`
	ApplyDBSchema  bool     `toml:"apply_db_schema"`

	Analysis Analysis `toml:"analysis"`
}

// Analysis holds the tunables of the adaptation decision engine.
// Zero values fall back to the engine defaults.
type Analysis struct {
	MaterialReversalPercent float64 `toml:"material_reversal_percent"`
	NoisePercent            float64 `toml:"noise_percent"`
	NoiseAbsolute           float64 `toml:"noise_absolute"`
	RecentAnalysisDays      int     `toml:"recent_analysis_days"`
	StaleAnalysisDays       int     `toml:"stale_analysis_days"`
	DecliningShare          float64 `toml:"declining_share"`
	PerformanceWindowDays   int     `toml:"performance_window_days"`
	// Polarity overrides, e.g. weight = "increase" for mass gaining programs.
	Polarity map[string]string `toml:"polarity"`
}

type Toml struct {
	Development *Config
	Production  *Config
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg, env = t.Development, "development"
	case "prod", "production":
		cfg, env = t.Production, "production"
	case "ddev", "dockerdev":
		cfg, env = t.DockerDev, "dockerdev"
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing", env)
	}
	cfg.Environment = env
	return cfg, nil
}

// Load reads the TOML config file and returns the section for the given env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}
	return t.Get(env)
}

// Parse is Load over an in-memory TOML document.
func Parse(env, data string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return t.Get(env)
}
