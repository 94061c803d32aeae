package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Log         LogConfig         `mapstructure:"log"`
	Redis       RedisConfig       `mapstructure:"redis"`
	HealthCheck HealthCheckConfig `mapstructure:"health_check"`
	Dispatch    DispatchConfig    `mapstructure:"dispatch"`
	Artifacts   ArtifactsConfig   `mapstructure:"artifacts"`
	Janitor     JanitorConfig     `mapstructure:"janitor"`
}

type ServerConfig struct {
	IP             string        `mapstructure:"ip"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type DatabaseConfig struct {
	Host                  string        `mapstructure:"host"`
	Port                  int           `mapstructure:"port"`
	Database              string        `mapstructure:"database"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	MaxConnections        int           `mapstructure:"max_connections"`
	MaxIdleConnections    int           `mapstructure:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `mapstructure:"connection_max_lifetime"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// RateLimit 每个窗口允许的请求数，0表示不限流
	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`
}

// HealthCheckConfig 验证引擎健康巡检配置
type HealthCheckConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	Timeout   time.Duration `mapstructure:"timeout"`
	BootDelay time.Duration `mapstructure:"boot_delay"`
}

// DispatchConfig 引擎调度与外呼超时配置
type DispatchConfig struct {
	// FallbackURL 注册表为空时兜底的引擎地址
	FallbackURL     string        `mapstructure:"fallback_url"`
	ProbeTimeout    time.Duration `mapstructure:"probe_timeout"`
	ValidateTimeout time.Duration `mapstructure:"validate_timeout"`
	BulkTimeout     time.Duration `mapstructure:"bulk_timeout"`
	PollTimeout     time.Duration `mapstructure:"poll_timeout"`
	ResultsTimeout  time.Duration `mapstructure:"results_timeout"`
	WebhookTimeout  time.Duration `mapstructure:"webhook_timeout"`
}

type ArtifactsConfig struct {
	Dir string `mapstructure:"dir"`
	// TTL 结果文件保留时长，过期由清理任务删除
	TTL time.Duration `mapstructure:"ttl"`
}

type JanitorConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Spec        string        `mapstructure:"spec"`
	StaleCutoff time.Duration `mapstructure:"stale_cutoff"`
}

func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 设置默认值
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.max_header_bytes", 1048576)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.max_connections", 20)
	viper.SetDefault("database.max_idle_connections", 10)
	viper.SetDefault("database.connection_max_lifetime", "1h")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.output", "stdout")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.rate_limit", 0)
	viper.SetDefault("redis.rate_window", "1m")

	viper.SetDefault("health_check.enabled", true)
	viper.SetDefault("health_check.interval", "5m")
	viper.SetDefault("health_check.timeout", "10s")
	viper.SetDefault("health_check.boot_delay", "5s")

	viper.SetDefault("dispatch.fallback_url", "http://localhost:3000")
	viper.SetDefault("dispatch.probe_timeout", "10s")
	viper.SetDefault("dispatch.validate_timeout", "15s")
	viper.SetDefault("dispatch.bulk_timeout", "30s")
	viper.SetDefault("dispatch.poll_timeout", "10s")
	viper.SetDefault("dispatch.results_timeout", "15s")
	viper.SetDefault("dispatch.webhook_timeout", "10s")

	viper.SetDefault("artifacts.dir", "data/results")
	viper.SetDefault("artifacts.ttl", "168h")

	viper.SetDefault("janitor.enabled", true)
	viper.SetDefault("janitor.spec", "0 * * * *")
	viper.SetDefault("janitor.stale_cutoff", "24h")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
