package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv             string        `yaml:"app_env" default:"dev"`
	LogLevel           string        `yaml:"log_level" default:"info"`
	HTTPPort           string        `yaml:"http_port" default:"8080"`
	GRPCPort           string        `yaml:"grpc_port" default:"50051"`
	RequestTimeout     time.Duration `yaml:"request_timeout" default:"30s"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" default:"10s"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size" default:"1048576"`

	CatalogBackend   string `yaml:"catalog_backend" default:"sqlite"`
	OrderBackend     string `yaml:"order_backend" default:"memory"`
	SessionBackend   string `yaml:"session_backend" default:"memory"`
	BroadcastBackend string `yaml:"broadcast_backend" default:"memory"`

	CMS       CMSConfig       `yaml:"cms"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type CMSConfig struct {
	ProjectID  string `yaml:"project_id"`
	Dataset    string `yaml:"dataset" default:"production"`
	APIVersion string `yaml:"api_version" default:"2024-01-01"`
	Token      string `yaml:"token"`
	// BaseURL overrides the project host, mostly for tests and proxies.
	BaseURL string `yaml:"base_url"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" default:"./products.db"`
}

type PostgresConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"5432"`
	User     string `yaml:"user" default:"postgres"`
	Password string `yaml:"password" default:"postgres"`
	DBName   string `yaml:"db_name" default:"storefront"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" default:"localhost:6379"`
	Password string        `yaml:"password"`
	CacheTTL time.Duration `yaml:"cache_ttl" default:"15m"`
}

type MongoConfig struct {
	URI                    string        `yaml:"uri" default:"mongodb://localhost:27017"`
	DBName                 string        `yaml:"db_name" default:"storefront"`
	MaxPoolSize            int           `yaml:"max_pool_size" default:"100"`
	MinPoolSize            int           `yaml:"min_pool_size" default:"10"`
	ConnectTimeout         time.Duration `yaml:"connect_timeout" default:"10s"`
	ServerSelectionTimeout time.Duration `yaml:"server_selection_timeout" default:"5s"`
}

type KafkaConfig struct {
	Brokers    []string `yaml:"brokers"`
	OrderTopic string   `yaml:"order_topic" default:"order-placed"`
	GroupID    string   `yaml:"group_id" default:"storefront-cart"`
}

type TelemetryConfig struct {
	Exporter    string `yaml:"exporter" default:"none"`
	Endpoint    string `yaml:"endpoint" default:"localhost:4317"`
	ServiceName string `yaml:"service_name" default:"storefront"`
}

var (
	catalogBackends   = []string{"cms", "sqlite"}
	orderBackends     = []string{"memory", "cms", "postgres"}
	sessionBackends   = []string{"memory", "redis", "mongo"}
	broadcastBackends = []string{"memory", "redis"}
	exporters         = []string{"none", "stdout", "otlp"}
)

// Load builds the configuration from struct defaults, then the optional YAML
// file named by CONFIG_FILE, then environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = getEnv("GRPC_PORT", cfg.GRPCPort)
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	cfg.CatalogBackend = getEnv("CATALOG_BACKEND", cfg.CatalogBackend)
	cfg.OrderBackend = getEnv("ORDER_BACKEND", cfg.OrderBackend)
	cfg.SessionBackend = getEnv("SESSION_BACKEND", cfg.SessionBackend)
	cfg.BroadcastBackend = getEnv("BROADCAST_BACKEND", cfg.BroadcastBackend)

	cfg.CMS.ProjectID = getEnv("CMS_PROJECT_ID", cfg.CMS.ProjectID)
	cfg.CMS.Dataset = getEnv("CMS_DATASET", cfg.CMS.Dataset)
	cfg.CMS.APIVersion = getEnv("CMS_API_VERSION", cfg.CMS.APIVersion)
	cfg.CMS.Token = getEnv("CMS_TOKEN", cfg.CMS.Token)
	cfg.CMS.BaseURL = getEnv("CMS_BASE_URL", cfg.CMS.BaseURL)

	cfg.SQLite.Path = getEnv("SQLITE_PATH", cfg.SQLite.Path)

	cfg.Postgres.Host = getEnv("DB_HOST", cfg.Postgres.Host)
	cfg.Postgres.Port = getEnvInt("DB_PORT", cfg.Postgres.Port)
	cfg.Postgres.User = getEnv("DB_USER", cfg.Postgres.User)
	cfg.Postgres.Password = getEnv("DB_PASSWORD", cfg.Postgres.Password)
	cfg.Postgres.DBName = getEnv("DB_NAME", cfg.Postgres.DBName)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.CacheTTL = getEnvDuration("REDIS_CACHE_TTL", cfg.Redis.CacheTTL)

	cfg.Mongo.URI = getEnv("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.DBName = getEnv("MONGO_DB_NAME", cfg.Mongo.DBName)
	cfg.Mongo.MaxPoolSize = getEnvInt("MONGO_MAX_POOL_SIZE", cfg.Mongo.MaxPoolSize)
	cfg.Mongo.MinPoolSize = getEnvInt("MONGO_MIN_POOL_SIZE", cfg.Mongo.MinPoolSize)
	cfg.Mongo.ConnectTimeout = getEnvDuration("MONGO_CONNECT_TIMEOUT", cfg.Mongo.ConnectTimeout)
	cfg.Mongo.ServerSelectionTimeout = getEnvDuration("MONGO_SERVER_SELECTION_TIMEOUT", cfg.Mongo.ServerSelectionTimeout)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}
	cfg.Kafka.OrderTopic = getEnv("ORDER_TOPIC", cfg.Kafka.OrderTopic)
	cfg.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", cfg.Kafka.GroupID)

	cfg.Telemetry.Exporter = getEnv("OTEL_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = getEnv("OTEL_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.ServiceName = getEnv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
}

func (c *Config) Validate() error {
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"catalog backend", c.CatalogBackend, catalogBackends},
		{"order backend", c.OrderBackend, orderBackends},
		{"session backend", c.SessionBackend, sessionBackends},
		{"broadcast backend", c.BroadcastBackend, broadcastBackends},
		{"telemetry exporter", c.Telemetry.Exporter, exporters},
	}
	for _, ch := range checks {
		if !contains(ch.allowed, ch.value) {
			return fmt.Errorf("invalid %s %q, expected one of %s", ch.name, ch.value, strings.Join(ch.allowed, ", "))
		}
	}

	usesCMS := c.CatalogBackend == "cms" || c.OrderBackend == "cms"
	if usesCMS && c.CMS.ProjectID == "" && c.CMS.BaseURL == "" {
		return fmt.Errorf("cms backend requires CMS_PROJECT_ID or CMS_BASE_URL")
	}
	if c.SessionBackend == "mongo" && (c.Mongo.MinPoolSize < 0 || c.Mongo.MaxPoolSize < c.Mongo.MinPoolSize) {
		return fmt.Errorf("invalid mongo pool size %d..%d", c.Mongo.MinPoolSize, c.Mongo.MaxPoolSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
