package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"

	"github.com/team-popo-world/back-repo/internal/utils"
)

// History store backends.
const (
	HistoryStoreMongo = "mongo"
	HistoryStoreRedis = "redis"
)

// Config holds the configuration shared by the server, the relay worker and the migrate CLI.
type Config struct {
	// Server settings
	Port               string        `envconfig:"SERVER_PORT" default:"8080"`
	BasePath           string        `envconfig:"BASE_PATH" default:"/api"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding        string        `envconfig:"LOG_ENCODING" default:"json"`
	Env                string        `envconfig:"ENV" default:"production"`
	CORSAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS"`
	ReadTimeout        time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout       time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout        time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	SecretsDir         string        `envconfig:"SECRETS_DIR" default:"/run/secrets"`

	// Game settings
	Timezone       string `envconfig:"GAME_TIMEZONE" default:"Asia/Seoul"`
	DefaultChildID string `envconfig:"DEFAULT_CHILD_ID" default:"c1111111-2222-3333-4444-555555555555"`

	// PostgreSQL settings
	DBHost        string        `envconfig:"DB_HOST"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER"`
	DBName        string        `envconfig:"DB_NAME"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_TIME" default:"5m"`
	// Secret, read from SecretsDir
	DBPassword string `ignored:"true"`

	// RabbitMQ settings
	RabbitMQURL        string `envconfig:"RABBITMQ_URL"`
	InvestHistoryQueue string `envconfig:"INVEST_HISTORY_QUEUE" default:"invest-history"`
	EmotionLogQueue    string `envconfig:"EMOTION_LOG_QUEUE" default:"log-emotion"`

	// History store settings
	HistoryStore      string `envconfig:"HISTORY_STORE" default:"mongo"`
	MongoURI          string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase     string `envconfig:"MONGO_DATABASE" default:"popoworld"`
	HistoryCollection string `envconfig:"HISTORY_COLLECTION" default:"invest_history"`
	RedisAddr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB           int    `envconfig:"REDIS_DB" default:"0"`

	// Elasticsearch settings
	ElasticsearchAddresses []string `envconfig:"ELASTICSEARCH_ADDRESSES" default:"http://localhost:9200"`
	EmotionLogIndex        string   `envconfig:"EMOTION_LOG_INDEX" default:"log_emotion_index"`
}

// GetDSN returns the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Location returns the fixed game timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid GAME_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// PlaceholderChildID is used until a real identity is propagated to the API.
func (c *Config) PlaceholderChildID() uuid.UUID {
	return uuid.MustParse(c.DefaultChildID)
}

// Requirement names the backing services a binary talks to.
type Requirement int

const (
	NeedDatabase Requirement = 1 << iota
	NeedBroker
)

// LoadConfig loads the configuration of the API server, which needs every backing service.
func LoadConfig() (*Config, error) {
	return Load(NeedDatabase | NeedBroker)
}

// Load loads the configuration from environment variables and secret files. Settings of services
// not named in needs may be left unset.
func Load(needs Requirement) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if needs&NeedDatabase != 0 {
		if err := cfg.requireDatabase(); err != nil {
			return nil, err
		}
		password, err := utils.ReadSecret(cfg.SecretsDir, "db_password")
		if err != nil {
			return nil, err
		}
		cfg.DBPassword = password
	}
	if needs&NeedBroker != 0 && cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("required key RABBITMQ_URL missing value")
	}

	log.Printf("Configuration loaded (secrets from files):")
	log.Printf("  Port: %s, BasePath: %s", cfg.Port, cfg.BasePath)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	if needs&NeedDatabase != 0 {
		log.Printf("  DB DSN: postgres://%s:***@%s:%s/%s?sslmode=%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	}
	log.Printf("  RabbitMQ queues: history=%s emotion=%s", cfg.InvestHistoryQueue, cfg.EmotionLogQueue)
	log.Printf("  History store: %s", cfg.HistoryStore)
	log.Printf("  Elasticsearch: %s (index %s)", strings.Join(cfg.ElasticsearchAddresses, ","), cfg.EmotionLogIndex)
	log.Printf("  Timezone: %s", cfg.Timezone)

	return &cfg, nil
}

func (c *Config) requireDatabase() error {
	missing := make([]string, 0, 3)
	if c.DBHost == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.DBUser == "" {
		missing = append(missing, "DB_USER")
	}
	if c.DBName == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required keys missing value: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := uuid.Parse(c.DefaultChildID); err != nil {
		return fmt.Errorf("invalid DEFAULT_CHILD_ID %q: %w", c.DefaultChildID, err)
	}
	switch c.HistoryStore {
	case HistoryStoreMongo, HistoryStoreRedis:
	default:
		return fmt.Errorf("unsupported HISTORY_STORE %q (expected %q or %q)", c.HistoryStore, HistoryStoreMongo, HistoryStoreRedis)
	}
	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("BASE_PATH must start with '/', got %q", c.BasePath)
	}
	return nil
}
