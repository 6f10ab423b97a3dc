package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required,oneof=development staging production test"`
	DataDir     string `yaml:"data_dir" default:"data" validate:"required"`

	Fund struct {
		Ticker         string        `yaml:"ticker" default:"318A.T" validate:"required"`
		Name           string        `yaml:"name" default:"VIX short-term futures ETF"`
		MaxAlerts      int           `yaml:"max_alerts" default:"5" validate:"gte=1"`
		CheckInterval  time.Duration `yaml:"check_interval" default:"60s" validate:"gte=1s"`
		SharesFallback float64       `yaml:"shares_fallback" validate:"gte=0"`
		Monitor        bool          `yaml:"monitor"`
	} `yaml:"fund"`

	Logger struct {
		Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output     string `yaml:"output" default:"stdout"`
		MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
	} `yaml:"logger"`

	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lt=65536"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		AllowOrigins    []string      `yaml:"allow_origins"`
	} `yaml:"server"`

	Yahoo struct {
		BaseURL   string        `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"required,url"`
		Timeout   time.Duration `yaml:"timeout" default:"15s"`
		RPS       float64       `yaml:"rps" default:"2" validate:"gt=0"`
		Burst     int           `yaml:"burst" default:"2" validate:"gte=1"`
		Lookback  time.Duration `yaml:"lookback" default:"120h"`
		CacheTTL  time.Duration `yaml:"cache_ttl" default:"30s"`
		UserAgent string        `yaml:"user_agent" default:"Mozilla/5.0 (compatible; vixnav/1.0)"`
	} `yaml:"yahoo"`

	Finnhub struct {
		Enabled        bool          `yaml:"enabled"`
		APIKey         string        `yaml:"api_key"`
		WebSocketURL   string        `yaml:"websocket_url" default:"wss://ws.finnhub.io"`
		FXSymbol       string        `yaml:"fx_symbol" default:"OANDA:USD_JPY"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
	} `yaml:"finnhub"`

	Store struct {
		LockTTL time.Duration `yaml:"lock_ttl" default:"30s" validate:"gte=1s"`
	} `yaml:"store"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"vixnav"`
	} `yaml:"redis"`

	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"vixnav.alerts"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		} `yaml:"producer"`
	} `yaml:"kafka"`

	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"vixnav"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`

	Telegram struct {
		Enabled bool   `yaml:"enabled"`
		Token   string `yaml:"token"`
		ChatID  int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Archive struct {
		Enabled         bool   `yaml:"enabled"`
		Bucket          string `yaml:"bucket"`
		Region          string `yaml:"region" default:"ap-northeast-1"`
		Endpoint        string `yaml:"endpoint"`
		Prefix          string `yaml:"prefix" default:"vixnav"`
		AccessKeyID     string `yaml:"access_key_id"`
		SecretAccessKey string `yaml:"secret_access_key"`
		PathStyle       bool   `yaml:"path_style"`
	} `yaml:"archive"`

	API struct {
		RateLimit struct {
			Capacity     int     `yaml:"capacity" default:"60" validate:"gte=1"`
			RefillPerSec float64 `yaml:"refill_per_sec" default:"1" validate:"gt=0"`
		} `yaml:"rate_limit"`
	} `yaml:"api"`
}

// envOverrides lists the settings that can be supplied through VIXNAV_* variables.
type envOverrides struct {
	Environment    string   `envconfig:"ENVIRONMENT"`
	DataDir        string   `envconfig:"DATA_DIR"`
	LogLevel       string   `envconfig:"LOG_LEVEL"`
	FinnhubAPIKey  string   `envconfig:"FINNHUB_API_KEY"`
	FinnhubEnabled *bool    `envconfig:"FINNHUB_ENABLED"`
	KafkaBrokers   []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic     string   `envconfig:"KAFKA_TOPIC"`
	RedisPassword  string   `envconfig:"REDIS_PASSWORD"`
	ClickHousePass string   `envconfig:"CLICKHOUSE_PASSWORD"`
	TelegramToken  string   `envconfig:"TELEGRAM_TOKEN"`
	TelegramChatID int64    `envconfig:"TELEGRAM_CHAT_ID"`
	S3AccessKey    string   `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey    string   `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket       string   `envconfig:"S3_BUCKET"`
}

// Default returns a config with every default applied.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with VIXNAV_* environment variables.
// A .env file in the working directory is read first when present.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	var env envOverrides
	if err := envconfig.Process("vixnav", &env); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	c.apply(&env)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

func (c *Config) apply(env *envOverrides) {
	if env.Environment != "" {
		c.Environment = env.Environment
	}
	if env.DataDir != "" {
		c.DataDir = env.DataDir
	}
	if env.LogLevel != "" {
		c.Logger.Level = env.LogLevel
	}
	if env.FinnhubAPIKey != "" {
		c.Finnhub.APIKey = env.FinnhubAPIKey
	}
	if env.FinnhubEnabled != nil {
		c.Finnhub.Enabled = *env.FinnhubEnabled
	}
	if len(env.KafkaBrokers) > 0 {
		c.Kafka.Brokers = env.KafkaBrokers
	}
	if env.KafkaTopic != "" {
		c.Kafka.Topic = env.KafkaTopic
	}
	if env.RedisPassword != "" {
		c.Redis.Password = env.RedisPassword
	}
	if env.ClickHousePass != "" {
		c.ClickHouse.Password = env.ClickHousePass
	}
	if env.TelegramToken != "" {
		c.Telegram.Token = env.TelegramToken
	}
	if env.TelegramChatID != 0 {
		c.Telegram.ChatID = env.TelegramChatID
	}
	if env.S3AccessKey != "" {
		c.Archive.AccessKeyID = env.S3AccessKey
	}
	if env.S3SecretKey != "" {
		c.Archive.SecretAccessKey = env.S3SecretKey
	}
	if env.S3Bucket != "" {
		c.Archive.Bucket = env.S3Bucket
	}
}

// Validate checks struct tags and the rules that span sections.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	var problems []string
	if c.Finnhub.Enabled && c.Finnhub.APIKey == "" {
		problems = append(problems, "finnhub.api_key is required when finnhub is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		problems = append(problems, "kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Telegram.Enabled && (c.Telegram.Token == "" || c.Telegram.ChatID == 0) {
		problems = append(problems, "telegram.token and telegram.chat_id are required when telegram is enabled")
	}
	if c.Archive.Enabled && c.Archive.Bucket == "" {
		problems = append(problems, "archive.bucket is required when archive is enabled")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
