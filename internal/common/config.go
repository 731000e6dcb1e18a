package common

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	OCR       OCRConfig       `mapstructure:"ocr"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Publish   PublishConfig   `mapstructure:"publish"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr    string   `mapstructure:"http_addr"`
	GRPCAddr    string   `mapstructure:"grpc_addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	TesseractBin string        `mapstructure:"tesseract_bin"`
	Lang         string        `mapstructure:"lang"`
	TessdataDir  string        `mapstructure:"tessdata_dir"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	RPM     int           `mapstructure:"rpm"`
}

// ExtractConfig tunes model retries and the bounds used to discard OCR noise.
type ExtractConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	MinPrice    int64         `mapstructure:"min_price"`
	MaxPrice    int64         `mapstructure:"max_price"`
	MinItemLen  int           `mapstructure:"min_item_len"`
	MaxItemLen  int           `mapstructure:"max_item_len"`
}

// StorageConfig holds the on-disk locations used by the service.
type StorageConfig struct {
	UploadDir string `mapstructure:"upload_dir"`
	DataDir   string `mapstructure:"data_dir"`
	ViewerDir string `mapstructure:"viewer_dir"`
	InboxDir  string `mapstructure:"inbox_dir"`
}

type PublishConfig struct {
	InlineImages bool `mapstructure:"inline_images"`
}

// CacheConfig controls the extraction result cache. A zero TTL disables it.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	AnalyzePerMin int `mapstructure:"analyze_per_min"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"database.dsn":                "DB_URL",
	"database.max_conns":          "DB_MAX_CONNS",
	"database.min_conns":          "DB_MIN_CONNS",
	"database.max_conn_lifetime":  "DB_MAX_CONN_LIFETIME",
	"database.max_conn_idle_time": "DB_MAX_CONN_IDLE_TIME",
	"database.ping_timeout":       "DB_PING_TIMEOUT",
	"server.http_addr":            "HTTP_ADDR",
	"server.grpc_addr":            "GRPC_ADDR",
	"server.cors_origins":         "CORS_ORIGINS",
	"ocr.tesseract_bin":           "TESSERACT_BIN",
	"ocr.lang":                    "TESSERACT_LANG",
	"ocr.tessdata_dir":            "TESSDATA_PREFIX",
	"ocr.timeout":                 "OCR_TIMEOUT",
	"llm.model":                   "OPENAI_MODEL",
	"llm.api_key":                 "OPENAI_API_KEY",
	"llm.base_url":                "OPENAI_BASE_URL",
	"llm.timeout":                 "OPENAI_TIMEOUT",
	"llm.rpm":                     "OPENAI_RPM",
	"extract.max_attempts":        "EXTRACT_MAX_ATTEMPTS",
	"extract.retry_delay":         "EXTRACT_RETRY_DELAY",
	"extract.min_price":           "MENU_MIN_PRICE",
	"extract.max_price":           "MENU_MAX_PRICE",
	"extract.min_item_len":        "MENU_MIN_ITEM_LEN",
	"extract.max_item_len":        "MENU_MAX_ITEM_LEN",
	"storage.upload_dir":          "UPLOAD_DIR",
	"storage.data_dir":            "DATA_DIR",
	"storage.viewer_dir":          "VIEWER_DIR",
	"storage.inbox_dir":           "INBOX_DIR",
	"publish.inline_images":       "PUBLISH_INLINE_IMAGES",
	"cache.ttl":                   "CACHE_TTL",
	"ratelimit.analyze_per_min":   "ANALYZE_RATE_PER_MIN",
	"log.level":                   "LOG_LEVEL",
	"log.format":                  "LOG_FORMAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.dsn", "file:centumbob.db?_pragma=foreign_keys(1)")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "30m")
	v.SetDefault("database.max_conn_idle_time", "5m")
	v.SetDefault("database.ping_timeout", "3s")

	v.SetDefault("server.http_addr", ":3000")
	v.SetDefault("server.grpc_addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("ocr.tesseract_bin", "tesseract")
	v.SetDefault("ocr.lang", "kor+eng")
	v.SetDefault("ocr.timeout", "60s")

	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.timeout", "90s")
	v.SetDefault("llm.rpm", 30)

	v.SetDefault("extract.max_attempts", 2)
	v.SetDefault("extract.retry_delay", "1s")
	v.SetDefault("extract.min_price", 100)
	v.SetDefault("extract.max_price", 100_000_000)
	v.SetDefault("extract.min_item_len", 2)
	v.SetDefault("extract.max_item_len", 200)

	v.SetDefault("storage.upload_dir", "./uploads")
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.viewer_dir", "./viewer")
	v.SetDefault("storage.inbox_dir", "")

	v.SetDefault("publish.inline_images", true)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("ratelimit.analyze_per_min", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig loads configuration from defaults, an optional YAML file and environment
// variables, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path := os.Getenv("CENTUMBOB_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "read config file "+path, err)
		}
	} else {
		v.SetConfigName("centumbob")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, NewAppError("CONFIG_ERROR", "read config file", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, NewAppError("CONFIG_ERROR", "decode config", err)
	}
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitList flattens comma separated entries that arrive as a single env value.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Storage.UploadDir == "" || c.Storage.DataDir == "" || c.Storage.ViewerDir == "" {
		return NewAppError("CONFIG_ERROR", "UPLOAD_DIR, DATA_DIR and VIEWER_DIR are required", ErrInvalidInput)
	}
	if c.Cache.TTL < 0 {
		return NewAppError("CONFIG_ERROR", "CACHE_TTL must not be negative", ErrInvalidInput)
	}
	if e := c.Extract; e.MinPrice < 1 || e.MinItemLen < 1 {
		return NewAppError("CONFIG_ERROR", "MENU_MIN_PRICE and MENU_MIN_ITEM_LEN must be at least 1", ErrInvalidInput)
	}
	if e := c.Extract; e.MaxPrice <= e.MinPrice {
		return NewAppError("CONFIG_ERROR", "MENU_MAX_PRICE must be greater than MENU_MIN_PRICE", ErrInvalidInput)
	}
	if e := c.Extract; e.MaxItemLen < e.MinItemLen {
		return NewAppError("CONFIG_ERROR", "MENU_MAX_ITEM_LEN must not be less than MENU_MIN_ITEM_LEN", ErrInvalidInput)
	}
	if c.RateLimit.AnalyzePerMin < 0 {
		return NewAppError("CONFIG_ERROR", "ANALYZE_RATE_PER_MIN must not be negative", ErrInvalidInput)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("LOG_FORMAT must be json or text, got %q", c.Log.Format), ErrInvalidInput)
	}
	return nil
}
