package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Default() values
// before the overlays (file, env, flags) are applied.
type Config struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`

	// Inference backend (Hugging Face Inference API).
	HubBaseURL string `json:"hub_base_url" yaml:"hub_base_url" toml:"hub_base_url"`
	HubToken   string `json:"hub_token" yaml:"hub_token" toml:"hub_token"`

	// Detector model identifiers.
	ToxicityModel string `json:"toxicity_model" yaml:"toxicity_model" toml:"toxicity_model"`
	SpamModel     string `json:"spam_model" yaml:"spam_model" toml:"spam_model"`

	// Decision thresholds in [0,1].
	ToxicThreshold float64 `json:"toxic_threshold" yaml:"toxic_threshold" toml:"toxic_threshold"`
	SpamThreshold  float64 `json:"spam_threshold" yaml:"spam_threshold" toml:"spam_threshold"`

	// Processing limits.
	MaxBatchSize   int `json:"max_batch_size" yaml:"max_batch_size" toml:"max_batch_size"`
	MaxTextChars   int `json:"max_text_chars" yaml:"max_text_chars" toml:"max_text_chars"`
	MaxSequenceLen int `json:"max_sequence_len" yaml:"max_sequence_len" toml:"max_sequence_len"`
	MaxBodyBytes   int `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`

	// Admission control.
	MaxConcurrency int           `json:"max_concurrency" yaml:"max_concurrency" toml:"max_concurrency"`
	MaxQueueDepth  int           `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxQueueWait   time.Duration `json:"max_queue_wait" yaml:"max_queue_wait" toml:"max_queue_wait"`

	// Backend timeouts.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout" toml:"connect_timeout"`
	WarmupTimeout  time.Duration `json:"warmup_timeout" yaml:"warmup_timeout" toml:"warmup_timeout"`

	// Result cache.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl" toml:"cache_ttl"`

	// Observability / environment.
	LogLevel    string `json:"log_level" yaml:"log_level" toml:"log_level"`
	Environment string `json:"environment" yaml:"environment" toml:"environment"`
	Debug       bool   `json:"debug" yaml:"debug" toml:"debug"`

	// CORS.
	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:           ":8000",
		HubBaseURL:     "https://api-inference.huggingface.co",
		ToxicityModel:  "bgonzalezbustamante/bert-spanish-toxicity",
		SpamModel:      "asfilcnx3/spam-detection-es",
		ToxicThreshold: 0.7,
		SpamThreshold:  0.7,
		MaxBatchSize:   50,
		MaxTextChars:   5000,
		MaxSequenceLen: 512,
		MaxBodyBytes:   1 << 20,
		MaxConcurrency: 4,
		MaxQueueDepth:  32,
		MaxQueueWait:   30 * time.Second,
		RequestTimeout: 30 * time.Second,
		ConnectTimeout: 5 * time.Second,
		WarmupTimeout:  2 * time.Minute,
		CacheTTL:       5 * time.Minute,
		LogLevel:       "info",
		Environment:    "production",
		CORSEnabled:    true,
		CORSOrigins:    []string{"*"},
	}
}

// Load reads a configuration file based on its extension into cfg.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyEnv overlays MODERD_* environment variables onto cfg.
// Unset or malformed values leave the existing value untouched.
func ApplyEnv(cfg Config) Config {
	setStr := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setFloat := func(dst *float64, key string) {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}
	setDur := func(dst *time.Duration, key string) {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}
	setBool := func(dst *bool, key string) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setStr(&cfg.Addr, "MODERD_ADDR")
	setStr(&cfg.HubBaseURL, "MODERD_HUB_URL")
	setStr(&cfg.HubToken, "MODERD_HUB_TOKEN")
	setStr(&cfg.ToxicityModel, "MODERD_TOXICITY_MODEL")
	setStr(&cfg.SpamModel, "MODERD_SPAM_MODEL")
	setFloat(&cfg.ToxicThreshold, "MODERD_TOXIC_THRESHOLD")
	setFloat(&cfg.SpamThreshold, "MODERD_SPAM_THRESHOLD")
	setInt(&cfg.MaxBatchSize, "MODERD_MAX_BATCH_SIZE")
	setInt(&cfg.MaxTextChars, "MODERD_MAX_TEXT_CHARS")
	setInt(&cfg.MaxSequenceLen, "MODERD_MAX_SEQUENCE_LEN")
	setInt(&cfg.MaxBodyBytes, "MODERD_MAX_BODY_BYTES")
	setInt(&cfg.MaxConcurrency, "MODERD_MAX_CONCURRENCY")
	setInt(&cfg.MaxQueueDepth, "MODERD_MAX_QUEUE_DEPTH")
	setDur(&cfg.MaxQueueWait, "MODERD_MAX_QUEUE_WAIT")
	setDur(&cfg.RequestTimeout, "MODERD_REQUEST_TIMEOUT")
	setDur(&cfg.ConnectTimeout, "MODERD_CONNECT_TIMEOUT")
	setDur(&cfg.WarmupTimeout, "MODERD_WARMUP_TIMEOUT")
	setDur(&cfg.CacheTTL, "MODERD_CACHE_TTL")
	setStr(&cfg.LogLevel, "MODERD_LOG_LEVEL")
	setStr(&cfg.Environment, "MODERD_ENVIRONMENT")
	setBool(&cfg.Debug, "MODERD_DEBUG")
	setBool(&cfg.CORSEnabled, "MODERD_CORS_ENABLED")
	if v := os.Getenv("MODERD_CORS_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		cfg.CORSOrigins = origins
	}
	return cfg
}

// Validate rejects configurations the service cannot run with.
func Validate(cfg Config) error {
	if cfg.ToxicThreshold < 0 || cfg.ToxicThreshold > 1 {
		return fmt.Errorf("toxic_threshold must be in [0,1], got %v", cfg.ToxicThreshold)
	}
	if cfg.SpamThreshold < 0 || cfg.SpamThreshold > 1 {
		return fmt.Errorf("spam_threshold must be in [0,1], got %v", cfg.SpamThreshold)
	}
	if cfg.MaxBatchSize <= 0 {
		return fmt.Errorf("max_batch_size must be positive, got %d", cfg.MaxBatchSize)
	}
	if cfg.MaxTextChars <= 0 {
		return fmt.Errorf("max_text_chars must be positive, got %d", cfg.MaxTextChars)
	}
	if cfg.MaxConcurrency <= 0 {
		return fmt.Errorf("max_concurrency must be positive, got %d", cfg.MaxConcurrency)
	}
	if cfg.HubBaseURL == "" {
		return fmt.Errorf("hub_base_url is required")
	}
	if cfg.ToxicityModel == "" || cfg.SpamModel == "" {
		return fmt.Errorf("toxicity_model and spam_model are required")
	}
	return nil
}
