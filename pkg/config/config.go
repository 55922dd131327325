package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/ngoyal88/quip/pkg/humor"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "configs/quip.yaml"

// MinTimeoutMS is the smallest accepted remote timeout.
const MinTimeoutMS = 1000

// Config holds all the configuration for quip.
// The mapstructure tags tell Viper which YAML field maps to which Go struct field.
type Config struct {
	Humor   HumorConfig   `mapstructure:"humor"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Journal JournalConfig `mapstructure:"journal"`
	Status  StatusConfig  `mapstructure:"status"`
	Log     LogConfig     `mapstructure:"log"`
}

type HumorConfig struct {
	Level     string `mapstructure:"level"`
	Frequency int    `mapstructure:"frequency"`
	Enabled   bool   `mapstructure:"enabled"`
}

type CacheConfig struct {
	Size   int           `mapstructure:"size"`
	MaxAge time.Duration `mapstructure:"max_age"`
}

type RemoteConfig struct {
	Provider        string        `mapstructure:"provider"`
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	BaseURL         string        `mapstructure:"base_url"`
	TimeoutMS       int           `mapstructure:"timeout_ms"`
	FallbackToLocal bool          `mapstructure:"fallback_to_local"`
	PreferLocal     bool          `mapstructure:"prefer_local"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RateWindow      time.Duration `mapstructure:"rate_window"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type JournalConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Backend   string        `mapstructure:"backend"`
	Capacity  int           `mapstructure:"capacity"`
	Retention time.Duration `mapstructure:"retention"`
}

type StatusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	AdminKey string `mapstructure:"admin_key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HumorLevel parses Humor.Level, defaulting to medium.
func (c Config) HumorLevel() humor.Level {
	l, err := humor.ParseLevel(c.Humor.Level)
	if err != nil {
		return humor.LevelMedium
	}
	return l
}

// Timeout is the per-attempt remote timeout.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := humor.ParseLevel(c.Humor.Level); err != nil {
		errs = append(errs, fmt.Errorf("humor.level: %w", err))
	}
	if c.Humor.Frequency < 0 || c.Humor.Frequency > 100 {
		errs = append(errs, fmt.Errorf("humor.frequency: %d is outside 0-100", c.Humor.Frequency))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("cache.size: %d is negative", c.Cache.Size))
	}
	if c.Cache.MaxAge < 0 {
		errs = append(errs, fmt.Errorf("cache.max_age: %s is negative", c.Cache.MaxAge))
	}
	if c.Remote.TimeoutMS < MinTimeoutMS {
		errs = append(errs, fmt.Errorf("remote.timeout_ms: %d is below %d", c.Remote.TimeoutMS, MinTimeoutMS))
	}
	switch strings.ToLower(c.Remote.Provider) {
	case "", "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("remote.provider: unknown provider %q", c.Remote.Provider))
	}
	if c.Remote.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("remote.rate_limit: %d is negative", c.Remote.RateLimit))
	}
	switch c.Journal.Backend {
	case "", "memory":
	case "redis":
		if c.Journal.Enabled && !c.Redis.Enabled {
			errs = append(errs, errors.New("journal.backend: redis requires redis.enabled"))
		}
	default:
		errs = append(errs, fmt.Errorf("journal.backend: unknown backend %q", c.Journal.Backend))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// SetDefaults registers a default for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("humor.level", "medium")
	v.SetDefault("humor.frequency", 30)
	v.SetDefault("humor.enabled", true)

	v.SetDefault("cache.size", 100)
	v.SetDefault("cache.max_age", time.Hour)

	v.SetDefault("remote.provider", "openai")
	v.SetDefault("remote.api_key", "")
	v.SetDefault("remote.model", "")
	v.SetDefault("remote.base_url", "")
	v.SetDefault("remote.timeout_ms", 5000)
	v.SetDefault("remote.fallback_to_local", true)
	v.SetDefault("remote.prefer_local", false)
	v.SetDefault("remote.rate_limit", 60)
	v.SetDefault("remote.rate_window", time.Minute)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.enabled", false)

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.backend", "memory")
	v.SetDefault("journal.capacity", 500)
	v.SetDefault("journal.retention", 24*time.Hour)

	v.SetDefault("status.enabled", false)
	v.SetDefault("status.addr", ":9090")
	v.SetDefault("status.admin_key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Default returns the configuration produced by defaults alone.
func Default() Config {
	v := newViper()
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Store wraps configuration with thread-safe access and hot-reload updates.
type Store struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewStore returns a store holding cfg.
func NewStore(cfg Config) *Store {
	return &Store{cfg: &cfg}
}

func (s *Store) Get() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg == nil {
		return nil
	}
	cpy := *s.cfg
	return &cpy
}

func (s *Store) set(cfg *Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("QUIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path once. A missing file leaves defaults and environment in
// effect.
func Load(path string) (Config, error) {
	v, err := read(path)
	if err != nil {
		return Config{}, err
	}
	return decode(v)
}

// LoadAndWatch loads the config and watches path for changes. onChange
// receives each valid reload; invalid reloads are logged and ignored.
func LoadAndWatch(path string, onChange func(Config)) (*Store, error) {
	v, err := read(path)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	store := NewStore(cfg)

	if v.ConfigFileUsed() == "" {
		return store, nil
	}

	logger := log.With().Str("component", "config").Logger()
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			logger.Error().Err(err).Str("file", e.Name).Msg("reload rejected")
			return
		}
		store.set(&cfg)
		logger.Info().Str("file", e.Name).Msg("reloaded")
		if onChange != nil {
			onChange(cfg)
		}
	})
	v.WatchConfig()

	return store, nil
}

func read(path string) (*viper.Viper, error) {
	v := newViper()
	if path == "" {
		path = DefaultPath
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newViper(), nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return newViper(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return v, nil
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Remote.APIKey == "" {
		cfg.Remote.APIKey = providerKey(cfg.Remote.Provider)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// providerKey falls back to the provider's conventional environment variable.
func providerKey(provider string) string {
	switch strings.ToLower(provider) {
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "json" {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return logger.Level(level).With().Timestamp().Logger()
}
