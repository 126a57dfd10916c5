package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "PMS"
	configDirName  = ".pms"
	configFileName = "config"
	configFileType = "toml"

	KeyIdleTimeout     = "idle.timeout"
	KeySweepPeriod     = "idle.sweep_period"
	KeyStoreKind       = "store.kind"
	KeyStorePath       = "store.path"
	KeyStoreMaxVersion = "store.max_versions"
	KeyServerAddr      = "server.addr"
	KeyServerMode      = "server.mode"
	KeyRateRPS         = "ratelimit.rps"
	KeyRateBurst       = "ratelimit.burst"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
)

const (
	StoreKindTOML   = "toml"
	StoreKindMemory = "memory"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Idle      IdleConfig
	Store     StoreConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type IdleConfig struct {
	// Timeout is how long a page map keeps its last page without a new one.
	Timeout     time.Duration
	SweepPeriod time.Duration
}

type StoreConfig struct {
	Kind        string // "toml" or "memory"
	Path        string
	MaxVersions int
}

type ServerConfig struct {
	Addr string
	Mode string // gin mode: "debug", "release", "test"
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyIdleTimeout, 10*time.Minute)
	v.SetDefault(KeySweepPeriod, time.Minute)
	v.SetDefault(KeyStoreKind, StoreKindTOML)
	v.SetDefault(KeyStorePath, "")
	v.SetDefault(KeyStoreMaxVersion, 16)
	v.SetDefault(KeyServerAddr, "127.0.0.1:8080")
	v.SetDefault(KeyServerMode, "release")
	v.SetDefault(KeyRateRPS, 20.0)
	v.SetDefault(KeyRateBurst, 40)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
}

// Load reads $HOME/.pms/config.toml when present and PMS_* environment
// variables on top of the defaults.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.ConfigFileUsed() == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, configDirName))
		}
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Idle: IdleConfig{
			Timeout:     v.GetDuration(KeyIdleTimeout),
			SweepPeriod: v.GetDuration(KeySweepPeriod),
		},
		Store: StoreConfig{
			Kind:        strings.ToLower(strings.TrimSpace(v.GetString(KeyStoreKind))),
			Path:        v.GetString(KeyStorePath),
			MaxVersions: v.GetInt(KeyStoreMaxVersion),
		},
		Server: ServerConfig{
			Addr: strings.TrimSpace(v.GetString(KeyServerAddr)),
			Mode: v.GetString(KeyServerMode),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64(KeyRateRPS),
			Burst:             v.GetInt(KeyRateBurst),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString(KeyLogLevel)),
			Format: strings.ToLower(v.GetString(KeyLogFormat)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Idle.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyIdleTimeout, c.Idle.Timeout))
	}
	if c.Idle.SweepPeriod <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeySweepPeriod, c.Idle.SweepPeriod))
	}
	switch c.Store.Kind {
	case StoreKindTOML, StoreKindMemory:
	default:
		errs = append(errs, fmt.Errorf("%s must be %q or %q, got %q", KeyStoreKind, StoreKindTOML, StoreKindMemory, c.Store.Kind))
	}
	if c.Store.MaxVersions <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", KeyStoreMaxVersion, c.Store.MaxVersions))
	}
	if c.Server.Addr == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", KeyServerAddr))
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, fmt.Errorf("%s and %s must be positive", KeyRateRPS, KeyRateBurst))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
