package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ProviderConfig holds one adapter's credentials. BaseURL is only overridden
// in tests and self-hosted proxies.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Enabled bool   `mapstructure:"enabled"`
}

// ChainConfig tunes the orchestrator's cache and circuit breakers.
type ChainConfig struct {
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	BreakerThreshold int           `mapstructure:"breaker_threshold"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
	MaxBackoff       time.Duration `mapstructure:"max_backoff"`
}

// CompensationConfig keeps the arbitration exchange rate out of code.
type CompensationConfig struct {
	EURToNIS float64 `mapstructure:"eur_to_nis"`
}

// Config is the full service configuration.
type Config struct {
	DBPath     string `mapstructure:"db_path"`
	ListenAddr string `mapstructure:"listen_addr"`

	AeroAPI       ProviderConfig `mapstructure:"aeroapi"`
	AeroDataBox   ProviderConfig `mapstructure:"aerodatabox"`
	AviationStack ProviderConfig `mapstructure:"aviationstack"`

	Chain        ChainConfig        `mapstructure:"chain"`
	Compensation CompensationConfig `mapstructure:"compensation"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		DBPath:     "flightclaims.db",
		ListenAddr: ":8080",
		AeroAPI:       ProviderConfig{Enabled: true},
		AeroDataBox:   ProviderConfig{Enabled: true},
		AviationStack: ProviderConfig{Enabled: true},
		Chain: ChainConfig{
			CacheTTL:         30 * time.Minute,
			BreakerThreshold: 3,
			BreakerCooldown:  5 * time.Minute,
			MaxBackoff:       10 * time.Second,
		},
		Compensation: CompensationConfig{EURToNIS: 3.8},
	}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("listen_addr", cfg.ListenAddr)
	providers := map[string]ProviderConfig{
		"aeroapi":       cfg.AeroAPI,
		"aerodatabox":   cfg.AeroDataBox,
		"aviationstack": cfg.AviationStack,
	}
	for name, pc := range providers {
		v.SetDefault(name+".api_key", pc.APIKey)
		v.SetDefault(name+".base_url", pc.BaseURL)
		v.SetDefault(name+".enabled", pc.Enabled)
	}
	v.SetDefault("chain.cache_ttl", cfg.Chain.CacheTTL)
	v.SetDefault("chain.breaker_threshold", cfg.Chain.BreakerThreshold)
	v.SetDefault("chain.breaker_cooldown", cfg.Chain.BreakerCooldown)
	v.SetDefault("chain.max_backoff", cfg.Chain.MaxBackoff)
	v.SetDefault("compensation.eur_to_nis", cfg.Compensation.EURToNIS)
}

// Load reads configuration from the given file (optional), a
// flightclaims.yaml in the working directory, and FLIGHTCLAIMS_* environment
// variables, in increasing precedence of env over file over defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("FLIGHTCLAIMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only consults the environment for keys viper knows about,
	// so every key must be registered as a default for FLIGHTCLAIMS_* to work.
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	} else {
		v.SetConfigName("flightclaims")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config: %w", err)
			}
			// No config file is fine; env vars and defaults apply.
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	// Plain env vars override for the credentials operators set most often.
	if k := os.Getenv("AEROAPI_KEY"); k != "" {
		cfg.AeroAPI.APIKey = k
	}
	if k := os.Getenv("AERODATABOX_KEY"); k != "" {
		cfg.AeroDataBox.APIKey = k
	}
	if k := os.Getenv("AVIATIONSTACK_KEY"); k != "" {
		cfg.AviationStack.APIKey = k
	}

	return cfg, nil
}
