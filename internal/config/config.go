// Package config loads run configuration from defaults, an optional YAML
// file, a .env file and FEVER_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/engine"
)

// EnvPrefix prefixes every environment override, e.g. FEVER_SIMULATION_SEED.
const EnvPrefix = "FEVER"

// Config is the main configuration struct combining all sub-configs.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Database   DatabaseConfig   `mapstructure:"database"`
	API        APIConfig        `mapstructure:"api"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SimulationConfig shapes the world and the game loop.
type SimulationConfig struct {
	Seed                  int64         `mapstructure:"seed"`
	WorldWidth            int           `mapstructure:"world_width" validate:"min=16,max=2048"`
	WorldHeight           int           `mapstructure:"world_height" validate:"min=16,max=2048"`
	Regions               int           `mapstructure:"regions" validate:"min=1,max=64"`
	RegionRadius          int           `mapstructure:"region_radius" validate:"min=3,max=32"`
	MinutesPerStep        int           `mapstructure:"minutes_per_step" validate:"min=1,max=1440"`
	StepInterval          time.Duration `mapstructure:"step_interval" validate:"min=0"`
	AIWarmupMinutes       int           `mapstructure:"ai_warmup_minutes" validate:"min=0"`
	AICadenceMinutes      int           `mapstructure:"ai_cadence_minutes" validate:"min=1"`
	PlayRegion            int           `mapstructure:"play_region" validate:"min=-1"`
	AIPlaysInPlayerRegion bool          `mapstructure:"ai_plays_in_player_region"`
	SurviveDays           int           `mapstructure:"survive_days" validate:"min=0"`
}

// CatalogConfig points at the asset catalog. An empty path uses the
// embedded default.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// DatabaseConfig holds chronicle settings.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// APIConfig holds the observation API settings.
type APIConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	Port              int     `mapstructure:"port" validate:"min=1,max=65535"`
	AdminKey          string  `mapstructure:"admin_key"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int     `mapstructure:"burst" validate:"min=1"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Log level: debug, info, warn, error
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// Log format: json, text
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// Load reads configuration with priority:
// 1. Environment variables (highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v, Defaults())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// WorldOptions converts the simulation section for engine.Bootstrap.
func (s SimulationConfig) WorldOptions() engine.WorldOptions {
	return engine.WorldOptions{
		Seed:         s.Seed,
		Width:        s.WorldWidth,
		Height:       s.WorldHeight,
		Regions:      s.Regions,
		RegionRadius: s.RegionRadius,
	}
}

// Settings converts the simulation section into game tuning.
func (s SimulationConfig) Settings() engine.Settings {
	return engine.Settings{
		PlayRegion:            s.PlayRegion,
		AIPlaysInPlayerRegion: s.AIPlaysInPlayerRegion,
		AIWarmup:              clock.Minutes(uint64(s.AIWarmupMinutes)),
		AICadence:             clock.Minutes(uint64(s.AICadenceMinutes)),
		SurviveFor:            clock.Days(uint64(s.SurviveDays)),
	}
}
