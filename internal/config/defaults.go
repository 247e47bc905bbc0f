package config

import (
	"time"

	"github.com/spf13/viper"
)

// Defaults returns the stock configuration.
func Defaults() Config {
	return Config{
		Simulation: SimulationConfig{
			Seed:             42,
			WorldWidth:       160,
			WorldHeight:      96,
			Regions:          6,
			RegionRadius:     12,
			MinutesPerStep:   10,
			StepInterval:     time.Second,
			AIWarmupMinutes:  480,
			AICadenceMinutes: 30,
			PlayRegion:       0,
			SurviveDays:      28,
		},
		Database: DatabaseConfig{
			Enabled: true,
			Path:    "data/chronicle.db",
		},
		API: APIConfig{
			Enabled:           true,
			Port:              8080,
			RequestsPerSecond: 5,
			Burst:             20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// registerDefaults tells v every key so environment overrides bind even
// without a config file.
func registerDefaults(v *viper.Viper, d Config) {
	s := d.Simulation
	v.SetDefault("simulation.seed", s.Seed)
	v.SetDefault("simulation.world_width", s.WorldWidth)
	v.SetDefault("simulation.world_height", s.WorldHeight)
	v.SetDefault("simulation.regions", s.Regions)
	v.SetDefault("simulation.region_radius", s.RegionRadius)
	v.SetDefault("simulation.minutes_per_step", s.MinutesPerStep)
	v.SetDefault("simulation.step_interval", s.StepInterval)
	v.SetDefault("simulation.ai_warmup_minutes", s.AIWarmupMinutes)
	v.SetDefault("simulation.ai_cadence_minutes", s.AICadenceMinutes)
	v.SetDefault("simulation.play_region", s.PlayRegion)
	v.SetDefault("simulation.ai_plays_in_player_region", s.AIPlaysInPlayerRegion)
	v.SetDefault("simulation.survive_days", s.SurviveDays)

	v.SetDefault("catalog.path", d.Catalog.Path)

	v.SetDefault("database.enabled", d.Database.Enabled)
	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("api.enabled", d.API.Enabled)
	v.SetDefault("api.port", d.API.Port)
	v.SetDefault("api.admin_key", d.API.AdminKey)
	v.SetDefault("api.requests_per_second", d.API.RequestsPerSecond)
	v.SetDefault("api.burst", d.API.Burst)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// SetDefaults fills zero numeric and string fields from Defaults. Booleans
// are left alone.
func SetDefaults(cfg *Config) {
	d := Defaults()

	// Simulation defaults
	if cfg.Simulation.WorldWidth == 0 {
		cfg.Simulation.WorldWidth = d.Simulation.WorldWidth
	}
	if cfg.Simulation.WorldHeight == 0 {
		cfg.Simulation.WorldHeight = d.Simulation.WorldHeight
	}
	if cfg.Simulation.Regions == 0 {
		cfg.Simulation.Regions = d.Simulation.Regions
	}
	if cfg.Simulation.RegionRadius == 0 {
		cfg.Simulation.RegionRadius = d.Simulation.RegionRadius
	}
	if cfg.Simulation.MinutesPerStep == 0 {
		cfg.Simulation.MinutesPerStep = d.Simulation.MinutesPerStep
	}
	if cfg.Simulation.AICadenceMinutes == 0 {
		cfg.Simulation.AICadenceMinutes = d.Simulation.AICadenceMinutes
	}

	// API defaults
	if cfg.API.Port == 0 {
		cfg.API.Port = d.API.Port
	}
	if cfg.API.RequestsPerSecond == 0 {
		cfg.API.RequestsPerSecond = d.API.RequestsPerSecond
	}
	if cfg.API.Burst == 0 {
		cfg.API.Burst = d.API.Burst
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = d.Logging.Format
	}
}
