package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"machine_monitor/internal/fleet"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. MONITOR_SIMULATION_TICK=500ms.
const EnvPrefix = "MONITOR"

// Config is the process configuration.
type Config struct {
	Port       string
	DB         DBConfig
	Log        LogConfig
	Simulation SimulationConfig
	Auth       AuthConfig
}

type DBConfig struct {
	Path string
}

type LogConfig struct {
	Level string
	File  string
}

// SimulationConfig describes the fleet and the tick cadence.
type SimulationConfig struct {
	Tick               time.Duration
	Seed               int64 // 0 means time seeded
	FailureProbability float64
	Machines           []string
	Faults             []string
	HistoryWindow      int // ticks of per-machine history served by the API; 0 keeps all
}

type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

// Fleet converts the simulation section to a fleet.Config.
func (s SimulationConfig) Fleet() fleet.Config {
	return fleet.Config{
		Machines:           append([]string(nil), s.Machines...),
		Faults:             append([]string(nil), s.Faults...),
		FailureProbability: s.FailureProbability,
	}
}

var errEmptySigningKey = errors.New("auth.signing_key must not be empty")

// SetDefaults registers a default for every key.
func SetDefaults(v *viper.Viper) {
	def := fleet.DefaultConfig()
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("simulation.tick", time.Second)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.failure_probability", def.FailureProbability)
	v.SetDefault("simulation.machines", def.Machines)
	v.SetDefault("simulation.faults", def.Faults)
	v.SetDefault("simulation.history_window", 500)
	v.SetDefault("auth.signing_key", "change-me")
	v.SetDefault("auth.token_ttl", time.Hour)
}

// New returns a viper instance with defaults and environment overrides.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (when non-empty) on top of the defaults. Without a path it
// looks for configs/config.yml and silently falls back to defaults if absent.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port: v.GetString("port"),
		DB:   DBConfig{Path: v.GetString("db.path")},
		Log: LogConfig{
			Level: strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
			File:  v.GetString("log.file"),
		},
		Simulation: SimulationConfig{
			Tick:               v.GetDuration("simulation.tick"),
			Seed:               v.GetInt64("simulation.seed"),
			FailureProbability: v.GetFloat64("simulation.failure_probability"),
			Machines:           v.GetStringSlice("simulation.machines"),
			Faults:             v.GetStringSlice("simulation.faults"),
			HistoryWindow:      v.GetInt("simulation.history_window"),
		},
		Auth: AuthConfig{
			SigningKey: v.GetString("auth.signing_key"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values viper cannot type-check on its own.
func (c *Config) Validate() error {
	if c.Simulation.Tick <= 0 {
		return fmt.Errorf("simulation.tick must be positive, got %s", c.Simulation.Tick)
	}
	if c.Simulation.HistoryWindow < 0 {
		return fmt.Errorf("simulation.history_window must not be negative, got %d", c.Simulation.HistoryWindow)
	}
	if err := c.Simulation.Fleet().Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if c.Auth.SigningKey == "" {
		return errEmptySigningKey
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}
