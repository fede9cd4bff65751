package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Sim       SimConfig       `toml:"sim"`
	Tuning    TuningConfig    `toml:"tuning"`
	Scripting ScriptingConfig `toml:"scripting"`
	Observer  ObserverConfig  `toml:"observer"`
	Logging   LoggingConfig   `toml:"logging"`
}

// SimConfig sizes the arena and its populations.
type SimConfig struct {
	TickRate       time.Duration `toml:"tick_rate"`
	Seed           int64         `toml:"seed"` // 0 = seeded from the clock
	WorldSize      float64       `toml:"world_size"`
	NumAI          int           `toml:"num_ai"`
	NumFuel        int           `toml:"num_fuel"`
	MaxFuel        float64       `toml:"max_fuel"`
	PlayerRadius   float64       `toml:"player_radius"`
	AIMinRadius    float64       `toml:"ai_min_radius"`
	AIMaxRadius    float64       `toml:"ai_max_radius"`
	AIMaxSpeed     float64       `toml:"ai_max_speed"`
	AIInitialSpeed float64       `toml:"ai_initial_speed"`
	MaxFuelPickups int           `toml:"max_fuel_pickups"` // 0 = background spawning is unbounded
	StartingLevel  int           `toml:"starting_level"`
}

// TuningConfig holds the per-tick constants of steering, economy and tails.
type TuningConfig struct {
	PlayerAcceleration      float64 `toml:"player_acceleration"`
	BoostAcceleration       float64 `toml:"boost_acceleration"`
	Friction                float64 `toml:"friction"`
	VisionRange             float64 `toml:"vision_range"`
	ChaseSpeed              float64 `toml:"chase_speed"`
	FuelSpawnChance         float64 `toml:"fuel_spawn_chance"`
	FuelValue               float64 `toml:"fuel_value"`
	BoostCost               float64 `toml:"boost_cost"`
	FuelRadius              float64 `toml:"fuel_radius"`
	ParticleLife            float64 `toml:"particle_life"`
	ParticleCount           int     `toml:"particle_count"`
	TailUpdateInterval      int     `toml:"tail_update_interval"`
	TailLengthPercentPlayer float64 `toml:"tail_length_percent_player"`
	TailLengthPercentAI     float64 `toml:"tail_length_percent_ai"`
	TailPointsPerPercent    float64 `toml:"tail_points_per_percent"`
	TailWidth               float64 `toml:"tail_width"`
	GrowthFactor            float64 `toml:"growth_factor"` // share of the absorbed radius added to the absorber
	LevelEvery              int     `toml:"level_every"`
	PulseSpeed              float64 `toml:"pulse_speed"`
	RankingInterval         int     `toml:"ranking_interval"` // ticks
	RankingSize             int     `toml:"ranking_size"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // optional directory of .lua overrides
}

type ObserverConfig struct {
	Enabled        bool   `toml:"enabled"`
	BindAddress    string `toml:"bind_address"`
	BroadcastEvery int    `toml:"broadcast_every"` // ticks between frames
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // empty = stdout
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaults()
}

// Validate rejects configurations the simulation cannot run with. Every
// offending key is reported.
func (c *Config) Validate() error {
	var errs []error
	bad := func(key string, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s %s", ErrInvalid, key, fmt.Sprintf(format, args...)))
	}

	s, t := c.Sim, c.Tuning
	if s.TickRate <= 0 {
		bad("sim.tick_rate", "must be positive, got %s", s.TickRate)
	}
	if s.WorldSize <= 0 {
		bad("sim.world_size", "must be positive, got %g", s.WorldSize)
	}
	if s.NumAI < 0 {
		bad("sim.num_ai", "must not be negative, got %d", s.NumAI)
	}
	if s.NumFuel < 0 {
		bad("sim.num_fuel", "must not be negative, got %d", s.NumFuel)
	}
	if s.MaxFuel <= 0 {
		bad("sim.max_fuel", "must be positive, got %g", s.MaxFuel)
	}
	if s.PlayerRadius <= 0 || 2*s.PlayerRadius > s.WorldSize {
		bad("sim.player_radius", "must be positive and fit the world, got %g", s.PlayerRadius)
	}
	if s.AIMinRadius <= 0 || s.AIMaxRadius < s.AIMinRadius {
		bad("sim.ai_min_radius", "range [%g,%g) is empty or non-positive", s.AIMinRadius, s.AIMaxRadius)
	}
	if 2*s.AIMaxRadius >= s.WorldSize {
		bad("sim.ai_max_radius", "%g does not fit a world of %g", s.AIMaxRadius, s.WorldSize)
	}
	if s.AIMaxSpeed <= 0 {
		bad("sim.ai_max_speed", "must be positive, got %g", s.AIMaxSpeed)
	}
	if s.AIInitialSpeed < 0 {
		bad("sim.ai_initial_speed", "must not be negative, got %g", s.AIInitialSpeed)
	}
	if s.MaxFuelPickups < 0 {
		bad("sim.max_fuel_pickups", "must not be negative, got %d", s.MaxFuelPickups)
	}

	if t.Friction <= 0 || t.Friction >= 1 {
		bad("tuning.friction", "must be in (0,1), got %g", t.Friction)
	}
	if t.PlayerAcceleration < 0 || t.BoostAcceleration < 0 {
		bad("tuning.player_acceleration", "accelerations must not be negative")
	}
	if t.VisionRange <= 0 {
		bad("tuning.vision_range", "must be positive, got %g", t.VisionRange)
	}
	if t.ChaseSpeed < 0 {
		bad("tuning.chase_speed", "must not be negative, got %g", t.ChaseSpeed)
	}
	if t.FuelSpawnChance < 0 || t.FuelSpawnChance > 1 {
		bad("tuning.fuel_spawn_chance", "must be in [0,1], got %g", t.FuelSpawnChance)
	}
	if t.FuelValue < 0 || t.BoostCost < 0 {
		bad("tuning.fuel_value", "fuel value and boost cost must not be negative")
	}
	if t.FuelRadius <= 0 {
		bad("tuning.fuel_radius", "must be positive, got %g", t.FuelRadius)
	}
	if t.ParticleLife <= 0 {
		bad("tuning.particle_life", "must be positive, got %g", t.ParticleLife)
	}
	if t.ParticleCount < 0 {
		bad("tuning.particle_count", "must not be negative, got %d", t.ParticleCount)
	}
	if t.TailUpdateInterval < 1 {
		bad("tuning.tail_update_interval", "must be at least 1, got %d", t.TailUpdateInterval)
	}
	if t.TailLengthPercentPlayer < 0 || t.TailLengthPercentAI < 0 || t.TailPointsPerPercent < 0 {
		bad("tuning.tail_length_percent", "tail sizing must not be negative")
	}
	if t.GrowthFactor <= 0 {
		bad("tuning.growth_factor", "must be positive, got %g", t.GrowthFactor)
	}
	if t.LevelEvery < 1 {
		bad("tuning.level_every", "must be at least 1, got %d", t.LevelEvery)
	}
	if t.RankingInterval < 1 || t.RankingSize < 1 {
		bad("tuning.ranking_interval", "ranking interval and size must be at least 1")
	}

	if c.Observer.Enabled && c.Observer.BindAddress == "" {
		bad("observer.bind_address", "required when the observer is enabled")
	}
	if c.Observer.BroadcastEvery < 1 {
		bad("observer.broadcast_every", "must be at least 1, got %d", c.Observer.BroadcastEvery)
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		Sim: SimConfig{
			TickRate:       16 * time.Millisecond,
			WorldSize:      5000,
			NumAI:          45,
			NumFuel:        20,
			MaxFuel:        100,
			PlayerRadius:   12,
			AIMinRadius:    4,
			AIMaxRadius:    28,
			AIMaxSpeed:     1.4,
			AIInitialSpeed: 1.4,
			StartingLevel:  1,
		},
		Tuning: TuningConfig{
			PlayerAcceleration:      0.3,
			BoostAcceleration:       0.6,
			Friction:                0.85,
			VisionRange:             300,
			ChaseSpeed:              0.05,
			FuelSpawnChance:         0.02,
			FuelValue:               20,
			BoostCost:               2,
			FuelRadius:              5,
			ParticleLife:            50,
			ParticleCount:           25,
			TailUpdateInterval:      2,
			TailLengthPercentPlayer: 200,
			TailLengthPercentAI:     200,
			TailPointsPerPercent:    1.0,
			TailWidth:               12,
			GrowthFactor:            0.1,
			LevelEvery:              5,
			PulseSpeed:              0.05,
			RankingInterval:         30,
			RankingSize:             5,
		},
		Observer: ObserverConfig{
			BindAddress:    "127.0.0.1:7070",
			BroadcastEvery: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
