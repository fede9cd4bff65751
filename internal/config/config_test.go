package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orbarena.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[sim]
tick_rate = "20ms"
world_size = 1200
num_ai = 7
seed = 42

[tuning]
friction = 0.9
boost_cost = 3

[logging]
level = "debug"
format = "json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Sim.TickRate != 20*time.Millisecond {
		t.Errorf("tick_rate = %s, want 20ms", cfg.Sim.TickRate)
	}
	if cfg.Sim.WorldSize != 1200 || cfg.Sim.NumAI != 7 || cfg.Sim.Seed != 42 {
		t.Errorf("sim overrides not applied: %+v", cfg.Sim)
	}
	if cfg.Tuning.Friction != 0.9 || cfg.Tuning.BoostCost != 3 {
		t.Errorf("tuning overrides not applied: %+v", cfg.Tuning)
	}
	// untouched keys keep their defaults
	if cfg.Tuning.VisionRange != 300 || cfg.Sim.NumFuel != 20 {
		t.Errorf("defaults lost: vision=%g fuel=%d", cfg.Tuning.VisionRange, cfg.Sim.NumFuel)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging format = %q", cfg.Logging.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped ErrNotExist, got %v", err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `
[sim]
world_size = -5

[tuning]
tail_update_interval = 0
`)
	_, err := Load(path)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	for _, key := range []string{"sim.world_size", "tuning.tail_update_interval"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"zero tick rate", func(c *Config) { c.Sim.TickRate = 0 }, "sim.tick_rate"},
		{"friction above one", func(c *Config) { c.Tuning.Friction = 1.5 }, "tuning.friction"},
		{"friction of one", func(c *Config) { c.Tuning.Friction = 1 }, "tuning.friction"},
		{"zero friction", func(c *Config) { c.Tuning.Friction = 0 }, "tuning.friction"},
		{"negative ai", func(c *Config) { c.Sim.NumAI = -1 }, "sim.num_ai"},
		{"zero max fuel", func(c *Config) { c.Sim.MaxFuel = 0 }, "sim.max_fuel"},
		{"inverted ai radius", func(c *Config) { c.Sim.AIMinRadius = 30 }, "sim.ai_min_radius"},
		{"ai radius too big", func(c *Config) { c.Sim.WorldSize = 50 }, "sim.ai_max_radius"},
		{"spawn chance", func(c *Config) { c.Tuning.FuelSpawnChance = 2 }, "tuning.fuel_spawn_chance"},
		{"vision", func(c *Config) { c.Tuning.VisionRange = 0 }, "tuning.vision_range"},
		{"level every", func(c *Config) { c.Tuning.LevelEvery = 0 }, "tuning.level_every"},
		{"observer address", func(c *Config) { c.Observer.Enabled = true; c.Observer.BindAddress = "" }, "observer.bind_address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Fatalf("error %q does not mention %s", err, tt.key)
			}
		})
	}
}

func TestShippedConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "orbarena.toml"))
	if err != nil {
		t.Fatalf("load shipped config: %v", err)
	}
	if *cfg != *Default() {
		t.Fatalf("shipped config drifted from defaults:\n got %+v\nwant %+v", *cfg, *Default())
	}
}
