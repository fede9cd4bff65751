package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/orbarena/arena/internal/world"
)

// ErrScenario is wrapped by every scenario validation failure.
var ErrScenario = errors.New("invalid scenario")

// Scenario is a hand-placed starting world loaded from YAML. Orbs are added
// in file order after the player, so file order is collection order.
type Scenario struct {
	Name        string       `yaml:"name"`
	WorldSize   float64      `yaml:"world_size"` // 0 = keep the configured size
	Player      PlayerSpec   `yaml:"player"`
	Orbs        []OrbSpec    `yaml:"orbs"`
	Fuel        []PickupSpec `yaml:"fuel"`
	FuelReserve float64      `yaml:"fuel_reserve"`
	Score       int          `yaml:"score"`
	Level       int          `yaml:"level"` // 0 = configured starting level
}

type PlayerSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

// OrbSpec places one AI orb. An empty Kind is drawn at random.
type OrbSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
	VX     float64 `yaml:"vx"`
	VY     float64 `yaml:"vy"`
	Kind   string  `yaml:"kind"`
}

type PickupSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// LoadScenario reads and checks a scenario file. Bounds that depend on the
// running configuration are checked by Validate.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	if err := sc.check(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

func (sc *Scenario) check() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrScenario, fmt.Sprintf(format, args...)))
	}
	if sc.WorldSize < 0 {
		bad("world_size must not be negative, got %g", sc.WorldSize)
	}
	if sc.Player.Radius <= 0 {
		bad("player.radius must be positive, got %g", sc.Player.Radius)
	}
	for i, o := range sc.Orbs {
		if o.Radius <= 0 {
			bad("orbs[%d].radius must be positive, got %g", i, o.Radius)
		}
		if o.Kind != "" {
			if _, err := world.ParseKind(o.Kind); err != nil {
				bad("orbs[%d]: %v", i, err)
			}
		}
	}
	if sc.FuelReserve < 0 {
		bad("fuel_reserve must not be negative, got %g", sc.FuelReserve)
	}
	if sc.Score < 0 || sc.Level < 0 {
		bad("score and level must not be negative")
	}
	return errors.Join(errs...)
}

// Validate checks the scenario against the world it will be loaded into.
func (sc *Scenario) Validate(worldSize, maxFuel float64) error {
	if err := sc.check(); err != nil {
		return err
	}
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrScenario, fmt.Sprintf(format, args...)))
	}
	inside := func(x, y float64) bool {
		return x >= 0 && x <= worldSize && y >= 0 && y <= worldSize
	}
	if !inside(sc.Player.X, sc.Player.Y) {
		bad("player at (%g,%g) is outside a world of %g", sc.Player.X, sc.Player.Y, worldSize)
	}
	for i, o := range sc.Orbs {
		if !inside(o.X, o.Y) {
			bad("orbs[%d] at (%g,%g) is outside a world of %g", i, o.X, o.Y, worldSize)
		}
	}
	for i, f := range sc.Fuel {
		if !inside(f.X, f.Y) {
			bad("fuel[%d] at (%g,%g) is outside a world of %g", i, f.X, f.Y, worldSize)
		}
	}
	if sc.FuelReserve > maxFuel {
		bad("fuel_reserve %g exceeds max fuel %g", sc.FuelReserve, maxFuel)
	}
	return errors.Join(errs...)
}
