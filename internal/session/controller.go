package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/orbarena/arena/internal/sim"
	"github.com/orbarena/arena/internal/world"
)

// InputProvider supplies the key snapshot for the next tick.
type InputProvider interface {
	Input() world.Input
}

// Renderer receives a read-only snapshot after every tick.
type Renderer interface {
	Render(snap *world.Snapshot)
}

// Options tune the tick driver. A zero TickRate runs ticks back to back; a
// non-zero MaxTicks stops the match after that many ticks.
type Options struct {
	TickRate time.Duration
	MaxTicks uint64
}

// Controller drives one match: it polls input, ticks the engine at a fixed
// rate and fans snapshots out to renderers until the match ends.
type Controller struct {
	engine    *sim.Engine
	input     InputProvider
	renderers []Renderer
	opts      Options
	log       *zap.Logger
}

func NewController(engine *sim.Engine, input InputProvider, opts Options, log *zap.Logger, renderers ...Renderer) *Controller {
	return &Controller{
		engine:    engine,
		input:     input,
		renderers: renderers,
		opts:      opts,
		log:       log,
	}
}

// Run ticks until the match is won or lost, MaxTicks is reached or ctx is
// done. On cancellation it stops the engine and returns ctx.Err().
func (c *Controller) Run(ctx context.Context) (world.Outcome, error) {
	c.render()

	var tick <-chan time.Time
	if c.opts.TickRate > 0 {
		ticker := time.NewTicker(c.opts.TickRate)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				c.engine.Stop()
				return c.engine.State().Outcome, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			c.engine.Stop()
			return c.engine.State().Outcome, err
		}

		if !c.engine.Running() {
			return c.engine.State().Outcome, nil
		}
		outcome := c.engine.Tick(c.input.Input())
		c.render()

		if outcome.Terminal() {
			return outcome, nil
		}
		if c.opts.MaxTicks > 0 && c.engine.State().Tick >= c.opts.MaxTicks {
			c.engine.Stop()
			c.engine.Flush()
			c.log.Info("tick limit reached", zap.Uint64("ticks", c.opts.MaxTicks))
			return outcome, nil
		}
	}
}

func (c *Controller) render() {
	if len(c.renderers) == 0 {
		return
	}
	snap := c.engine.Snapshot()
	for _, r := range c.renderers {
		r.Render(snap)
	}
}
