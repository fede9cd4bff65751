package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each tick. Systems sharing a phase
// run in registration order.
type Runner struct {
	systems []System
	sorted  bool
	halt    func() bool
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// SetHalt installs a predicate checked after every system. Once it reports
// true the rest of the tick is skipped, except PhaseCleanup.
func (r *Runner) SetHalt(fn func() bool) {
	r.halt = fn
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	halted := false
	for _, s := range r.systems {
		if halted && s.Phase() != PhaseCleanup {
			continue
		}
		s.Update(dt)
		if !halted && r.halt != nil && r.halt() {
			halted = true
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
