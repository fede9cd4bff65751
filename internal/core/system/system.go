package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhasePreUpdate  Phase = iota // 0: deliver last tick's events, decay particles
	PhaseSteer                   // 1: player input, AI steering, background spawning
	PhaseCollide                 // 2: absorption and pickup resolution
	PhaseEvaluate                // 3: win/loss check
	PhasePostUpdate              // 4: ranking and other read models
	PhaseCleanup                 // 5: recycle destroyed entities, compact stores
)

func (p Phase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre-update"
	case PhaseSteer:
		return "steer"
	case PhaseCollide:
		return "collide"
	case PhaseEvaluate:
		return "evaluate"
	case PhasePostUpdate:
		return "post-update"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
