package world

import "fmt"

// Input is the read-only key snapshot the player branch consumes each tick.
type Input struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Boost bool `json:"boost"`
}

// Outcome is the session-level result reported after every tick.
type Outcome uint8

const (
	OutcomeRunning Outcome = iota
	OutcomeWon
	OutcomeLost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	}
	return fmt.Sprintf("outcome(%d)", uint8(o))
}

// Terminal reports whether the match is over.
func (o Outcome) Terminal() bool { return o == OutcomeWon || o == OutcomeLost }

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "running":
		*o = OutcomeRunning
	case "won":
		*o = OutcomeWon
	case "lost":
		*o = OutcomeLost
	default:
		return fmt.Errorf("unknown outcome %q", b)
	}
	return nil
}
