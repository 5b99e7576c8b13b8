package component

import "github.com/milk9111/hallways/ecs"

type DirectorState int

const (
	DirectorPlaying DirectorState = iota
	DirectorTransitioning
	DirectorResetting
	DirectorCompleted
)

func (s DirectorState) String() string {
	switch s {
	case DirectorPlaying:
		return "playing"
	case DirectorTransitioning:
		return "transitioning"
	case DirectorResetting:
		return "resetting"
	case DirectorCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Director holds the progression state. The director system keeps no state
// of its own beyond configuration and services.
type Director struct {
	State    DirectorState
	Progress int

	Current          ecs.Entity
	CorrectCandidate ecs.Entity
	ResetCandidate   ecs.Entity
	Lift             ecs.Entity

	// Chain lists the segments that have been in play since the last
	// cleanup, oldest first.
	Chain []ecs.Entity

	// Reports holds the last light state reported upward per hallway.
	Reports map[ecs.Entity]bool

	// Cleanup is the in-flight cleanup task, if any.
	Cleanup ecs.Entity
}

var DirectorComponent = NewComponent[Director]()
