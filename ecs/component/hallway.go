package component

import "github.com/milk9111/hallways/ecs"

// Hallway is one spawned segment. HasAnomaly is ground truth and is only
// written by initialization.
type Hallway struct {
	Index      int
	HasAnomaly bool

	// PlayerResponse is the player's claim; only meaningful while this
	// hallway is the director's current segment.
	PlayerResponse bool
	Responded      bool

	LightsOn bool

	StartDoor ecs.Entity
	EndDoor   ecs.Entity
	Lights    []ecs.Entity
	Emissives []ecs.Entity
	Switch    ecs.Entity
	Entry     ecs.Entity

	Length      float64
	Initialized bool

	// EntryReported debounces PlayerEntered until the next activation.
	EntryReported bool
}

var HallwayComponent = NewComponent[Hallway]()
