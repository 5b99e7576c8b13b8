package component

import (
	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
)

type DoorState int

const (
	DoorClosed DoorState = iota
	DoorOpening
	DoorOpen
	DoorClosing
)

func (s DoorState) String() string {
	switch s {
	case DoorClosed:
		return "closed"
	case DoorOpening:
		return "opening"
	case DoorOpen:
		return "open"
	case DoorClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// DoorRole is the door's position in its hallway.
type DoorRole int

const (
	DoorRoleStart DoorRole = iota
	DoorRoleEnd
)

type Door struct {
	State DoorState
	Role  DoorRole

	// EntryOnly doors are never interactable.
	EntryOnly bool
	Locked    bool
	AutoClose bool

	// OpenSpeed is in cycles per second; an open or close takes 1/OpenSpeed.
	OpenSpeed float64
	OpenAngle float64
	Curve     common.Curve

	ClosedRotation common.Vec3
	OpenRotation   common.Vec3

	// PassedThrough debounces the pass-through trigger; re-armed on open.
	PassedThrough bool
	// CloseQueued closes the door as soon as an open swing finishes.
	CloseQueued bool

	Hallway ecs.Entity
}

var DoorComponent = NewComponent[Door]()
