package component

import (
	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
)

// Lift is the terminal segment reached after the final hallway.
type Lift struct {
	Button     ecs.Entity
	LeftDoor   ecs.Entity
	RightDoor  ecs.Entity
	Entry      ecs.Entity
	ButtonPush common.Vec3
}

// SlidingDoor is one leaf of the lift's closing doors.
type SlidingDoor struct {
	OpenPosition   common.Vec3
	ClosedPosition common.Vec3
}

// LiftButton marks the terminal button; Lift points back at the owner.
type LiftButton struct {
	Lift ecs.Entity
}

type EpiloguePhase int

const (
	EpilogueIdle EpiloguePhase = iota
	EpiloguePressed
	EpilogueDoorsClosing
	EpilogueFading
	EpilogueCredits
	EpilogueDone
)

func (p EpiloguePhase) String() string {
	switch p {
	case EpilogueIdle:
		return "idle"
	case EpiloguePressed:
		return "pressed"
	case EpilogueDoorsClosing:
		return "doors closing"
	case EpilogueFading:
		return "fading"
	case EpilogueCredits:
		return "credits"
	case EpilogueDone:
		return "done"
	default:
		return "unknown"
	}
}

// Epilogue is the end-sequence state of a lift. Started never resets; a
// scene reload builds a new lift.
type Epilogue struct {
	Started bool
	Phase   EpiloguePhase
	Task    ecs.Entity
}

var LiftComponent = NewComponent[Lift]()
var SlidingDoorComponent = NewComponent[SlidingDoor]()
var LiftButtonComponent = NewComponent[LiftButton]()
var EpilogueComponent = NewComponent[Epilogue]()
