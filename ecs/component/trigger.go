package component

import (
	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
)

type TriggerKind int

const (
	TriggerHallwayEntry TriggerKind = iota
	TriggerDoorPassThrough
	TriggerLiftEntry
)

// Trigger is a floor-plane volume centred on the entity. HalfExtents.Y is
// ignored.
type Trigger struct {
	Kind        TriggerKind
	Owner       ecs.Entity
	HalfExtents common.Vec3
}

// Collider is the player's representative collider. It may sit several
// levels below the PlayerTag root.
type Collider struct {
	Radius float64
}

var TriggerComponent = NewComponent[Trigger]()
var ColliderComponent = NewComponent[Collider]()
