package component

import (
	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
)

// Transform is local to Parent when Parent is set. Only yaw (Rotation.Y)
// composes through the hierarchy; pitch and roll stay local.
type Transform struct {
	Position common.Vec3
	Rotation common.Vec3
	Scale    common.Vec3
	Parent   ecs.Entity
}

var TransformComponent = NewComponent[Transform]()
