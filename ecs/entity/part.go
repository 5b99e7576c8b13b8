package entity

import (
	"image/color"

	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/prefabs"
)

var defaultPartColor = color.NRGBA{R: 200, G: 200, B: 200, A: 255}

// BuildPart creates a named, renderable prop under parent.
func BuildPart(w *ecs.World, spec prefabs.PartSpec, parent ecs.Entity) ecs.Entity {
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		Position: spec.Position.Or(common.Zero3),
		Rotation: spec.Rotation.Or(common.Zero3),
		Scale:    spec.Scale.Or(common.One3),
		Parent:   parent,
	})
	if spec.Name != "" {
		_ = ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: spec.Name})
	}
	mesh := spec.Mesh
	if mesh == "" {
		mesh = "box"
	}
	_ = ecs.Add(w, e, component.RenderableComponent.Kind(), &component.Renderable{
		Mesh:  mesh,
		Size:  spec.Size.Or(common.One3),
		Color: spec.Color.Or(defaultPartColor),
		Layer: spec.Layer,
	})
	_ = ecs.Add(w, e, component.ActiveComponent.Kind(), &component.Active{Enabled: !spec.Hidden})
	return e
}

// BuildSubstitute spawns the stand-in for an ObjectSwap anomaly at a world
// pose, parented to owner so it follows the hallway's lifetime.
func BuildSubstitute(w *ecs.World, spec prefabs.PartSpec, owner, original ecs.Entity, pos common.Vec3, yaw float64, scale common.Vec3) ecs.Entity {
	spec.Hidden = false
	e := BuildPart(w, spec, owner)
	t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	t.Position = ToLocal(w, owner, pos)
	_, ownerYaw := WorldPose(w, owner)
	t.Rotation.Y = common.NormalizeAngle(yaw - ownerYaw)
	t.Scale = scale
	_ = ecs.Add(w, e, component.SubstituteComponent.Kind(), &component.Substitute{Original: original})
	return e
}
