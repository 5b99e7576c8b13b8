package entity

import (
	"fmt"
	"image/color"

	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/prefabs"
)

// BuildLift instantiates the terminal lift with its entrance at origin. The
// lift starts inactive; the director decides when it is shown.
func BuildLift(w *ecs.World, spec *prefabs.LiftSpec, origin common.Vec3, yaw float64) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("entity: lift: world is nil")
	}
	if spec == nil {
		return 0, fmt.Errorf("entity: lift: spec is nil")
	}

	root := ecs.CreateEntity(w)
	_ = ecs.Add(w, root, component.TransformComponent.Kind(), &component.Transform{
		Position: origin,
		Rotation: common.V3(0, yaw, 0),
		Scale:    common.One3,
	})
	_ = ecs.Add(w, root, component.NameComponent.Kind(), &component.Name{Value: spec.Name})
	_ = ecs.Add(w, root, component.ActiveComponent.Kind(), &component.Active{Enabled: false})
	_ = ecs.Add(w, root, component.RenderableComponent.Kind(), &component.Renderable{
		Mesh:  "lift",
		Size:  spec.Size.Or(common.V3(3, 3, 3)),
		Color: spec.Color.Or(color.NRGBA{R: 122, G: 125, B: 130, A: 255}),
		Layer: -2,
	})

	lift := &component.Lift{ButtonPush: spec.ButtonPush.Or(common.V3(-0.04, 0, 0))}

	lift.Button = BuildPart(w, spec.Button, root)
	_ = ecs.Add(w, lift.Button, component.LiftButtonComponent.Kind(), &component.LiftButton{Lift: root})

	travel := spec.DoorTravel
	if travel <= 0 {
		travel = 1.2
	}
	lift.LeftDoor = buildSlidingDoor(w, spec.LeftDoor, root, -travel)
	lift.RightDoor = buildSlidingDoor(w, spec.RightDoor, root, travel)

	size := spec.Size.Or(common.V3(3, 3, 3))
	lift.Entry = ecs.CreateEntity(w)
	_ = ecs.Add(w, lift.Entry, component.TransformComponent.Kind(), &component.Transform{
		Position: spec.Entry.Offset.Or(common.V3(0, 0, size.Z/2)),
		Scale:    common.One3,
		Parent:   root,
	})
	_ = ecs.Add(w, lift.Entry, component.TriggerComponent.Kind(), &component.Trigger{
		Kind:        component.TriggerLiftEntry,
		Owner:       root,
		HalfExtents: spec.Entry.HalfExtents.Or(size.Scale(0.45)),
	})

	_ = ecs.Add(w, root, component.LiftComponent.Kind(), lift)
	_ = ecs.Add(w, root, component.EpilogueComponent.Kind(), &component.Epilogue{})
	return root, nil
}

// buildSlidingDoor places a leaf at its open position; the authored position
// is where the leaf rests when closed.
func buildSlidingDoor(w *ecs.World, spec prefabs.PartSpec, root ecs.Entity, travel float64) ecs.Entity {
	closed := spec.Position.Or(common.Zero3)
	open := closed.Add(common.V3(travel, 0, 0))
	spec.Position = prefabs.Vec3Spec{Vec3: open, Set: true}
	e := BuildPart(w, spec, root)
	_ = ecs.Add(w, e, component.SlidingDoorComponent.Kind(), &component.SlidingDoor{
		OpenPosition:   open,
		ClosedPosition: closed,
	})
	return e
}
