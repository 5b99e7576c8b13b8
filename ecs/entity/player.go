package entity

import (
	"fmt"
	"image/color"

	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/prefabs"
)

// BuildPlayer creates the tagged player root and its collider chain. The
// collider sits at the end of collider_path, so triggers have to match it
// back up to the tagged root.
func BuildPlayer(w *ecs.World, spec *prefabs.PlayerSpec) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("entity: player: world is nil")
	}
	if spec == nil {
		return 0, fmt.Errorf("entity: player: spec is nil")
	}

	root := ecs.CreateEntity(w)
	_ = ecs.Add(w, root, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	_ = ecs.Add(w, root, component.NameComponent.Kind(), &component.Name{Value: spec.Name})
	_ = ecs.Add(w, root, component.TransformComponent.Kind(), &component.Transform{
		Position: spec.Spawn.Or(common.Zero3),
		Scale:    common.One3,
	})
	_ = ecs.Add(w, root, component.RenderableComponent.Kind(), &component.Renderable{
		Mesh:  "player",
		Size:  common.V3(0.5, 1.8, 0.5),
		Color: color.NRGBA{R: 240, G: 240, B: 255, A: 255},
		Layer: 5,
	})

	radius := spec.ColliderRadius
	if radius <= 0 {
		radius = 0.3
	}

	parent := root
	for _, link := range spec.ColliderPath {
		e := ecs.CreateEntity(w)
		_ = ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
			Position: link.Position.Or(common.Zero3),
			Scale:    common.One3,
			Parent:   parent,
		})
		if link.Name != "" {
			_ = ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: link.Name})
		}
		parent = e
	}
	_ = ecs.Add(w, parent, component.ColliderComponent.Kind(), &component.Collider{Radius: radius})
	return root, nil
}

// MovePlayer sets the player root pose.
func MovePlayer(w *ecs.World, player ecs.Entity, pos common.Vec3, yaw float64) {
	t, ok := ecs.Get(w, player, component.TransformComponent.Kind())
	if !ok {
		return
	}
	t.Position = pos
	t.Rotation.Y = common.NormalizeAngle(yaw)
}
