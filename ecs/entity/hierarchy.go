package entity

import (
	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
)

// Children returns the direct children of parent.
func Children(w *ecs.World, parent ecs.Entity) []ecs.Entity {
	if w == nil || !parent.Valid() {
		return nil
	}
	var out []ecs.Entity
	ecs.ForEach(w, component.TransformComponent.Kind(), func(e ecs.Entity, t *component.Transform) {
		if t.Parent == parent {
			out = append(out, e)
		}
	})
	return out
}

// DestroyTree destroys root and every descendant.
func DestroyTree(w *ecs.World, root ecs.Entity) bool {
	if !ecs.IsAlive(w, root) {
		return false
	}
	for _, child := range Children(w, root) {
		DestroyTree(w, child)
	}
	return ecs.DestroyEntity(w, root)
}

// FindByName walks the subtree under root and returns the first entity whose
// Name matches.
func FindByName(w *ecs.World, root ecs.Entity, name string) (ecs.Entity, bool) {
	for _, child := range Children(w, root) {
		if n, ok := ecs.Get(w, child, component.NameComponent.Kind()); ok && n.Value == name {
			return child, true
		}
		if found, ok := FindByName(w, child, name); ok {
			return found, true
		}
	}
	return 0, false
}

// Root returns the topmost ancestor of e.
func Root(w *ecs.World, e ecs.Entity) ecs.Entity {
	for i := 0; i < maxDepth; i++ {
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok || !ecs.IsAlive(w, t.Parent) {
			return e
		}
		e = t.Parent
	}
	return e
}

const maxDepth = 32

// WorldPose composes position and yaw up the parent chain. Scale is local.
func WorldPose(w *ecs.World, e ecs.Entity) (pos common.Vec3, yaw float64) {
	for i := 0; i < maxDepth; i++ {
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			return pos, yaw
		}
		pos = pos.RotateYaw(t.Rotation.Y).Add(t.Position)
		yaw += t.Rotation.Y
		if !ecs.IsAlive(w, t.Parent) {
			return pos, yaw
		}
		e = t.Parent
	}
	return pos, yaw
}

// ToLocal converts a world position into parent's space.
func ToLocal(w *ecs.World, parent ecs.Entity, world common.Vec3) common.Vec3 {
	if !ecs.IsAlive(w, parent) {
		return world
	}
	pos, yaw := WorldPose(w, parent)
	return world.Sub(pos).RotateYaw(-yaw)
}

func SetActive(w *ecs.World, e ecs.Entity, enabled bool) {
	if !ecs.IsAlive(w, e) {
		return
	}
	if a, ok := ecs.Get(w, e, component.ActiveComponent.Kind()); ok {
		a.Enabled = enabled
		return
	}
	_ = ecs.Add(w, e, component.ActiveComponent.Kind(), &component.Active{Enabled: enabled})
}

// ActiveSelf ignores parents; entities without Active count as active.
func ActiveSelf(w *ecs.World, e ecs.Entity) bool {
	if !ecs.IsAlive(w, e) {
		return false
	}
	a, ok := ecs.Get(w, e, component.ActiveComponent.Kind())
	return !ok || a.Enabled
}

// ActiveInHierarchy is true when e and all of its ancestors are active.
func ActiveInHierarchy(w *ecs.World, e ecs.Entity) bool {
	for i := 0; i < maxDepth; i++ {
		if !ActiveSelf(w, e) {
			return false
		}
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok || !ecs.IsAlive(w, t.Parent) {
			return true
		}
		e = t.Parent
	}
	return true
}
