package system

import (
	"math"

	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/ecs/entity"
)

// InteractionSystem turns input "activated" requests into operations on
// switches, end doors and the lift button.
type InteractionSystem struct {
	Hallways *HallwaySystem
	Doors    *DoorSystem
	Epilogue *EpilogueSystem
}

func NewInteractionSystem(hallways *HallwaySystem, doors *DoorSystem, epilogue *EpilogueSystem) *InteractionSystem {
	return &InteractionSystem{Hallways: hallways, Doors: doors, Epilogue: epilogue}
}

func RequestInteract(w *ecs.World, target ecs.Entity) {
	if w == nil {
		return
	}
	ent := ecs.CreateEntity(w)
	_ = ecs.Add(w, ent, component.InteractRequestComponent.Kind(), &component.InteractRequest{Target: target})
}

func (s *InteractionSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.InteractRequestComponent.Kind(), func(ent ecs.Entity, req *component.InteractRequest) {
		target := req.Target
		ecs.DestroyEntity(w, ent)
		s.Interact(w, target)
	})
}

// Interact applies one activation. Hidden targets and entry-only doors are
// ignored.
func (s *InteractionSystem) Interact(w *ecs.World, target ecs.Entity) bool {
	if !entity.ActiveInHierarchy(w, target) {
		return false
	}
	if sw, ok := ecs.Get(w, target, component.LightSwitchComponent.Kind()); ok && s.Hallways != nil {
		s.Hallways.ToggleLights(w, sw.Hallway)
		return true
	}
	if d, ok := ecs.Get(w, target, component.DoorComponent.Kind()); ok && s.Doors != nil {
		if d.EntryOnly {
			return false
		}
		return s.Doors.Open(w, target)
	}
	if b, ok := ecs.Get(w, target, component.LiftButtonComponent.Kind()); ok && s.Epilogue != nil {
		return s.Epilogue.Press(w, b.Lift)
	}
	return false
}

// Interactable reports whether e is something the player can activate.
func Interactable(w *ecs.World, e ecs.Entity) bool {
	if ecs.Has(w, e, component.LightSwitchComponent.Kind()) || ecs.Has(w, e, component.LiftButtonComponent.Kind()) {
		return true
	}
	d, ok := ecs.Get(w, e, component.DoorComponent.Kind())
	return ok && !d.EntryOnly
}

// NearestInteractable finds the closest visible interactable within reach
// and within a 60 degree cone in front of the viewer. Only the floor plane
// is considered.
func NearestInteractable(w *ecs.World, from common.Vec3, yaw, reach float64) (ecs.Entity, bool) {
	forward := common.Forward(yaw)
	best := ecs.Entity(0)
	bestDist := math.Inf(1)
	for _, e := range ecs.Entities(w) {
		if !Interactable(w, e) || !entity.ActiveInHierarchy(w, e) {
			continue
		}
		pos, partYaw := entity.WorldPose(w, e)
		if ecs.Has(w, e, component.DoorComponent.Kind()) {
			// Aim at the middle of the leaf, not the hinge.
			if r, ok := ecs.Get(w, e, component.RenderableComponent.Kind()); ok {
				pos = pos.Add(common.V3(r.Size.X/2, 0, 0).RotateYaw(partYaw))
			}
		}
		delta := pos.Sub(from)
		delta.Y = 0
		dist := delta.Len()
		if dist > reach || dist >= bestDist {
			continue
		}
		if dist > 0.01 {
			dot := (delta.X*forward.X + delta.Z*forward.Z) / dist
			if dot < math.Cos(30*math.Pi/180) {
				continue
			}
		}
		best, bestDist = e, dist
	}
	return best, best.Valid()
}
