package entity

import (
	"fmt"
	"image/color"
	"log"

	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/prefabs"
)

var (
	defaultDoorColor     = color.NRGBA{R: 107, G: 74, B: 47, A: 255}
	defaultLightOnColor  = color.NRGBA{R: 255, G: 244, B: 214, A: 255}
	defaultLightOffColor = color.NRGBA{R: 58, G: 58, B: 58, A: 255}
)

// BuildHallway instantiates a hallway prefab with its origin at the start
// door. The hallway runs along local +Z for spec.Length.
func BuildHallway(w *ecs.World, spec *prefabs.HallwaySpec, origin common.Vec3, yaw float64) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("entity: hallway: world is nil")
	}
	if spec == nil {
		return 0, fmt.Errorf("entity: hallway: spec is nil")
	}

	root := ecs.CreateEntity(w)
	_ = ecs.Add(w, root, component.TransformComponent.Kind(), &component.Transform{
		Position: origin,
		Rotation: common.V3(0, yaw, 0),
		Scale:    common.One3,
	})
	_ = ecs.Add(w, root, component.NameComponent.Kind(), &component.Name{Value: spec.Name})
	_ = ecs.Add(w, root, component.ActiveComponent.Kind(), &component.Active{Enabled: true})
	_ = ecs.Add(w, root, component.LifetimeComponent.Kind(), &component.Lifetime{Lease: 1})
	_ = ecs.Add(w, root, component.RenderableComponent.Kind(), &component.Renderable{
		Mesh:  "hallway",
		Size:  common.V3(spec.Width, spec.Height, spec.Length),
		Color: color.NRGBA{R: 43, G: 43, B: 48, A: 255},
		Layer: -2,
	})

	hall := &component.Hallway{Length: spec.Length, LightsOn: true}
	hall.StartDoor = buildDoor(w, spec, root, component.DoorRoleStart, 0)
	hall.EndDoor = buildDoor(w, spec, root, component.DoorRoleEnd, spec.Length)

	for _, ls := range spec.Lights {
		light := ecs.CreateEntity(w)
		_ = ecs.Add(w, light, component.TransformComponent.Kind(), &component.Transform{
			Position: ls.Position.Or(common.Zero3),
			Scale:    common.One3,
			Parent:   root,
		})
		_ = ecs.Add(w, light, component.NameComponent.Kind(), &component.Name{Value: ls.Name})
		_ = ecs.Add(w, light, component.LightComponent.Kind(), &component.Light{On: true, Intensity: ls.Intensity})
		hall.Lights = append(hall.Lights, light)

		panel := BuildPart(w, prefabs.PartSpec{
			Name:     ls.Name + "_panel",
			Mesh:     "panel",
			Position: ls.Position,
			Size:     prefabs.Vec3Spec{Vec3: common.V3(0.6, 0.05, 0.6), Set: true},
			Color:    prefabs.YAMLColor{NRGBA: ls.OnColor.Or(defaultLightOnColor), Set: true},
			Layer:    2,
		}, root)
		_ = ecs.Add(w, panel, component.EmissiveComponent.Kind(), &component.Emissive{
			Lit:      true,
			OnColor:  ls.OnColor.Or(defaultLightOnColor),
			OffColor: ls.OffColor.Or(defaultLightOffColor),
		})
		hall.Emissives = append(hall.Emissives, panel)
	}

	for _, ps := range spec.Parts {
		BuildPart(w, ps, root)
	}

	if spec.Switch.Name != "" {
		sw := BuildPart(w, spec.Switch, root)
		_ = ecs.Add(w, sw, component.LightSwitchComponent.Kind(), &component.LightSwitch{Hallway: root})
		_ = ecs.Add(w, sw, component.EmissiveComponent.Kind(), &component.Emissive{
			Lit:      true,
			OnColor:  color.NRGBA{R: 120, G: 220, B: 120, A: 255},
			OffColor: color.NRGBA{R: 200, G: 60, B: 60, A: 255},
		})
		hall.Switch = sw
		hall.Emissives = append(hall.Emissives, sw)
	}

	hall.Entry = ecs.CreateEntity(w)
	_ = ecs.Add(w, hall.Entry, component.TransformComponent.Kind(), &component.Transform{
		Position: spec.Entry.Offset.Or(common.V3(0, 0, 0.8)),
		Scale:    common.One3,
		Parent:   root,
	})
	_ = ecs.Add(w, hall.Entry, component.TriggerComponent.Kind(), &component.Trigger{
		Kind:        component.TriggerHallwayEntry,
		Owner:       root,
		HalfExtents: spec.Entry.HalfExtents.Or(common.V3(spec.Width/2, 1, 0.5)),
	})

	_ = ecs.Add(w, root, component.HallwayComponent.Kind(), hall)
	_ = ecs.Add(w, root, component.AnomalyComponent.Kind(), &component.Anomaly{
		Candidates: buildCandidates(w, spec, root),
	})
	return root, nil
}

func buildDoor(w *ecs.World, spec *prefabs.HallwaySpec, root ecs.Entity, role component.DoorRole, z float64) ecs.Entity {
	size := spec.Door.Size.Or(common.V3(1.2, 2.2, 0.08))
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		Position: common.V3(-size.X/2, 0, z),
		Scale:    common.One3,
		Parent:   root,
	})
	name := "start_door"
	if role == component.DoorRoleEnd {
		name = "end_door"
	}
	_ = ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: name})
	_ = ecs.Add(w, e, component.ActiveComponent.Kind(), &component.Active{Enabled: true})
	_ = ecs.Add(w, e, component.RenderableComponent.Kind(), &component.Renderable{
		Mesh:  "door",
		Size:  size,
		Color: spec.Door.Color.Or(defaultDoorColor),
		Layer: 1,
	})
	curve := common.Curve(spec.Door.Curve)
	if curve == "" {
		curve = common.CurveEaseInOut
	}
	_ = ecs.Add(w, e, component.DoorComponent.Kind(), &component.Door{
		State:          component.DoorClosed,
		Role:           role,
		Locked:         spec.Door.Locked,
		AutoClose:      spec.Door.AutoClose,
		OpenSpeed:      spec.Door.OpenSpeed,
		OpenAngle:      spec.Door.OpenAngle,
		Curve:          curve,
		ClosedRotation: common.Zero3,
		OpenRotation:   common.V3(0, -spec.Door.OpenAngle, 0),
		Hallway:        root,
	})

	if role == component.DoorRoleEnd {
		depth := spec.Door.PassDepth
		if depth <= 0 {
			depth = 0.6
		}
		pass := ecs.CreateEntity(w)
		_ = ecs.Add(w, pass, component.TransformComponent.Kind(), &component.Transform{
			Position: common.V3(0, 0, z+depth),
			Scale:    common.One3,
			Parent:   root,
		})
		_ = ecs.Add(w, pass, component.TriggerComponent.Kind(), &component.Trigger{
			Kind:        component.TriggerDoorPassThrough,
			Owner:       e,
			HalfExtents: common.V3(size.X/2, 1, 0.2),
		})
	}
	return e
}

// buildCandidates resolves anomaly targets by part name. Unresolvable or
// unknown entries stay in the list as nil and are never selected.
func buildCandidates(w *ecs.World, spec *prefabs.HallwaySpec, root ecs.Entity) []*component.Change {
	out := make([]*component.Change, 0, len(spec.Anomalies))
	for i, cs := range spec.Anomalies {
		kind := component.ChangeKind(cs.Kind)
		if !validChangeKind(kind) {
			log.Printf("entity: hallway %s: anomaly %d has unknown kind %q", spec.Name, i, cs.Kind)
			out = append(out, nil)
			continue
		}
		change := &component.Change{
			Kind:       kind,
			Color:      cs.Color.NRGBA,
			Offset:     cs.Offset.Or(common.Zero3),
			Multiplier: cs.Multiplier.Or(common.One3),
			SwapPrefab: cs.Prefab,
			SwapFlip:   cs.Flip,
			Sound:      cs.Sound,
			Volume:     cs.Volume,
		}
		if cs.Target != "" {
			target, ok := FindByName(w, root, cs.Target)
			if !ok {
				log.Printf("entity: hallway %s: anomaly %d target %q not found", spec.Name, i, cs.Target)
				out = append(out, nil)
				continue
			}
			change.Target = target
		} else if needsTarget(kind) {
			log.Printf("entity: hallway %s: anomaly %d (%s) has no target", spec.Name, i, kind)
			out = append(out, nil)
			continue
		}
		out = append(out, change)
	}
	return out
}

func validChangeKind(kind component.ChangeKind) bool {
	switch kind {
	case component.ChangeVisibilityOn, component.ChangeVisibilityOff, component.ChangeColor,
		component.ChangePositionOffset, component.ChangeRotationOffset, component.ChangeScaleMultiplier,
		component.ChangeObjectSwap, component.ChangeSoundOneShot, component.ChangeSoundLoop,
		component.ChangeAmbienceStop, component.ChangeAmbienceReplace:
		return true
	}
	return false
}

func needsTarget(kind component.ChangeKind) bool {
	switch kind {
	case component.ChangeAmbienceStop, component.ChangeAmbienceReplace:
		return false
	}
	return true
}
