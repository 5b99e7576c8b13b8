package system

import (
	"log"

	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/ecs/entity"
)

// HallwayListener receives the upward reports of a hallway.
type HallwayListener interface {
	PlayerEntered(w *ecs.World, hallway ecs.Entity)
	LightsReported(w *ecs.World, hallway ecs.Entity, on bool)
}

// HallwaySystem implements segment setup, the light rig and entry reporting.
type HallwaySystem struct {
	Doors     *DoorSystem
	Anomalies *AnomalySystem
	Listener  HallwayListener
}

func NewHallwaySystem(doors *DoorSystem, anomalies *AnomalySystem) *HallwaySystem {
	return &HallwaySystem{Doors: doors, Anomalies: anomalies}
}

// Initialize sets a hallway up for play: doors closed, start door entry-only,
// at most one anomaly, lights on. Index 0 never carries an anomaly. Calling it
// again with the same arguments does nothing.
func (s *HallwaySystem) Initialize(w *ecs.World, e ecs.Entity, index int, hasAnomaly bool) {
	h, ok := ecs.Get(w, e, component.HallwayComponent.Kind())
	if !ok {
		log.Printf("hallway: initialize %v: not a live hallway", e)
		return
	}
	if index == 0 {
		hasAnomaly = false
	}
	if h.Initialized && h.Index == index && h.HasAnomaly == hasAnomaly {
		return
	}

	for _, door := range []struct {
		e         ecs.Entity
		name      string
		entryOnly bool
	}{
		{h.StartDoor, "start", true},
		{h.EndDoor, "end", false},
	} {
		d, ok := ecs.Get(w, door.e, component.DoorComponent.Kind())
		if !ok {
			log.Printf("hallway: %v has no %s door", e, door.name)
			continue
		}
		if s.Doors != nil {
			s.Doors.ForceClose(w, door.e)
		}
		d.EntryOnly = door.entryOnly
	}

	applied := false
	if s.Anomalies != nil {
		s.Anomalies.RevertChange(w, e)
		if hasAnomaly {
			applied = s.Anomalies.ApplyChange(w, e)
		}
	}
	if hasAnomaly && !applied {
		log.Printf("hallway: %v index %d: no anomaly could be applied, segment is clean", e, index)
	}

	h.Index = index
	h.HasAnomaly = applied
	h.Initialized = true
	h.EntryReported = false
	h.Responded = false
	h.PlayerResponse = false
	s.SetLights(w, e, true)
}

// Renumber moves a hallway to a new position in the chain without touching
// its ground truth.
func (s *HallwaySystem) Renumber(w *ecs.World, e ecs.Entity, index int) {
	if h, ok := ecs.Get(w, e, component.HallwayComponent.Kind()); ok {
		h.Index = index
	}
}

// SetLights switches the light sources and their emissive feedback together.
func (s *HallwaySystem) SetLights(w *ecs.World, e ecs.Entity, on bool) {
	h, ok := ecs.Get(w, e, component.HallwayComponent.Kind())
	if !ok {
		return
	}
	h.LightsOn = on
	for _, l := range h.Lights {
		if light, ok := ecs.Get(w, l, component.LightComponent.Kind()); ok {
			light.On = on
		}
	}
	for _, em := range h.Emissives {
		emissive, ok := ecs.Get(w, em, component.EmissiveComponent.Kind())
		if !ok {
			continue
		}
		emissive.Lit = on
		if r, ok := ecs.Get(w, em, component.RenderableComponent.Kind()); ok {
			if on {
				r.Color = emissive.OnColor
			} else {
				r.Color = emissive.OffColor
			}
		}
	}
}

// ToggleLights flips the rig and reports the new state upward.
func (s *HallwaySystem) ToggleLights(w *ecs.World, e ecs.Entity) bool {
	h, ok := ecs.Get(w, e, component.HallwayComponent.Kind())
	if !ok {
		return false
	}
	on := !h.LightsOn
	s.SetLights(w, e, on)
	if s.Listener != nil {
		s.Listener.LightsReported(w, e, on)
	}
	return on
}

func (s *HallwaySystem) LightsOn(w *ecs.World, e ecs.Entity) bool {
	h, ok := ecs.Get(w, e, component.HallwayComponent.Kind())
	return ok && h.LightsOn
}

// MarkActive hides the start door while the hallway is the active entry, so
// it does not overlap the previous segment's end door.
func (s *HallwaySystem) MarkActive(w *ecs.World, e ecs.Entity, isActiveEntry bool) {
	h, ok := ecs.Get(w, e, component.HallwayComponent.Kind())
	if !ok {
		return
	}
	entity.SetActive(w, h.StartDoor, !isActiveEntry)
	entity.SetActive(w, h.EndDoor, true)
}

// Activate shows a hallway as the next entry and re-arms its entry report.
func (s *HallwaySystem) Activate(w *ecs.World, e ecs.Entity) {
	h, ok := ecs.Get(w, e, component.HallwayComponent.Kind())
	if !ok {
		return
	}
	entity.SetActive(w, e, true)
	s.MarkActive(w, e, true)
	h.EntryReported = false
}

// PlayerEntered forwards the first entry per activation.
func (s *HallwaySystem) PlayerEntered(w *ecs.World, e ecs.Entity) {
	h, ok := ecs.Get(w, e, component.HallwayComponent.Kind())
	if !ok || h.EntryReported {
		return
	}
	if !entity.ActiveInHierarchy(w, e) {
		return
	}
	h.EntryReported = true
	if s.Listener != nil {
		s.Listener.PlayerEntered(w, e)
	}
}
