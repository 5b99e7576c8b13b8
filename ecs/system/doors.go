package system

import (
	"log"

	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/ecs/entity"
	"github.com/milk9111/hallways/host"
)

const EventDoorLocked = "door_locked"

// DoorListener is told when an end door starts opening, with the owning
// hallway's light state at that instant.
type DoorListener interface {
	DoorOpened(w *ecs.World, hallway ecs.Entity, lightsOn bool)
}

// DoorSystem owns the door state machine. Opening and Closing finish when the
// door's rotation tween completes.
type DoorSystem struct {
	Audio    host.Audio
	Listener DoorListener
}

func NewDoorSystem(audio host.Audio) *DoorSystem {
	return &DoorSystem{Audio: audio}
}

func (s *DoorSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.DoorComponent.Kind(), func(e ecs.Entity, d *component.Door) {
		if Tweening(w, e) {
			return
		}
		switch d.State {
		case component.DoorOpening:
			d.State = component.DoorOpen
			if d.CloseQueued || (d.PassedThrough && d.AutoClose) {
				d.CloseQueued = false
				s.Close(w, e)
			}
		case component.DoorClosing:
			d.State = component.DoorClosed
		}
	})
}

// Duration is how long one open or close animation takes.
func DoorDuration(d *component.Door) float64 {
	if d == nil || d.OpenSpeed <= 0 {
		return 0
	}
	return 1 / d.OpenSpeed
}

// Open starts the open animation. It is a no-op unless the door is Closed and
// interactive; locked doors only play the locked cue.
func (s *DoorSystem) Open(w *ecs.World, door ecs.Entity) bool {
	d, ok := ecs.Get(w, door, component.DoorComponent.Kind())
	if !ok {
		return false
	}
	if d.State != component.DoorClosed || d.EntryOnly {
		return false
	}
	pos, _ := entity.WorldPose(w, door)
	if d.Locked {
		if s.Audio != nil {
			s.Audio.PlayDoorLocked(pos)
		}
		w.Events().Push(ecs.Event{Type: EventDoorLocked, Data: door})
		return false
	}

	d.State = component.DoorOpening
	d.PassedThrough = false
	d.CloseQueued = false
	StartTween(w, door, component.TweenRotation, d.OpenRotation, DoorDuration(d), d.Curve)
	if s.Audio != nil {
		s.Audio.PlayDoorOpen(pos)
	}

	if d.Role == component.DoorRoleEnd && s.Listener != nil {
		h, ok := ecs.Get(w, d.Hallway, component.HallwayComponent.Kind())
		if !ok {
			log.Printf("door: %v opened without a live hallway", door)
			return true
		}
		s.Listener.DoorOpened(w, d.Hallway, h.LightsOn)
	}
	return true
}

// Close starts the close animation. It is a no-op unless the door is Open.
func (s *DoorSystem) Close(w *ecs.World, door ecs.Entity) bool {
	d, ok := ecs.Get(w, door, component.DoorComponent.Kind())
	if !ok || d.State != component.DoorOpen {
		return false
	}
	d.State = component.DoorClosing
	StartTween(w, door, component.TweenRotation, d.ClosedRotation, DoorDuration(d), d.Curve)
	if s.Audio != nil {
		pos, _ := entity.WorldPose(w, door)
		s.Audio.PlayDoorClose(pos)
	}
	return true
}

// SetState snaps to the target with no side effects when immediate, and
// otherwise delegates to Open or Close.
func (s *DoorSystem) SetState(w *ecs.World, door ecs.Entity, open, immediate bool) {
	if !immediate {
		if open {
			s.Open(w, door)
		} else {
			s.Close(w, door)
		}
		return
	}
	d, ok := ecs.Get(w, door, component.DoorComponent.Kind())
	if !ok {
		return
	}
	t, ok := ecs.Get(w, door, component.TransformComponent.Kind())
	if !ok {
		return
	}
	StopTween(w, door)
	if open {
		t.Rotation = d.OpenRotation
		d.State = component.DoorOpen
	} else {
		t.Rotation = d.ClosedRotation
		d.State = component.DoorClosed
	}
}

// ForceClose works from any state. The door's current rotation becomes the
// new closed pose and the open pose is recomputed from it.
func (s *DoorSystem) ForceClose(w *ecs.World, door ecs.Entity) {
	d, ok := ecs.Get(w, door, component.DoorComponent.Kind())
	if !ok {
		return
	}
	StopTween(w, door)
	if t, ok := ecs.Get(w, door, component.TransformComponent.Kind()); ok {
		d.ClosedRotation = t.Rotation
	}
	d.OpenRotation = d.ClosedRotation.Add(common.V3(0, -d.OpenAngle, 0))
	d.State = component.DoorClosed
	d.PassedThrough = false
	d.CloseQueued = false
}

// CloseWhenOpen closes an open door, or queues the close for a door that is
// still opening. It returns how long until the door is fully closed.
func (s *DoorSystem) CloseWhenOpen(w *ecs.World, door ecs.Entity) float64 {
	d, ok := ecs.Get(w, door, component.DoorComponent.Kind())
	if !ok {
		return 0
	}
	switch d.State {
	case component.DoorOpen:
		s.Close(w, door)
		return DoorDuration(d)
	case component.DoorOpening:
		d.CloseQueued = true
		return tweenRemaining(w, door) + DoorDuration(d)
	case component.DoorClosing:
		return tweenRemaining(w, door)
	}
	return 0
}

func tweenRemaining(w *ecs.World, e ecs.Entity) float64 {
	tw, ok := ecs.Get(w, e, component.TweenComponent.Kind())
	if !ok || tw.Elapsed >= tw.Duration {
		return 0
	}
	return tw.Duration - tw.Elapsed
}

// PassedThrough handles the pass trigger once per open cycle.
func (s *DoorSystem) PassedThrough(w *ecs.World, door ecs.Entity) {
	d, ok := ecs.Get(w, door, component.DoorComponent.Kind())
	if !ok || d.PassedThrough {
		return
	}
	if d.State != component.DoorOpen && d.State != component.DoorOpening {
		return
	}
	d.PassedThrough = true
	// A pass during Opening closes once the swing finishes.
	if d.AutoClose && d.State == component.DoorOpen {
		s.Close(w, door)
	}
}
