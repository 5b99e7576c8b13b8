package system

import (
	"math"
	"testing"

	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/ecs/entity"
)

type recordingDoorListener struct {
	opened []bool
	from   []ecs.Entity
}

func (l *recordingDoorListener) DoorOpened(_ *ecs.World, hallway ecs.Entity, lightsOn bool) {
	l.opened = append(l.opened, lightsOn)
	l.from = append(l.from, hallway)
}

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func nearVec(a, b common.Vec3) bool {
	return a.Sub(b).Len() <= 1e-9
}

// doorRig builds one initialized hallway; its end door takes 0.8s per swing.
func doorRig(t *testing.T) (*rig, ecs.Entity, *recordingDoorListener) {
	t.Helper()
	r := newRig(t, nil, 4)
	listener := &recordingDoorListener{}
	r.doors.Listener = listener
	hall, err := entity.BuildHallway(r.w, r.spec, common.Zero3, 0)
	if err != nil {
		t.Fatalf("build hallway: %v", err)
	}
	r.hallways.Initialize(r.w, hall, 1, false)
	return r, hall, listener
}

func TestDoorOpenAndClose(t *testing.T) {
	r, hall, listener := doorRig(t)
	door := r.hallway(hall).EndDoor

	if r.doors.Close(r.w, door) {
		t.Fatalf("close on a closed door should be a no-op")
	}
	if !r.doors.Open(r.w, door) {
		t.Fatalf("open from closed should start")
	}
	if got := r.door(door).State; got != component.DoorOpening {
		t.Fatalf("state = %s, want opening", got)
	}
	if len(listener.opened) != 1 || !listener.opened[0] || listener.from[0] != hall {
		t.Fatalf("listener calls = %v from %v, want one with lights on from %v", listener.opened, listener.from, hall)
	}
	if r.doors.Open(r.w, door) {
		t.Fatalf("open while opening should be a no-op")
	}
	if r.doors.Close(r.w, door) {
		t.Fatalf("close while opening should be a no-op")
	}

	r.step(50)
	d := r.door(door)
	if d.State != component.DoorOpen {
		t.Fatalf("state = %s, want open", d.State)
	}
	tr, _ := ecs.Get(r.w, door, component.TransformComponent.Kind())
	if !near(tr.Rotation.Y, -90, 1e-9) {
		t.Fatalf("open yaw = %v, want -90", tr.Rotation.Y)
	}
	if r.doors.Open(r.w, door) {
		t.Fatalf("open while open should be a no-op")
	}
	if len(listener.opened) != 1 {
		t.Fatalf("listener called %d times, want 1", len(listener.opened))
	}

	if !r.doors.Close(r.w, door) {
		t.Fatalf("close from open should start")
	}
	if r.doors.Close(r.w, door) {
		t.Fatalf("close while closing should be a no-op")
	}
	r.step(50)
	if got := r.door(door).State; got != component.DoorClosed {
		t.Fatalf("state = %s, want closed", got)
	}
	if !near(tr.Rotation.Y, 0, 1e-9) {
		t.Fatalf("closed yaw = %v, want 0", tr.Rotation.Y)
	}
	if r.audio.count("door open") != 1 || r.audio.count("door close") != 1 {
		t.Fatalf("audio calls = %v", r.audio.calls)
	}
}

func TestDoorRejectsOpen(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(d *component.Door)
		useStart  bool
		wantCue   bool
		wantEvent bool
	}{
		{name: "locked", setup: func(d *component.Door) { d.Locked = true }, wantCue: true, wantEvent: true},
		{name: "entry_only", useStart: true},
		{name: "locked_entry_only", setup: func(d *component.Door) { d.Locked = true }, useStart: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, hall, listener := doorRig(t)
			h := r.hallway(hall)
			door := h.EndDoor
			if tc.useStart {
				door = h.StartDoor
			}
			if tc.setup != nil {
				tc.setup(r.door(door))
			}

			if r.doors.Open(r.w, door) {
				t.Fatalf("open should be rejected")
			}
			if got := r.door(door).State; got != component.DoorClosed {
				t.Fatalf("state = %s, want closed", got)
			}
			if len(listener.opened) != 0 {
				t.Fatalf("listener should not be told")
			}
			if got := r.audio.count("door locked") == 1; got != tc.wantCue {
				t.Fatalf("locked cue played = %v, want %v (calls %v)", got, tc.wantCue, r.audio.calls)
			}
			gotEvent := false
			for _, evt := range r.w.Events().Items() {
				if evt.Type == EventDoorLocked && evt.Data == door {
					gotEvent = true
				}
			}
			if gotEvent != tc.wantEvent {
				t.Fatalf("locked event = %v, want %v", gotEvent, tc.wantEvent)
			}
		})
	}
}

func TestDoorForceClose(t *testing.T) {
	r, hall, _ := doorRig(t)
	door := r.hallway(hall).EndDoor

	r.doors.Open(r.w, door)
	r.step(24)
	tr, _ := ecs.Get(r.w, door, component.TransformComponent.Kind())
	mid := tr.Rotation.Y
	if mid >= 0 || mid <= -90 {
		t.Fatalf("door should be mid-swing, yaw = %v", mid)
	}

	r.doors.ForceClose(r.w, door)
	d := r.door(door)
	if d.State != component.DoorClosed {
		t.Fatalf("state = %s, want closed", d.State)
	}
	if Tweening(r.w, door) {
		t.Fatalf("force close should stop the tween")
	}
	if d.ClosedRotation.Y != mid {
		t.Fatalf("closed pose = %v, want current yaw %v", d.ClosedRotation.Y, mid)
	}
	if !near(d.OpenRotation.Y, mid-90, 1e-9) {
		t.Fatalf("open pose = %v, want %v", d.OpenRotation.Y, mid-90)
	}

	r.step(10)
	if tr.Rotation.Y != mid {
		t.Fatalf("door moved after force close: %v", tr.Rotation.Y)
	}
	if !r.doors.Open(r.w, door) {
		t.Fatalf("a force closed door should open again")
	}
}

func TestDoorPassThroughAutoCloses(t *testing.T) {
	t.Run("after_open", func(t *testing.T) {
		r, hall, _ := doorRig(t)
		door := r.hallway(hall).EndDoor
		r.doors.Open(r.w, door)
		r.step(50)

		r.doors.PassedThrough(r.w, door)
		if got := r.door(door).State; got != component.DoorClosing {
			t.Fatalf("state = %s, want closing", got)
		}
		r.doors.PassedThrough(r.w, door)
		if n := r.audio.count("door close"); n != 1 {
			t.Fatalf("door closed %d times, want 1", n)
		}
	})

	t.Run("during_opening", func(t *testing.T) {
		r, hall, _ := doorRig(t)
		door := r.hallway(hall).EndDoor
		r.doors.Open(r.w, door)
		r.step(10)

		r.doors.PassedThrough(r.w, door)
		r.doors.PassedThrough(r.w, door)
		if got := r.door(door).State; got != component.DoorOpening {
			t.Fatalf("state = %s, want opening", got)
		}
		r.step(45)
		if got := r.door(door).State; got != component.DoorClosing {
			t.Fatalf("state = %s, want closing once the swing finished", got)
		}
		r.step(50)
		if got := r.door(door).State; got != component.DoorClosed {
			t.Fatalf("state = %s, want closed", got)
		}
		if n := r.audio.count("door close"); n != 1 {
			t.Fatalf("door closed %d times, want 1", n)
		}
	})

	t.Run("rearmed_by_open", func(t *testing.T) {
		r, hall, _ := doorRig(t)
		door := r.hallway(hall).EndDoor
		for cycle := 0; cycle < 2; cycle++ {
			r.doors.Open(r.w, door)
			r.step(50)
			r.doors.PassedThrough(r.w, door)
			r.step(50)
			if got := r.door(door).State; got != component.DoorClosed {
				t.Fatalf("cycle %d: state = %s, want closed", cycle, got)
			}
		}
		if n := r.audio.count("door close"); n != 2 {
			t.Fatalf("door closed %d times, want 2", n)
		}
	})

	t.Run("closed_door_ignores_pass", func(t *testing.T) {
		r, hall, _ := doorRig(t)
		door := r.hallway(hall).EndDoor
		r.doors.PassedThrough(r.w, door)
		if r.door(door).PassedThrough {
			t.Fatalf("a closed door should not record a pass")
		}
	})
}

func TestDoorCloseWhenOpen(t *testing.T) {
	r, hall, _ := doorRig(t)
	door := r.hallway(hall).EndDoor

	if got := r.doors.CloseWhenOpen(r.w, door); got != 0 {
		t.Fatalf("closed door: got %v, want 0", got)
	}

	r.doors.Open(r.w, door)
	r.step(12)
	got := r.doors.CloseWhenOpen(r.w, door)
	if !near(got, 0.6+0.8, 1e-6) {
		t.Fatalf("opening door: got %v, want 1.4", got)
	}
	if !r.door(door).CloseQueued {
		t.Fatalf("close should be queued")
	}
	r.step(40)
	if st := r.door(door).State; st != component.DoorClosing {
		t.Fatalf("state = %s, want closing", st)
	}
	r.step(50)
	if st := r.door(door).State; st != component.DoorClosed {
		t.Fatalf("state = %s, want closed", st)
	}

	r.doors.Open(r.w, door)
	r.step(50)
	if got := r.doors.CloseWhenOpen(r.w, door); !near(got, 0.8, 1e-9) {
		t.Fatalf("open door: got %v, want 0.8", got)
	}
	if st := r.door(door).State; st != component.DoorClosing {
		t.Fatalf("state = %s, want closing", st)
	}
}

func TestDoorSetStateImmediate(t *testing.T) {
	r, hall, listener := doorRig(t)
	door := r.hallway(hall).EndDoor

	r.doors.SetState(r.w, door, true, true)
	if st := r.door(door).State; st != component.DoorOpen {
		t.Fatalf("state = %s, want open", st)
	}
	tr, _ := ecs.Get(r.w, door, component.TransformComponent.Kind())
	if tr.Rotation.Y != -90 {
		t.Fatalf("yaw = %v, want -90", tr.Rotation.Y)
	}
	if len(r.audio.calls) != 0 || len(listener.opened) != 0 {
		t.Fatalf("immediate set should have no side effects: audio %v listener %v", r.audio.calls, listener.opened)
	}

	r.doors.SetState(r.w, door, false, false)
	if st := r.door(door).State; st != component.DoorClosing {
		t.Fatalf("state = %s, want closing", st)
	}
}
