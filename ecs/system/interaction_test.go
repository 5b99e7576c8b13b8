package system

import (
	"testing"

	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/ecs/entity"
)

func interactionRig(t *testing.T) (*rig, ecs.Entity) {
	t.Helper()
	r := newRig(t, nil, 4)
	r.doors.Listener = &recordingDoorListener{}
	hall, err := entity.BuildHallway(r.w, r.spec, common.Zero3, 0)
	if err != nil {
		t.Fatalf("build hallway: %v", err)
	}
	r.hallways.Initialize(r.w, hall, 1, false)
	return r, hall
}

func TestInteractRequests(t *testing.T) {
	r, hall := interactionRig(t)
	h := r.hallway(hall)

	RequestInteract(r.w, h.Switch)
	RequestInteract(r.w, h.StartDoor)
	r.step(1)
	if h.LightsOn {
		t.Fatalf("switch should turn the lights off")
	}
	if st := r.door(h.StartDoor).State; st != component.DoorClosed {
		t.Fatalf("entry only door = %s, want closed", st)
	}
	if n := len(ecs.Query(r.w, component.InteractRequestComponent.Kind())); n != 0 {
		t.Fatalf("%d requests left behind", n)
	}

	RequestInteract(r.w, h.EndDoor)
	r.step(1)
	if st := r.door(h.EndDoor).State; st != component.DoorOpening {
		t.Fatalf("end door = %s, want opening", st)
	}

	RequestInteract(r.w, h.Switch)
	entity.SetActive(r.w, h.Switch, false)
	r.step(1)
	if h.LightsOn {
		t.Fatalf("hidden switch should be ignored")
	}
}

func TestInteractLiftButton(t *testing.T) {
	r, lift := liftRig(t, true)
	l, _ := ecs.Get(r.w, lift, component.LiftComponent.Kind())
	RequestInteract(r.w, l.Button)
	r.step(1)
	ep, _ := ecs.Get(r.w, lift, component.EpilogueComponent.Kind())
	if !ep.Started {
		t.Fatalf("button should start the epilogue")
	}
}

func TestNearestInteractable(t *testing.T) {
	r, hall := interactionRig(t)
	h := r.hallway(hall)

	tests := []struct {
		name   string
		from   common.Vec3
		yaw    float64
		want   ecs.Entity
		wantOK bool
	}{
		{name: "facing_end_door", from: common.V3(0, 0, 8.5), yaw: 0, want: h.EndDoor, wantOK: true},
		{name: "facing_switch", from: common.V3(0, 0, 9), yaw: 90, want: h.Switch, wantOK: true},
		{name: "facing_away", from: common.V3(0, 0, 8.5), yaw: 180},
		{name: "out_of_reach", from: common.V3(0, 0, 4), yaw: 0},
		{name: "start_door_not_interactable", from: common.V3(0, 0, 1), yaw: 180},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NearestInteractable(r.w, tc.from, tc.yaw, 1.8)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("got %v %v, want %v %v", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}
