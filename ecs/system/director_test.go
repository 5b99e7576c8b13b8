package system

import (
	"strings"
	"testing"

	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/ecs/entity"
	"github.com/milk9111/hallways/host"
	"github.com/milk9111/hallways/prefabs"
)

func directorSpec() *prefabs.HallwaySpec {
	return testHallwaySpec(
		prefabs.ChangeSpec{Kind: "position_offset", Target: "bench", Offset: vec(0, 0, 1)},
		prefabs.ChangeSpec{Kind: "visibility_off", Target: "radio"},
	)
}

func lastState(w *ecs.World) (component.DirectorState, bool) {
	items := w.Events().Items()
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Type == EventDirectorState {
			st, ok := items[i].Data.(component.DirectorState)
			return st, ok
		}
	}
	return 0, false
}

// anomalousAtThree plays a six segment run up to index 3, which carries an
// anomaly. Earlier segments are clean.
func anomalousAtThree(t *testing.T) *rig {
	t.Helper()
	r := newRig(t, directorSpec(), 6)
	r.start()
	r.advanceTo(1)
	r.director.Config.AnomalyChance = 1
	r.advanceTo(3)
	h := r.hallway(r.state().Current)
	if h.Index != 3 || !h.HasAnomaly {
		t.Fatalf("setup: index %d anomaly %v, want 3 true", h.Index, h.HasAnomaly)
	}
	if st := r.state(); st.State != component.DirectorPlaying || st.Progress != 3 {
		t.Fatalf("setup: state %s progress %d", st.State, st.Progress)
	}
	return r
}

func TestDirectorStart(t *testing.T) {
	r := newRig(t, directorSpec(), 6)
	if _, err := r.director.Start(r.w); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := r.director.Start(r.w); err == nil {
		t.Fatalf("second start should fail")
	}

	d := r.state()
	if d.State != component.DirectorTransitioning {
		t.Fatalf("state = %s, want transitioning until the first entry", d.State)
	}
	home := r.hallway(d.Current)
	if home.Index != 0 || home.HasAnomaly {
		t.Fatalf("home index %d anomaly %v", home.Index, home.HasAnomaly)
	}
	if pos, _ := entity.WorldPose(r.w, d.Current); pos != common.Zero3 {
		t.Fatalf("home at %v, want origin", pos)
	}

	r.enterCurrent()
	d = r.state()
	if !ecs.IsAlive(r.w, d.CorrectCandidate) || !ecs.IsAlive(r.w, d.ResetCandidate) {
		t.Fatalf("first entry should pre-spawn both candidates")
	}
	if c := r.hallway(d.CorrectCandidate); c.Index != 1 {
		t.Fatalf("correct candidate index = %d, want 1", c.Index)
	}
	if !entity.ActiveInHierarchy(r.w, d.CorrectCandidate) || entity.ActiveInHierarchy(r.w, d.ResetCandidate) {
		t.Fatalf("correct candidate should be shown and the reset candidate hidden")
	}
	want := common.V3(0, 0, r.spec.Length)
	for _, e := range []ecs.Entity{d.CorrectCandidate, d.ResetCandidate} {
		if pos, _ := entity.WorldPose(r.w, e); pos != want {
			t.Fatalf("candidate %v at %v, want %v", e, pos, want)
		}
	}
	h := r.hallway(d.Current)
	if !entity.ActiveSelf(r.w, h.StartDoor) || r.door(h.StartDoor).State != component.DoorClosed {
		t.Fatalf("entered segment should be sealed behind the player")
	}
}

func TestDirectorScenarioCorrectClaimAdvances(t *testing.T) {
	r := anomalousAtThree(t)
	candidate := r.state().CorrectCandidate
	reset := r.state().ResetCandidate

	r.answer(false)
	if st, ok := lastState(r.w); !ok || st != component.DirectorTransitioning {
		t.Fatalf("emitted state = %v, want transitioning", st)
	}
	d := r.state()
	if d.Progress != 4 || d.Current != candidate {
		t.Fatalf("progress %d current %v, want 4 %v", d.Progress, d.Current, candidate)
	}
	if entity.ActiveInHierarchy(r.w, reset) {
		t.Fatalf("reset candidate should stay hidden")
	}

	r.enterCurrent()
	if h := r.hallway(r.state().Current); h.Index != 4 {
		t.Fatalf("current index = %d, want 4", h.Index)
	}
}

func TestDirectorScenarioWrongClaimResets(t *testing.T) {
	r := anomalousAtThree(t)
	d := r.state()
	correct := Owner(r.w, d.CorrectCandidate)
	reset := Owner(r.w, d.ResetCandidate)
	old := d.Current

	r.answer(true)
	if st, ok := lastState(r.w); !ok || st != component.DirectorResetting {
		t.Fatalf("emitted state = %v, want resetting", st)
	}
	d = r.state()
	if d.Progress != 0 {
		t.Fatalf("progress = %d, want 0", d.Progress)
	}
	if OwnerValid(r.w, correct) || OwnerValid(r.w, reset) {
		t.Fatalf("both candidates should be gone")
	}
	if d.CorrectCandidate != 0 || d.ResetCandidate != 0 {
		t.Fatalf("candidates still referenced: %v %v", d.CorrectCandidate, d.ResetCandidate)
	}
	if d.Current == old {
		t.Fatalf("current should be a fresh segment")
	}
	fresh := r.hallway(d.Current)
	if fresh.Index != 0 || fresh.HasAnomaly {
		t.Fatalf("fresh segment index %d anomaly %v", fresh.Index, fresh.HasAnomaly)
	}
	if pos, _ := entity.WorldPose(r.w, d.Current); pos != common.V3(0, 0, 4*r.spec.Length) {
		t.Fatalf("fresh segment at %v", pos)
	}

	abandoned := Owner(r.w, old)
	r.enterCurrent()
	if OwnerValid(r.w, abandoned) {
		t.Fatalf("the abandoned segment should be cleaned up")
	}
	if c := r.hallway(r.state().CorrectCandidate); c.Index != 1 {
		t.Fatalf("next candidate index = %d, want 1", c.Index)
	}
}

func finalSegment(t *testing.T) *rig {
	t.Helper()
	r := newRig(t, directorSpec(), 6)
	r.start()
	r.advanceTo(5)
	d := r.state()
	if !ecs.IsAlive(r.w, d.Lift) {
		t.Fatalf("setup: entering the final segment should spawn the lift")
	}
	if d.CorrectCandidate != 0 {
		t.Fatalf("setup: no progression candidate should follow the final segment")
	}
	if !ecs.IsAlive(r.w, d.ResetCandidate) || entity.ActiveInHierarchy(r.w, d.ResetCandidate) {
		t.Fatalf("setup: the reset candidate should be parked hidden")
	}
	liftPos, _ := entity.WorldPose(r.w, d.Lift)
	resetPos, _ := entity.WorldPose(r.w, d.ResetCandidate)
	if liftPos != resetPos {
		t.Fatalf("setup: reset candidate at %v, lift at %v", resetPos, liftPos)
	}
	if entity.ActiveInHierarchy(r.w, d.Lift) {
		t.Fatalf("setup: lift should stay hidden until the run completes")
	}
	return r
}

func TestDirectorScenarioFinalCorrectCompletes(t *testing.T) {
	r := finalSegment(t)
	reset := r.state().ResetCandidate

	r.answer(true)
	d := r.state()
	if d.State != component.DirectorCompleted {
		t.Fatalf("state = %s, want completed", d.State)
	}
	if !entity.ActiveInHierarchy(r.w, d.Lift) {
		t.Fatalf("lift should be shown")
	}
	if entity.ActiveInHierarchy(r.w, reset) {
		t.Fatalf("reset candidate should be hidden")
	}

	hallways := 0
	ecs.ForEach(r.w, component.HallwayComponent.Kind(), func(e ecs.Entity, _ *component.Hallway) {
		hallways++
	})
	r.step(120)
	after := 0
	ecs.ForEach(r.w, component.HallwayComponent.Kind(), func(e ecs.Entity, _ *component.Hallway) {
		after++
	})
	if after != hallways || r.state().CorrectCandidate != 0 {
		t.Fatalf("no candidates should spawn after completion")
	}

	r.hallways.PlayerEntered(r.w, r.state().Current)
	if r.state().State != component.DirectorCompleted {
		t.Fatalf("completed is terminal")
	}
}

func TestDirectorScenarioFinalWrongResetsAtLift(t *testing.T) {
	r := finalSegment(t)
	lift := r.state().Lift
	liftPos, liftYaw := entity.WorldPose(r.w, lift)

	r.answer(false)
	d := r.state()
	if d.State != component.DirectorResetting {
		t.Fatalf("state = %s, want resetting", d.State)
	}
	if entity.ActiveInHierarchy(r.w, lift) {
		t.Fatalf("lift should be hidden")
	}
	fresh := r.hallway(d.Current)
	if fresh.Index != 0 || d.Progress != 0 {
		t.Fatalf("fresh index %d progress %d", fresh.Index, d.Progress)
	}
	pos, yaw := entity.WorldPose(r.w, d.Current)
	if pos != liftPos || yaw != liftYaw {
		t.Fatalf("fresh segment at %v/%v, want the lift pose %v/%v", pos, yaw, liftPos, liftYaw)
	}
	if entity.ActiveSelf(r.w, fresh.StartDoor) {
		t.Fatalf("start door should be disabled while the segment is the active entry")
	}
	if st := r.door(fresh.EndDoor).State; st != component.DoorClosed {
		t.Fatalf("end door = %s, want closed", st)
	}

	r.enterCurrent()
	if ecs.IsAlive(r.w, lift) {
		t.Fatalf("lift should be destroyed once the reset segment is entered")
	}
	if r.state().Lift != 0 {
		t.Fatalf("director still references the lift")
	}

	r.advanceTo(5)
	if rebuilt := r.state().Lift; !ecs.IsAlive(r.w, rebuilt) || rebuilt == lift {
		t.Fatalf("reaching the final segment again should build a new lift, got %v", rebuilt)
	}
}

func TestDirectorIgnoresDoorOutsidePlaying(t *testing.T) {
	r := newRig(t, directorSpec(), 6)
	if _, err := r.director.Start(r.w); err != nil {
		t.Fatalf("start: %v", err)
	}
	home := r.state().Current
	r.hallways.ToggleLights(r.w, home)
	r.doors.Open(r.w, r.hallway(home).EndDoor)
	if d := r.state(); d.State != component.DirectorTransitioning || d.Progress != 0 {
		t.Fatalf("state %s progress %d, door should be ignored", d.State, d.Progress)
	}
}

func TestDirectorClaimUsesReportedLights(t *testing.T) {
	t.Run("toggled_back_on", func(t *testing.T) {
		r := newRig(t, directorSpec(), 6)
		r.start()
		cur := r.state().Current
		r.hallways.ToggleLights(r.w, cur)
		r.hallways.ToggleLights(r.w, cur)
		r.doors.Open(r.w, r.hallway(cur).EndDoor)
		if d := r.state(); d.State != component.DirectorTransitioning || d.Progress != 1 {
			t.Fatalf("state %s progress %d, want a correct no-anomaly claim", d.State, d.Progress)
		}
	})

	t.Run("report_wins_over_instant", func(t *testing.T) {
		r := newRig(t, directorSpec(), 6)
		r.start()
		cur := r.state().Current
		r.hallways.ToggleLights(r.w, cur)
		r.hallways.SetLights(r.w, cur, true)
		r.doors.Open(r.w, r.hallway(cur).EndDoor)
		if d := r.state(); d.State != component.DirectorResetting {
			t.Fatalf("state = %s, want resetting on the reported lights-off claim", d.State)
		}
	})

	t.Run("first_response_recorded", func(t *testing.T) {
		r := newRig(t, directorSpec(), 6)
		r.start()
		cur := r.state().Current
		r.answer(false)
		h := r.hallway(cur)
		if !h.Responded || !h.PlayerResponse {
			t.Fatalf("responded %v response %v, want true true", h.Responded, h.PlayerResponse)
		}
	})
}

func TestDirectorStaleCleanupIsDropped(t *testing.T) {
	r := newRig(t, directorSpec(), 6)
	if _, err := r.director.Start(r.w); err != nil {
		t.Fatalf("start: %v", err)
	}
	d := r.state()
	home := d.Current
	r.hallways.PlayerEntered(r.w, home)
	if !TaskRunning(r.w, d.Cleanup) {
		t.Fatalf("entry should schedule a cleanup")
	}
	task := d.Cleanup

	r.step(10)
	// Same handle, new lease.
	r.director.Pool.Release(r.w, home)
	if again, err := r.director.Pool.Acquire(r.w, common.Zero3, 0); err != nil || again != home {
		t.Fatalf("pool should hand the same hallway back: %v %v", again, err)
	}
	r.step(120)

	if ecs.IsAlive(r.w, task) {
		t.Fatalf("stale cleanup task should be dropped")
	}
	if d.State != component.DirectorTransitioning {
		t.Fatalf("state = %s, a dropped cleanup must not finish the transition", d.State)
	}
	if d.CorrectCandidate != 0 || d.ResetCandidate != 0 {
		t.Fatalf("a dropped cleanup must not spawn candidates")
	}
}

func TestDirectorRepeatedEntryReplacesCleanup(t *testing.T) {
	r := newRig(t, directorSpec(), 6)
	if _, err := r.director.Start(r.w); err != nil {
		t.Fatalf("start: %v", err)
	}
	home := r.state().Current
	r.director.PlayerEntered(r.w, home)
	first := r.state().Cleanup
	r.step(5)
	r.director.PlayerEntered(r.w, home)
	second := r.state().Cleanup
	if first == second || TaskRunning(r.w, first) {
		t.Fatalf("the first cleanup should be cancelled")
	}

	r.runUntil("playing", 600, func() bool { return r.state().State == component.DirectorPlaying })
	count := 0
	ecs.ForEach(r.w, component.HallwayComponent.Kind(), func(ecs.Entity, *component.Hallway) {
		count++
	})
	if count != 3 {
		t.Fatalf("hallways = %d, want home plus one candidate pair", count)
	}
}

func TestDirectorSettleFollowsDoorDuration(t *testing.T) {
	r := newRig(t, directorSpec(), 6)
	r.start()
	prev := Owner(r.w, r.state().Current)
	r.answer(true)
	// The previous end door is still swinging open, so the seal waits for the
	// rest of the swing plus a full close.
	r.hallways.PlayerEntered(r.w, r.state().Current)
	r.step(80)
	if r.state().State == component.DirectorPlaying {
		t.Fatalf("cleanup finished before the discarded door closed")
	}
	r.runUntil("playing", 60, func() bool { return r.state().State == component.DirectorPlaying })
	if OwnerValid(r.w, prev) {
		t.Fatalf("previous segment should be discarded")
	}
}

func TestDirectorCleanupReusesPool(t *testing.T) {
	r := newRig(t, directorSpec(), 6)
	r.start()
	first := Owner(r.w, r.state().Current)
	r.advanceTo(3)

	count := 0
	ecs.ForEach(r.w, component.HallwayComponent.Kind(), func(ecs.Entity, *component.Hallway) {
		count++
	})
	if want := 3 + r.director.Pool.Parked(); count != want {
		t.Fatalf("hallways = %d, want %d", count, want)
	}
	if OwnerValid(r.w, first) {
		t.Fatalf("the home segment should have been recycled")
	}
	if lt, ok := ecs.Get(r.w, first.Entity, component.LifetimeComponent.Kind()); !ok || lt.Lease <= first.Lease {
		t.Fatalf("recycled home segment should carry a newer lease")
	}
}

func lastAmbienceCall(a *recordingAudio) string {
	for i := len(a.calls) - 1; i >= 0; i-- {
		if strings.HasPrefix(a.calls[i], "ambience ") {
			return a.calls[i]
		}
	}
	return ""
}

func TestDirectorDiscardKeepsEnteredAmbience(t *testing.T) {
	tests := []struct {
		name     string
		change   prefabs.ChangeSpec
		want     component.AmbienceMode
		wantCall string
	}{
		{
			name:     "replace_after_replace",
			change:   prefabs.ChangeSpec{Kind: "ambience_replace"},
			want:     component.AmbienceWeird,
			wantCall: "ambience weird hum",
		},
		{
			name:     "stop_after_stop",
			change:   prefabs.ChangeSpec{Kind: "ambience_stop"},
			want:     component.AmbienceSilent,
			wantCall: "ambience stop",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t, testHallwaySpec(tc.change), 6)
			r.director.Config.AnomalyChance = 1
			r.start()
			r.advanceTo(1)
			if got := CurrentAmbience(r.w); got != tc.want {
				t.Fatalf("segment 1 ambience = %s, want %s", got, tc.want)
			}

			r.advanceTo(2)
			r.step(2)
			if h := r.hallway(r.state().Current); h.Index != 2 || !h.HasAnomaly {
				t.Fatalf("current index %d anomaly %v, want 2 true", h.Index, h.HasAnomaly)
			}
			if got := CurrentAmbience(r.w); got != tc.want {
				t.Fatalf("segment 2 ambience = %s after the discard, want %s", got, tc.want)
			}
			if got := lastAmbienceCall(r.audio); got != tc.wantCall {
				t.Fatalf("last ambience call = %q, want %q (calls %v)", got, tc.wantCall, r.audio.calls)
			}
		})
	}
}

func TestDirectorDiscardRestoresNormalAmbience(t *testing.T) {
	r := newRig(t, testHallwaySpec(prefabs.ChangeSpec{Kind: "ambience_replace"}), 6)
	r.director.Config.AnomalyChance = 1
	r.start()
	r.director.Config.AnomalyChance = 0
	r.advanceTo(1)
	if !r.hallway(r.state().Current).HasAnomaly {
		t.Fatalf("segment 1 should carry the ambience anomaly")
	}

	r.advanceTo(2)
	r.step(2)
	if r.hallway(r.state().Current).HasAnomaly {
		t.Fatalf("segment 2 should be clean")
	}
	if got := CurrentAmbience(r.w); got != component.AmbienceNormal {
		t.Fatalf("ambience = %s in a clean segment, want normal", got)
	}
}

func TestDirectorDiscardKeepsEnteredLoop(t *testing.T) {
	r := newRig(t, testHallwaySpec(prefabs.ChangeSpec{Kind: "sound_loop", Target: "radio", Sound: "drip"}), 6)
	r.director.Config.AnomalyChance = 1
	r.start()
	r.advanceTo(1)

	first, ok := ecs.Get(r.w, r.state().Current, component.AnomalyComponent.Kind())
	if !ok || !first.Playing || first.Sound == 0 {
		t.Fatalf("segment 1 loop is not playing")
	}
	firstSound := host.SoundID(first.Sound)

	r.advanceTo(2)
	r.step(2)
	second, ok := ecs.Get(r.w, r.state().Current, component.AnomalyComponent.Kind())
	if !ok || !second.Playing || second.Sound == 0 {
		t.Fatalf("segment 2 loop is not playing after the discard")
	}
	secondSound := host.SoundID(second.Sound)
	if secondSound == firstSound {
		t.Fatalf("both segments report sound %d", firstSound)
	}

	stopped := map[host.SoundID]bool{}
	for _, id := range r.audio.stopped {
		stopped[id] = true
	}
	if !stopped[firstSound] {
		t.Fatalf("discarded loop %d was not stopped (stopped %v)", firstSound, r.audio.stopped)
	}
	if stopped[secondSound] {
		t.Fatalf("entered loop %d was stopped", secondSound)
	}
}
