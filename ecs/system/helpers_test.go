package system

import (
	"fmt"
	"image/color"
	"math/rand"
	"testing"

	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/ecs/entity"
	"github.com/milk9111/hallways/host"
	"github.com/milk9111/hallways/prefabs"
)

const frame = 1.0 / 60.0

type recordingAudio struct {
	calls   []string
	next    host.SoundID
	stopped []host.SoundID
}

func (a *recordingAudio) record(format string, args ...any) {
	a.calls = append(a.calls, fmt.Sprintf(format, args...))
}

func (a *recordingAudio) PlayNormalAmbience()               { a.record("ambience normal") }
func (a *recordingAudio) PlayWeirdAmbienceLooping(l string) { a.record("ambience weird %s", l) }
func (a *recordingAudio) ReplaceAmbience(t string)          { a.record("ambience replace %s", t) }
func (a *recordingAudio) StopAmbience()                     { a.record("ambience stop") }
func (a *recordingAudio) PlayFootstep()                     { a.record("footstep") }
func (a *recordingAudio) PlayDoorOpen(common.Vec3)          { a.record("door open") }
func (a *recordingAudio) PlayDoorClose(common.Vec3)         { a.record("door close") }
func (a *recordingAudio) PlayDoorLocked(common.Vec3)        { a.record("door locked") }

func (a *recordingAudio) PlayAt(sound string, _ common.Vec3, loop bool, _ float64) host.SoundID {
	a.next++
	a.record("play %s loop=%t", sound, loop)
	return a.next
}

func (a *recordingAudio) Stop(id host.SoundID) {
	a.stopped = append(a.stopped, id)
	a.record("stop %d", id)
}

func (a *recordingAudio) count(call string) int {
	n := 0
	for _, c := range a.calls {
		if c == call {
			n++
		}
	}
	return n
}

type recordingPresenter struct {
	calls []string
}

func (p *recordingPresenter) FadeToBlack(seconds float64, curve common.Curve) {
	p.calls = append(p.calls, fmt.Sprintf("fade %.1f %s", seconds, curve))
}
func (p *recordingPresenter) ShowCredits() { p.calls = append(p.calls, "show credits") }
func (p *recordingPresenter) ScrollCredits(s float64) {
	p.calls = append(p.calls, fmt.Sprintf("scroll %.1f", s))
}
func (p *recordingPresenter) ReloadScene() { p.calls = append(p.calls, "reload") }

func vec(x, y, z float64) prefabs.Vec3Spec {
	return prefabs.Vec3Spec{Vec3: common.V3(x, y, z), Set: true}
}

func hex(c color.NRGBA) prefabs.YAMLColor {
	return prefabs.YAMLColor{NRGBA: c, Set: true}
}

// testHallwaySpec is a small hallway with one part per interesting anomaly
// target. anomalies replaces the candidate list.
func testHallwaySpec(anomalies ...prefabs.ChangeSpec) *prefabs.HallwaySpec {
	return &prefabs.HallwaySpec{
		Name:   "test_hallway",
		Length: 10,
		Width:  3,
		Height: 3,
		Door: prefabs.DoorSpec{
			OpenSpeed: 1.25,
			OpenAngle: 90,
			Curve:     "linear",
			AutoClose: true,
			Size:      vec(1.2, 2.2, 0.1),
		},
		Lights: []prefabs.LightSpec{
			{Name: "light_a", Position: vec(0, 2.9, 3), Intensity: 1},
			{Name: "light_b", Position: vec(0, 2.9, 7), Intensity: 1},
		},
		Switch: prefabs.PartSpec{Name: "switch", Mesh: "box", Position: vec(1.4, 1.2, 9), Size: vec(0.1, 0.1, 0.1)},
		Parts: []prefabs.PartSpec{
			{Name: "bench", Mesh: "box", Position: vec(-1, 0, 4), Rotation: vec(0, 15, 0), Scale: vec(1, 1, 2), Color: hex(color.NRGBA{R: 90, G: 60, B: 30, A: 255})},
			{Name: "ghost", Mesh: "capsule", Position: vec(0, 0, 6), Hidden: true},
			{Name: "radio", Mesh: "box", Position: vec(1, 0, 5)},
		},
		Swaps: map[string]prefabs.PartSpec{
			"bench_alt": {Name: "bench_alt", Mesh: "box", Size: vec(1, 1, 1)},
		},
		Anomalies: anomalies,
		Entry:     prefabs.TriggerSpec{Offset: vec(0, 0, 0.8), HalfExtents: vec(1.4, 1, 0.5)},
	}
}

// rig wires the systems the way the game does, minus triggers.
type rig struct {
	t         *testing.T
	w         *ecs.World
	audio     *recordingAudio
	presenter *recordingPresenter
	doors     *DoorSystem
	hallways  *HallwaySystem
	anomalies *AnomalySystem
	director  *DirectorSystem
	epilogue  *EpilogueSystem
	spec      *prefabs.HallwaySpec
}

func newRig(t *testing.T, spec *prefabs.HallwaySpec, total int) *rig {
	t.Helper()
	if spec == nil {
		spec = testHallwaySpec()
	}
	r := &rig{
		t:         t,
		w:         ecs.NewWorld(),
		audio:     &recordingAudio{},
		presenter: &recordingPresenter{},
		spec:      spec,
	}
	rng := rand.New(rand.NewSource(1))
	r.doors = NewDoorSystem(r.audio)
	r.anomalies = NewAnomalySystem(r.audio, rng, spec.Swaps)
	r.anomalies.WeirdLoop = "hum"
	r.hallways = NewHallwaySystem(r.doors, r.anomalies)
	r.director = &DirectorSystem{
		Config: DirectorConfig{
			TotalSegments: total,
			SegmentLength: spec.Length,
			SettleSeconds: 0.6,
		},
		Hallways:  r.hallways,
		Doors:     r.doors,
		Anomalies: r.anomalies,
		Pool:      entity.NewHallwayPool(spec, 3),
		LiftSpec:  testLiftSpec(),
		Rand:      rng,
	}
	r.doors.Listener = r.director
	r.hallways.Listener = r.director
	r.epilogue = NewEpilogueSystem(r.presenter, testLiftSpec())

	r.w.AddSystem(NewInteractionSystem(r.hallways, r.doors, r.epilogue))
	r.w.AddSystem(NewTweenSystem())
	r.w.AddSystem(r.doors)
	r.w.AddSystem(NewTaskSystem())
	r.w.AddSystem(NewAmbienceSystem(r.audio))
	return r
}

func testLiftSpec() *prefabs.LiftSpec {
	return &prefabs.LiftSpec{
		Name:               "lift",
		Size:               vec(3, 3, 3),
		Button:             prefabs.PartSpec{Name: "button", Mesh: "box", Position: vec(1.4, 1.2, 1.5)},
		ButtonPush:         vec(-0.05, 0, 0),
		LeftDoor:           prefabs.PartSpec{Name: "left", Mesh: "box", Position: vec(-0.6, 0, 0.1)},
		RightDoor:          prefabs.PartSpec{Name: "right", Mesh: "box", Position: vec(0.6, 0, 0.1)},
		DoorTravel:         1.2,
		ButtonPressSeconds: 0.2,
		ButtonDelay:        0.5,
		DoorCloseSeconds:   1,
		PostCloseDelay:     0.5,
		FadeSeconds:        1,
		FadeCurve:          "ease_in",
		CreditsSeconds:     2,
	}
}

// step advances n frames.
func (r *rig) step(n int) {
	for i := 0; i < n; i++ {
		r.w.Advance(frame)
	}
}

// runUntil advances until cond holds, failing after maxFrames.
func (r *rig) runUntil(what string, maxFrames int, cond func() bool) {
	r.t.Helper()
	for i := 0; i < maxFrames; i++ {
		if cond() {
			return
		}
		r.w.Advance(frame)
	}
	if !cond() {
		r.t.Fatalf("%s: not reached after %d frames", what, maxFrames)
	}
}

func (r *rig) state() *component.Director {
	r.t.Helper()
	_, d, ok := Director(r.w)
	if !ok {
		r.t.Fatalf("no director")
	}
	return d
}

func (r *rig) hallway(e ecs.Entity) *component.Hallway {
	r.t.Helper()
	h, ok := ecs.Get(r.w, e, component.HallwayComponent.Kind())
	if !ok {
		r.t.Fatalf("%v is not a live hallway", e)
	}
	return h
}

func (r *rig) door(e ecs.Entity) *component.Door {
	r.t.Helper()
	d, ok := ecs.Get(r.w, e, component.DoorComponent.Kind())
	if !ok {
		r.t.Fatalf("%v is not a door", e)
	}
	return d
}

// start begins a run and enters the home segment.
func (r *rig) start() {
	r.t.Helper()
	if _, err := r.director.Start(r.w); err != nil {
		r.t.Fatalf("start: %v", err)
	}
	r.enterCurrent()
}

// enterCurrent reports the player inside the current segment and lets the
// cleanup finish.
func (r *rig) enterCurrent() {
	r.t.Helper()
	r.hallways.PlayerEntered(r.w, r.state().Current)
	r.runUntil("playing", 600, func() bool { return r.state().State == component.DirectorPlaying })
}

// answer opens the current end door with the lights as given.
func (r *rig) answer(lightsOn bool) {
	r.t.Helper()
	cur := r.state().Current
	if r.hallways.LightsOn(r.w, cur) != lightsOn {
		r.hallways.ToggleLights(r.w, cur)
	}
	if !r.doors.Open(r.w, r.hallway(cur).EndDoor) {
		r.t.Fatalf("end door of %v did not open", cur)
	}
}

// advanceTo plays correct answers until the current segment has index.
func (r *rig) advanceTo(index int) {
	r.t.Helper()
	for r.hallway(r.state().Current).Index < index {
		h := r.hallway(r.state().Current)
		r.answer(!h.HasAnomaly)
		if r.state().State != component.DirectorTransitioning {
			r.t.Fatalf("correct answer at %d gave %s", h.Index, r.state().State)
		}
		r.enterCurrent()
	}
}
