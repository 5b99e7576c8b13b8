package system

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/ecs/entity"
	"github.com/milk9111/hallways/prefabs"
)

const (
	EventDirectorState = "director_state"
	EventLiftEntered   = "lift_entered"

	defaultSettleSeconds = 0.6
)

// DirectorConfig is the progression tuning loaded from director.yaml.
type DirectorConfig struct {
	TotalSegments int
	SegmentLength float64
	AnomalyChance float64
	SettleSeconds float64
}

func DirectorConfigFromSpec(spec *prefabs.DirectorSpec) DirectorConfig {
	if spec == nil {
		return DirectorConfig{TotalSegments: 1, SettleSeconds: defaultSettleSeconds}
	}
	return DirectorConfig{
		TotalSegments: spec.TotalSegments,
		SegmentLength: spec.SegmentLength,
		AnomalyChance: spec.AnomalyChance,
		SettleSeconds: spec.SettleSeconds,
	}
}

// DirectorSystem drives hallway progression. All of its state lives on the
// Director component; the system holds configuration and services only.
type DirectorSystem struct {
	Config    DirectorConfig
	Hallways  *HallwaySystem
	Doors     *DoorSystem
	Anomalies *AnomalySystem
	Pool      *entity.HallwayPool
	LiftSpec  *prefabs.LiftSpec
	Chance    *ChanceScript
	Rand      *rand.Rand
}

var (
	_ DoorListener    = (*DirectorSystem)(nil)
	_ HallwayListener = (*DirectorSystem)(nil)
)

// Director returns the director entity and its state.
func Director(w *ecs.World) (ecs.Entity, *component.Director, bool) {
	e, ok := ecs.First(w, component.DirectorComponent.Kind())
	if !ok {
		return 0, nil, false
	}
	d, ok := ecs.Get(w, e, component.DirectorComponent.Kind())
	return e, d, ok
}

// Start spawns the home segment at the origin. The director begins in
// Transitioning so the player's first entry closes the gap behind them and
// pre-spawns the first pair of candidates.
func (s *DirectorSystem) Start(w *ecs.World) (ecs.Entity, error) {
	if _, _, ok := Director(w); ok {
		return 0, fmt.Errorf("director: already started")
	}
	if s.Pool == nil {
		return 0, fmt.Errorf("director: no hallway pool")
	}
	if s.Config.TotalSegments < 1 {
		return 0, fmt.Errorf("director: total segments must be at least 1")
	}

	e := ecs.CreateEntity(w)
	d := &component.Director{
		State:   component.DirectorTransitioning,
		Reports: make(map[ecs.Entity]bool),
	}
	if err := ecs.Add(w, e, component.DirectorComponent.Kind(), d); err != nil {
		return 0, fmt.Errorf("director: %w", err)
	}

	home, err := s.spawnSegment(w, d, common.Zero3, 0, 0, false)
	if err != nil {
		ecs.DestroyEntity(w, e)
		return 0, err
	}
	s.Hallways.Activate(w, home)
	d.Current = home
	d.Chain = []ecs.Entity{home}
	log.Printf("director: started with %d segments", s.Config.TotalSegments)
	s.emitState(w, d)
	return e, nil
}

// DoorOpened evaluates the player's claim for the current segment. It is
// only honoured in Playing.
func (s *DirectorSystem) DoorOpened(w *ecs.World, hallway ecs.Entity, lightsOn bool) {
	_, d, ok := Director(w)
	if !ok {
		return
	}
	if d.State != component.DirectorPlaying {
		log.Printf("director: door of %v opened while %s, ignored", hallway, d.State)
		return
	}
	if hallway != d.Current {
		log.Printf("director: door of %v opened but current is %v, ignored", hallway, d.Current)
		return
	}
	h, ok := ecs.Get(w, hallway, component.HallwayComponent.Kind())
	if !ok {
		log.Printf("director: current segment %v is gone", hallway)
		return
	}

	on := lightsOn
	if reported, ok := d.Reports[hallway]; ok {
		on = reported
	}
	claim := !on
	if !h.Responded {
		h.PlayerResponse = claim
		h.Responded = true
	}
	correct := claim == h.HasAnomaly
	final := h.Index >= s.Config.TotalSegments-1
	log.Printf("director: segment %d claim=%t anomaly=%t correct=%t final=%t", h.Index, claim, h.HasAnomaly, correct, final)

	switch {
	case final && correct:
		s.complete(w, d)
	case final:
		s.resetAtLift(w, d)
	case correct:
		s.advance(w, d)
	default:
		s.reset(w, d)
	}
	s.emitState(w, d)
}

func (s *DirectorSystem) complete(w *ecs.World, d *component.Director) {
	d.State = component.DirectorCompleted
	entity.SetActive(w, d.ResetCandidate, false)
	if !ecs.IsAlive(w, d.Lift) {
		log.Printf("director: completed without a lift")
		return
	}
	entity.SetActive(w, d.Lift, true)
}

// resetAtLift replaces the reset candidate with a fresh home segment in the
// lift's slot and hides the lift.
func (s *DirectorSystem) resetAtLift(w *ecs.World, d *component.Director) {
	d.State = component.DirectorResetting
	s.release(w, d, d.ResetCandidate)
	d.ResetCandidate = 0

	pos, yaw := s.slotAfter(w, d.Current)
	if ecs.IsAlive(w, d.Lift) {
		pos, yaw = entity.WorldPose(w, d.Lift)
		entity.SetActive(w, d.Lift, false)
	} else {
		log.Printf("director: final reset without a lift, using the next slot")
	}
	s.becomeCurrentReset(w, d, pos, yaw)
}

func (s *DirectorSystem) advance(w *ecs.World, d *component.Director) {
	candidate := d.CorrectCandidate
	if !ecs.IsAlive(w, candidate) {
		log.Printf("director: correct candidate missing, resetting instead")
		s.reset(w, d)
		return
	}
	d.State = component.DirectorTransitioning
	entity.SetActive(w, d.ResetCandidate, false)
	s.Hallways.Activate(w, candidate)
	d.Progress++
	s.Hallways.Renumber(w, candidate, d.Progress)
	d.Current = candidate
	d.CorrectCandidate = 0
	d.Chain = append(d.Chain, candidate)
}

func (s *DirectorSystem) reset(w *ecs.World, d *component.Director) {
	d.State = component.DirectorResetting
	pos, yaw := s.slotAfter(w, d.Current)
	s.release(w, d, d.CorrectCandidate)
	d.CorrectCandidate = 0
	s.release(w, d, d.ResetCandidate)
	d.ResetCandidate = 0
	s.becomeCurrentReset(w, d, pos, yaw)
}

func (s *DirectorSystem) becomeCurrentReset(w *ecs.World, d *component.Director, pos common.Vec3, yaw float64) {
	fresh, err := s.spawnSegment(w, d, pos, yaw, 0, false)
	if err != nil {
		log.Printf("director: spawn reset segment: %v", err)
		return
	}
	s.Hallways.Activate(w, fresh)
	d.Progress = 0
	d.Current = fresh
	d.Chain = append(d.Chain, fresh)
}

// PlayerEntered runs when the player crosses into a hallway.
func (s *DirectorSystem) PlayerEntered(w *ecs.World, hallway ecs.Entity) {
	dirEnt, d, ok := Director(w)
	if !ok {
		return
	}
	RequestAmbience(w, component.AmbienceNormal, "")

	h, ok := ecs.Get(w, hallway, component.HallwayComponent.Kind())
	if !ok {
		return
	}
	if hallway != d.Current {
		log.Printf("director: entered %v (index %d) which is not current, ignored", hallway, h.Index)
		return
	}
	final := h.Index >= s.Config.TotalSegments-1
	if final && !ecs.IsAlive(w, d.Lift) {
		s.spawnLift(w, d, hallway)
	}

	switch d.State {
	case component.DirectorTransitioning, component.DirectorResetting:
		if TaskRunning(w, d.Cleanup) {
			log.Printf("director: cleanup already running, replacing it")
			CancelTask(w, d.Cleanup)
		}
		d.Cleanup = s.scheduleCleanup(w, dirEnt, d, hallway, final)
	default:
		log.Printf("director: entered segment %d while %s", h.Index, d.State)
	}

	if s.Anomalies != nil {
		s.Anomalies.Activate(w, hallway)
	}
}

// LightsReported records the light state a hallway reported upward.
func (s *DirectorSystem) LightsReported(w *ecs.World, hallway ecs.Entity, on bool) {
	_, d, ok := Director(w)
	if !ok {
		return
	}
	if d.Reports == nil {
		d.Reports = make(map[ecs.Entity]bool)
	}
	d.Reports[hallway] = on
}

// spawnLift places the lift one slot past the final segment and moves the
// reset candidate into the same slot, hidden.
func (s *DirectorSystem) spawnLift(w *ecs.World, d *component.Director, final ecs.Entity) {
	if s.LiftSpec == nil {
		log.Printf("director: no lift prefab configured")
		return
	}
	pos, yaw := s.slotAfter(w, final)
	lift, err := entity.BuildLift(w, s.LiftSpec, pos, yaw)
	if err != nil {
		log.Printf("director: spawn lift: %v", err)
		return
	}
	d.Lift = lift

	s.release(w, d, d.ResetCandidate)
	d.ResetCandidate = 0
	reset, err := s.spawnSegment(w, d, pos, yaw, 0, false)
	if err != nil {
		log.Printf("director: respawn reset candidate at lift: %v", err)
		return
	}
	entity.SetActive(w, reset, false)
	d.ResetCandidate = reset
}

// scheduleCleanup discards stale segments behind the player, seals the
// entered segment and pre-spawns the next pair. The discarded end doors are
// closed right away; the settle window is however long the slowest of them
// still needs. The task is bound to the entered segment and the director and
// every step re-checks what it touches.
func (s *DirectorSystem) scheduleCleanup(w *ecs.World, dirEnt ecs.Entity, d *component.Director, entered ecs.Entity, final bool) ecs.Entity {
	discard := s.discardSet(w, d, entered, final)

	settle := 0.0
	measured := false
	for _, o := range discard {
		h, ok := ecs.Get(w, o.Entity, component.HallwayComponent.Kind())
		if !ok {
			continue
		}
		door, ok := ecs.Get(w, h.EndDoor, component.DoorComponent.Kind())
		if !ok || DoorDuration(door) <= 0 {
			continue
		}
		measured = true
		if t := s.Doors.CloseWhenOpen(w, h.EndDoor); t > settle {
			settle = t
		}
	}
	if !measured {
		settle = s.settleFallback()
	}

	owners := []component.TaskOwner{Owner(w, entered), Owner(w, dirEnt)}
	return Schedule(w, "cleanup", owners,
		component.TaskStep{Name: "seal entry", Wait: settle, Do: func(w *ecs.World) {
			h, ok := ecs.Get(w, entered, component.HallwayComponent.Kind())
			if !ok {
				return
			}
			entity.SetActive(w, h.StartDoor, true)
			s.Doors.ForceClose(w, h.StartDoor)
		}},
		component.TaskStep{Name: "discard", Do: func(w *ecs.World) {
			_, d, ok := Director(w)
			if !ok {
				return
			}
			for _, o := range discard {
				if !OwnerValid(w, o) {
					continue
				}
				if o.Entity == d.Lift {
					entity.DestroyTree(w, d.Lift)
					d.Lift = 0
					continue
				}
				s.release(w, d, o.Entity)
			}
			d.Chain = []ecs.Entity{entered}
		}},
		component.TaskStep{Name: "spawn next", Do: func(w *ecs.World) {
			_, d, ok := Director(w)
			if !ok || final {
				return
			}
			s.spawnPair(w, d, entered)
		}},
		component.TaskStep{Name: "playing", Do: func(w *ecs.World) {
			_, d, ok := Director(w)
			if !ok {
				return
			}
			d.State = component.DirectorPlaying
			d.Cleanup = 0
			s.emitState(w, d)
		}},
	)
}

// discardSet lists what the cleanup removes: every earlier segment in the
// chain, the candidate that was not chosen, and the lift when the player
// walked into a reset segment. The reset candidate parked in the lift slot
// survives entry into the final segment.
func (s *DirectorSystem) discardSet(w *ecs.World, d *component.Director, entered ecs.Entity, final bool) []component.TaskOwner {
	seen := map[ecs.Entity]bool{entered: true}
	var out []component.TaskOwner
	add := func(e ecs.Entity) {
		if seen[e] || !ecs.IsAlive(w, e) {
			return
		}
		seen[e] = true
		out = append(out, Owner(w, e))
	}

	for _, e := range d.Chain {
		add(e)
	}
	add(d.CorrectCandidate)
	if !final {
		add(d.ResetCandidate)
	}
	// The lift is destroyed here and rebuilt the next time the player reaches the final segment.
	if d.State == component.DirectorResetting {
		add(d.Lift)
	}
	return out
}

// spawnPair pre-spawns both outcomes of the next decision one slot ahead:
// the progression candidate shown, the reset candidate hidden.
func (s *DirectorSystem) spawnPair(w *ecs.World, d *component.Director, from ecs.Entity) {
	h, ok := ecs.Get(w, from, component.HallwayComponent.Kind())
	if !ok {
		log.Printf("director: cannot spawn next pair, %v is gone", from)
		return
	}
	pos, yaw := s.slotAfter(w, from)
	next := h.Index + 1
	hasAnomaly := s.roll(next)

	correct, err := s.spawnSegment(w, d, pos, yaw, next, hasAnomaly)
	if err != nil {
		log.Printf("director: spawn candidate %d: %v", next, err)
	} else {
		s.Hallways.Activate(w, correct)
		d.CorrectCandidate = correct
	}

	reset, err := s.spawnSegment(w, d, pos, yaw, 0, false)
	if err != nil {
		log.Printf("director: spawn reset candidate: %v", err)
		return
	}
	entity.SetActive(w, reset, false)
	d.ResetCandidate = reset
}

func (s *DirectorSystem) spawnSegment(w *ecs.World, d *component.Director, pos common.Vec3, yaw float64, index int, hasAnomaly bool) (ecs.Entity, error) {
	e, err := s.Pool.Acquire(w, pos, yaw)
	if err != nil {
		return 0, fmt.Errorf("director: spawn segment %d: %w", index, err)
	}
	s.Hallways.Initialize(w, e, index, hasAnomaly)
	delete(d.Reports, e)
	return e, nil
}

// release hands a segment back to the pool after undoing everything that
// could outlive it: tasks, anomaly, door poses.
func (s *DirectorSystem) release(w *ecs.World, d *component.Director, e ecs.Entity) {
	if !ecs.IsAlive(w, e) {
		return
	}
	CancelTasksOwnedBy(w, e)
	if s.Anomalies != nil {
		s.Anomalies.RevertChange(w, e)
	}
	if h, ok := ecs.Get(w, e, component.HallwayComponent.Kind()); ok {
		s.Doors.SetState(w, h.StartDoor, false, true)
		s.Doors.SetState(w, h.EndDoor, false, true)
	}
	delete(d.Reports, e)
	if d.ResetCandidate == e {
		d.ResetCandidate = 0
	}
	if d.CorrectCandidate == e {
		d.CorrectCandidate = 0
	}
	s.Pool.Release(w, e)
}

func (s *DirectorSystem) slotAfter(w *ecs.World, e ecs.Entity) (common.Vec3, float64) {
	pos, yaw := entity.WorldPose(w, e)
	length := s.Config.SegmentLength
	if h, ok := ecs.Get(w, e, component.HallwayComponent.Kind()); ok && length <= 0 {
		length = h.Length
	}
	return pos.Add(common.Forward(yaw).Scale(length)), yaw
}

func (s *DirectorSystem) roll(index int) bool {
	chance := s.Config.AnomalyChance
	if s.Chance != nil {
		c, err := s.Chance.Chance(index, s.Config.TotalSegments, chance)
		if err != nil {
			log.Printf("director: %v", err)
		} else {
			chance = c
		}
	}
	if s.Rand == nil {
		return rand.Float64() < chance
	}
	return s.Rand.Float64() < chance
}

func (s *DirectorSystem) settleFallback() float64 {
	if s.Config.SettleSeconds > 0 {
		return s.Config.SettleSeconds
	}
	return defaultSettleSeconds
}

func (s *DirectorSystem) emitState(w *ecs.World, d *component.Director) {
	w.Events().Push(ecs.Event{Type: EventDirectorState, Data: d.State})
}
