// Package game wires the hallway core into a world and owns the session
// lifecycle. Hosts drive it with Update and feed it input; everything else
// happens inside the ECS.
package game

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"
	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/ecs/entity"
	"github.com/milk9111/hallways/ecs/system"
	"github.com/milk9111/hallways/host"
	"github.com/milk9111/hallways/prefabs"
)

type Options struct {
	// Director is the director prefab; empty means director.yaml.
	Director string
	// Segments overrides total_segments when positive.
	Segments int
	// Seed seeds anomaly selection; zero picks a random seed.
	Seed      int64
	Audio     host.Audio
	Presenter host.Presenter
}

type Game struct {
	World   *ecs.World
	Session uuid.UUID
	Player  ecs.Entity

	Doors       *system.DoorSystem
	Hallways    *system.HallwaySystem
	Anomalies   *system.AnomalySystem
	Director    *system.DirectorSystem
	Epilogue    *system.EpilogueSystem
	Interaction *system.InteractionSystem
	Triggers    *system.TriggerSystem
	Collision   *system.CollisionSystem

	opts       Options
	playerSpec *prefabs.PlayerSpec
	walked     float64
}

func New(opts Options) (*Game, error) {
	if opts.Audio == nil {
		opts.Audio = host.Nop{}
	}
	if opts.Presenter == nil {
		opts.Presenter = host.Nop{}
	}
	g := &Game{opts: opts}
	if err := g.build(); err != nil {
		return nil, err
	}
	return g, nil
}

// Reload tears the scene down and builds a fresh one from the prefabs on
// disk, under a new session id.
func (g *Game) Reload() error {
	return g.build()
}

func (g *Game) build() error {
	dirSpec, err := prefabs.LoadDirectorSpec(g.opts.Director)
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if g.opts.Segments > 0 {
		dirSpec.TotalSegments = g.opts.Segments
	}
	hallSpec, err := prefabs.LoadHallwaySpec(dirSpec.Hallway)
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}
	playerSpec, err := prefabs.LoadPlayerSpec(dirSpec.Player)
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}
	var liftSpec *prefabs.LiftSpec
	if dirSpec.Lift != "" {
		liftSpec, err = prefabs.LoadLiftSpec(dirSpec.Lift)
		if err != nil {
			log.Printf("game: lift prefab unavailable, the run cannot complete: %v", err)
			liftSpec = nil
		}
	}
	var chance *system.ChanceScript
	if dirSpec.ChanceScript != "" {
		chance, err = system.LoadChanceScript(dirSpec.ChanceScript)
		if err != nil {
			log.Printf("game: %v; using anomaly_chance %.2f", err, dirSpec.AnomalyChance)
			chance = nil
		}
	}

	seed := g.opts.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	w := ecs.NewWorld()
	doors := system.NewDoorSystem(g.opts.Audio)
	anomalies := system.NewAnomalySystem(g.opts.Audio, rng, hallSpec.Swaps)
	anomalies.WeirdLoop = dirSpec.WeirdLoop
	hallways := system.NewHallwaySystem(doors, anomalies)
	director := &system.DirectorSystem{
		Config:    system.DirectorConfigFromSpec(dirSpec),
		Hallways:  hallways,
		Doors:     doors,
		Anomalies: anomalies,
		Pool:      entity.NewHallwayPool(hallSpec, dirSpec.PoolSize),
		LiftSpec:  liftSpec,
		Chance:    chance,
		Rand:      rng,
	}
	doors.Listener = director
	hallways.Listener = director
	epilogue := system.NewEpilogueSystem(g.opts.Presenter, liftSpec)
	interaction := system.NewInteractionSystem(hallways, doors, epilogue)
	triggers := system.NewTriggerSystem(hallways, doors)
	collision := system.NewCollisionSystem()

	w.AddSystem(interaction)
	w.AddSystem(system.NewTweenSystem())
	w.AddSystem(doors)
	w.AddSystem(triggers)
	w.AddSystem(collision)
	w.AddSystem(system.NewTaskSystem())
	w.AddSystem(system.NewAmbienceSystem(g.opts.Audio))

	player, err := entity.BuildPlayer(w, playerSpec)
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if _, err := director.Start(w); err != nil {
		return fmt.Errorf("game: %w", err)
	}

	g.World = w
	g.Player = player
	g.playerSpec = playerSpec
	g.Doors = doors
	g.Hallways = hallways
	g.Anomalies = anomalies
	g.Director = director
	g.Epilogue = epilogue
	g.Interaction = interaction
	g.Triggers = triggers
	g.Collision = collision
	g.Session = uuid.New()

	g.opts.Audio.PlayNormalAmbience()
	log.Printf("game: session %s started (seed %d, %d segments)", g.Session, seed, dirSpec.TotalSegments)
	return nil
}

// Update advances the simulation by dt seconds.
func (g *Game) Update(dt float64) {
	if g == nil || g.World == nil {
		return
	}
	g.World.Advance(dt)
}

// Events returns what happened during the last update.
func (g *Game) Events() []ecs.Event {
	if g == nil || g.World == nil {
		return nil
	}
	return g.World.Events().Items()
}

func (g *Game) PlayerSpec() *prefabs.PlayerSpec {
	return g.playerSpec
}

// PlayerPose returns the player root's position and yaw.
func (g *Game) PlayerPose() (common.Vec3, float64) {
	return entity.WorldPose(g.World, g.Player)
}

func (g *Game) MovePlayer(pos common.Vec3, yaw float64) {
	entity.MovePlayer(g.World, g.Player, pos, yaw)
}

// Interact queues an activation of the closest interactable in front of the
// player. It reports what was targeted.
func (g *Game) Interact() (ecs.Entity, bool) {
	pos, yaw := g.PlayerPose()
	reach := 1.8
	if g.playerSpec != nil && g.playerSpec.ReachDistance > 0 {
		reach = g.playerSpec.ReachDistance
	}
	target, ok := system.NearestInteractable(g.World, pos, yaw, reach)
	if !ok {
		return 0, false
	}
	system.RequestInteract(g.World, target)
	return target, true
}

// InteractWith queues an activation of a specific target.
func (g *Game) InteractWith(target ecs.Entity) {
	system.RequestInteract(g.World, target)
}

// Status is a read-only summary for hosts.
type Status struct {
	Session  string
	State    component.DirectorState
	Progress int
	Total    int
	Current  ecs.Entity
	Index    int
	LightsOn bool
	Lift     ecs.Entity
	Epilogue component.EpiloguePhase
	Ambience component.AmbienceMode
	// InEntry is set while the player overlaps the current entry volume.
	InEntry bool
	// Parked counts pooled hallways waiting for reuse.
	Parked int
}

func (g *Game) Status() Status {
	st := Status{
		Session:  g.Session.String(),
		Total:    g.Director.Config.TotalSegments,
		Ambience: system.CurrentAmbience(g.World),
		Parked:   g.Director.Pool.Parked(),
	}
	_, d, ok := system.Director(g.World)
	if !ok {
		return st
	}
	st.State = d.State
	st.Progress = d.Progress
	st.Current = d.Current
	st.Lift = d.Lift
	if h, ok := ecs.Get(g.World, d.Current, component.HallwayComponent.Kind()); ok {
		st.Index = h.Index
		st.LightsOn = h.LightsOn
		st.InEntry = g.Triggers.Inside(h.Entry)
	}
	if ep, ok := ecs.Get(g.World, d.Lift, component.EpilogueComponent.Kind()); ok {
		st.Epilogue = ep.Phase
	}
	return st
}
