package system

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/ecs/entity"
)

const (
	collisionTypePlayer cp.CollisionType = iota + 1
	collisionTypeTrigger
)

const triggerStep = 1.0 / 60.0

// TriggerSystem detects the player crossing trigger volumes. Volumes are
// static sensor boxes on the floor plane (world X,Z mapped to chipmunk X,Y);
// the player is a dynamic circle moved kinematically each frame. The
// collider may sit anywhere below the PlayerTag root.
type TriggerSystem struct {
	Hallways *HallwaySystem
	Doors    *DoorSystem

	space         *cp.Space
	handlersReady bool

	triggers      map[ecs.Entity]*triggerInfo
	triggerShapes map[*cp.Shape]ecs.Entity
	player        *playerBody
	entered       []ecs.Entity
}

type triggerInfo struct {
	shape  *cp.Shape
	bb     cp.BB
	active bool
}

type playerBody struct {
	collider ecs.Entity
	radius   float64
	pos      cp.Vector
	body     *cp.Body
	shape    *cp.Shape
}

func NewTriggerSystem(hallways *HallwaySystem, doors *DoorSystem) *TriggerSystem {
	return &TriggerSystem{
		Hallways:      hallways,
		Doors:         doors,
		space:         cp.NewSpace(),
		triggers:      make(map[ecs.Entity]*triggerInfo),
		triggerShapes: make(map[*cp.Shape]ecs.Entity),
	}
}

func (ts *TriggerSystem) Update(w *ecs.World) {
	if ts == nil || w == nil {
		return
	}
	if ts.space == nil {
		ts.space = cp.NewSpace()
		ts.handlersReady = false
	}

	ts.ensureHandlers()
	ts.syncPlayer(w)
	ts.syncTriggers(w)

	ts.space.Step(triggerStep)

	entered := ts.entered
	ts.entered = nil
	for _, e := range entered {
		ts.dispatch(w, e)
	}
}

// Inside reports whether the player currently overlaps trigger.
func (ts *TriggerSystem) Inside(trigger ecs.Entity) bool {
	if ts == nil || ts.player == nil {
		return false
	}
	info, ok := ts.triggers[trigger]
	if !ok || info.shape == nil {
		return false
	}
	p, r := ts.player.pos, ts.player.radius
	return info.bb.Intersects(cp.BB{L: p.X - r, B: p.Y - r, R: p.X + r, T: p.Y + r})
}

func (ts *TriggerSystem) ensureHandlers() {
	if ts.handlersReady {
		return
	}
	ts.handlersReady = true

	handler := ts.space.NewCollisionHandler(collisionTypePlayer, collisionTypeTrigger)
	handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		if e, ok := ts.triggerOf(arb); ok {
			ts.entered = append(ts.entered, e)
		}
		return true
	}
}

func (ts *TriggerSystem) triggerOf(arb *cp.Arbiter) (ecs.Entity, bool) {
	shapeA, shapeB := arb.Shapes()
	if e, ok := ts.triggerShapes[shapeA]; ok {
		return e, true
	}
	e, ok := ts.triggerShapes[shapeB]
	return e, ok
}

func (ts *TriggerSystem) syncPlayer(w *ecs.World) {
	collider, radius := playerCollider(w)
	if ts.player != nil && (ts.player.collider != collider || ts.player.radius != radius) {
		ts.space.RemoveShape(ts.player.shape)
		ts.space.RemoveBody(ts.player.body)
		ts.player = nil
	}
	if !collider.Valid() {
		return
	}
	if ts.player == nil {
		body := cp.NewBody(1, cp.MomentForCircle(1, 0, radius, cp.Vector{}))
		body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {})
		shape := cp.NewCircle(body, radius, cp.Vector{})
		shape.SetCollisionType(collisionTypePlayer)
		ts.space.AddBody(body)
		ts.space.AddShape(shape)
		ts.player = &playerBody{collider: collider, radius: radius, body: body, shape: shape}
	}

	pos, _ := entity.WorldPose(w, collider)
	ts.player.pos = cp.Vector{X: pos.X, Y: pos.Z}
	ts.player.body.SetPosition(ts.player.pos)
	ts.player.body.SetVelocityVector(cp.Vector{})
}

func (ts *TriggerSystem) syncTriggers(w *ecs.World) {
	seen := make(map[ecs.Entity]bool)
	ecs.ForEach(w, component.TriggerComponent.Kind(), func(e ecs.Entity, t *component.Trigger) {
		seen[e] = true
		active := entity.ActiveInHierarchy(w, e)
		bb := triggerBB(w, e, t.HalfExtents)

		info, ok := ts.triggers[e]
		if !ok {
			info = &triggerInfo{}
			ts.triggers[e] = info
		}
		if info.shape != nil && (!active || info.bb != bb) {
			ts.removeTriggerShape(info)
		}
		info.active = active
		info.bb = bb
		if active && info.shape == nil {
			shape := cp.NewBox2(ts.space.StaticBody, bb, 0)
			shape.SetSensor(true)
			shape.SetCollisionType(collisionTypeTrigger)
			ts.space.AddShape(shape)
			info.shape = shape
			ts.triggerShapes[shape] = e
		}
	})

	for e, info := range ts.triggers {
		if seen[e] {
			continue
		}
		ts.removeTriggerShape(info)
		delete(ts.triggers, e)
	}
}

func (ts *TriggerSystem) removeTriggerShape(info *triggerInfo) {
	if info.shape == nil {
		return
	}
	ts.space.RemoveShape(info.shape)
	delete(ts.triggerShapes, info.shape)
	info.shape = nil
}

// triggerBB is the axis-aligned bound of the yawed volume on the floor plane.
func triggerBB(w *ecs.World, e ecs.Entity, half common.Vec3) cp.BB {
	pos, yaw := entity.WorldPose(w, e)
	rad := yaw * math.Pi / 180
	s, c := math.Abs(math.Sin(rad)), math.Abs(math.Cos(rad))
	hx := half.X*c + half.Z*s
	hz := half.X*s + half.Z*c
	return cp.BB{L: pos.X - hx, B: pos.Z - hz, R: pos.X + hx, T: pos.Z + hz}
}

func (ts *TriggerSystem) dispatch(w *ecs.World, trigger ecs.Entity) {
	t, ok := ecs.Get(w, trigger, component.TriggerComponent.Kind())
	if !ok {
		return
	}
	switch t.Kind {
	case component.TriggerHallwayEntry:
		if ts.Hallways != nil {
			ts.Hallways.PlayerEntered(w, t.Owner)
		}
	case component.TriggerDoorPassThrough:
		if ts.Doors != nil {
			ts.Doors.PassedThrough(w, t.Owner)
		}
	case component.TriggerLiftEntry:
		log.Printf("trigger: player entered lift %v", t.Owner)
		w.Events().Push(ecs.Event{Type: EventLiftEntered, Data: t.Owner})
	}
}
