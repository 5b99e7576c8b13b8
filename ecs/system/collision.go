package system

import (
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/ecs/entity"
)

const (
	defaultPlayerRadius = 0.3
	defaultHallWidth    = 3.0

	// sweepSkin keeps a resolved position just outside the wall it hit so the
	// next sweep does not start in contact.
	sweepSkin = 1e-4
	maxSlides = 4
)

// CollisionSystem blocks the player against hallway walls, closed door leaves
// and the sealed lift. Walls are static segments on the floor plane (world X,Z
// mapped to chipmunk X,Y) inflated by the player radius, so a move is a point
// sweep through the space.
type CollisionSystem struct {
	space  *cp.Space
	radius float64
	sets   map[ecs.Entity]*wallSet
}

type wall struct {
	a, b cp.Vector
}

type wallSet struct {
	walls  []wall
	shapes []*cp.Shape
}

func NewCollisionSystem() *CollisionSystem {
	return &CollisionSystem{
		space: cp.NewSpace(),
		sets:  make(map[ecs.Entity]*wallSet),
	}
}

func (cs *CollisionSystem) Update(w *ecs.World) {
	if cs == nil || w == nil {
		return
	}
	cs.sync(w)
}

// Sweep moves from toward to and returns where the player ends up. Blocked
// motion slides along the wall it met. Height is taken from to.
func (cs *CollisionSystem) Sweep(w *ecs.World, from, to common.Vec3) common.Vec3 {
	if cs == nil || w == nil {
		return to
	}
	cs.sync(w)

	pos := cp.Vector{X: from.X, Y: from.Z}
	delta := cp.Vector{X: to.X - from.X, Y: to.Z - from.Z}
	for i := 0; i < maxSlides && delta.LengthSq() > sweepSkin*sweepSkin; i++ {
		end := pos.Add(delta)
		alpha, normal, hit := cs.firstBlock(pos, end)
		if !hit {
			pos = end
			break
		}
		travel := delta.Mult(alpha)
		pos = pos.Add(travel).Add(normal.Mult(sweepSkin))
		rest := delta.Sub(travel)
		delta = rest.Sub(normal.Mult(rest.Dot(normal)))
	}
	return common.V3(pos.X, to.Y, pos.Y)
}

// firstBlock finds the earliest wall the move runs into. Walls the move leaves
// are ignored so a player pressed against one can step away.
func (cs *CollisionSystem) firstBlock(a, b cp.Vector) (float64, cp.Vector, bool) {
	delta := b.Sub(a)
	best := 2.0
	var normal cp.Vector
	cs.space.SegmentQuery(a, b, 0, cp.SHAPE_FILTER_ALL, func(_ *cp.Shape, _, n cp.Vector, alpha float64, _ interface{}) {
		if delta.Dot(n) >= 0 || alpha >= best {
			return
		}
		best = alpha
		normal = n
	}, nil)
	if best > 1 {
		return 0, cp.Vector{}, false
	}
	return best, normal, true
}

func (cs *CollisionSystem) sync(w *ecs.World) {
	if cs.space == nil {
		cs.space = cp.NewSpace()
		cs.sets = make(map[ecs.Entity]*wallSet)
	}

	_, radius := playerCollider(w)
	if radius != cs.radius {
		for e, set := range cs.sets {
			cs.removeShapes(set)
			delete(cs.sets, e)
		}
		cs.radius = radius
	}

	seen := make(map[ecs.Entity]bool)
	ecs.ForEach2(w, component.HallwayComponent.Kind(), component.RenderableComponent.Kind(), func(e ecs.Entity, h *component.Hallway, r *component.Renderable) {
		seen[e] = true
		cs.apply(e, hallwayWalls(w, e, h, r))
	})
	ecs.ForEach3(w, component.LiftComponent.Kind(), component.RenderableComponent.Kind(), component.EpilogueComponent.Kind(), func(e ecs.Entity, _ *component.Lift, r *component.Renderable, ep *component.Epilogue) {
		seen[e] = true
		cs.apply(e, liftWalls(w, e, r, ep))
	})

	for e, set := range cs.sets {
		if seen[e] {
			continue
		}
		cs.removeShapes(set)
		delete(cs.sets, e)
	}
}

func (cs *CollisionSystem) apply(e ecs.Entity, walls []wall) {
	set, ok := cs.sets[e]
	if !ok {
		set = &wallSet{}
		cs.sets[e] = set
	}
	if ok && slices.Equal(set.walls, walls) {
		return
	}
	cs.removeShapes(set)
	set.walls = walls
	for _, wl := range walls {
		shape := cp.NewSegment(cs.space.StaticBody, wl.a, wl.b, cs.radius)
		cs.space.AddShape(shape)
		set.shapes = append(set.shapes, shape)
	}
}

func (cs *CollisionSystem) removeShapes(set *wallSet) {
	for _, shape := range set.shapes {
		cs.space.RemoveShape(shape)
	}
	set.shapes = nil
	set.walls = nil
}

// hallwayWalls lists the walls of an active hallway: both sides, the end
// pieces around each doorway and a leaf across any doorway that is shut.
func hallwayWalls(w *ecs.World, e ecs.Entity, h *component.Hallway, r *component.Renderable) []wall {
	if !entity.ActiveInHierarchy(w, e) {
		return nil
	}
	half := defaultHallWidth / 2
	if r.Size.X > 0 {
		half = r.Size.X / 2
	}
	pos, yaw := entity.WorldPose(w, e)
	seg := func(ax, az, bx, bz float64) wall {
		return wall{a: floorPoint(common.V3(ax, 0, az), pos, yaw), b: floorPoint(common.V3(bx, 0, bz), pos, yaw)}
	}

	walls := []wall{
		seg(-half, 0, -half, h.Length),
		seg(half, 0, half, h.Length),
	}
	for _, door := range []ecs.Entity{h.StartDoor, h.EndDoor} {
		t, ok := ecs.Get(w, door, component.TransformComponent.Kind())
		dr, hasRender := ecs.Get(w, door, component.RenderableComponent.Kind())
		if !ok || !hasRender {
			continue
		}
		z := t.Position.Z
		left, right := t.Position.X, t.Position.X+dr.Size.X
		walls = append(walls, seg(-half, z, left, z), seg(right, z, half, z))
		if entity.ActiveInHierarchy(w, door) && !doorPassable(w, door) {
			walls = append(walls, seg(left, z, right, z))
		}
	}
	return walls
}

// liftWalls encloses the lift on three sides and seals its mouth once the
// epilogue starts.
func liftWalls(w *ecs.World, e ecs.Entity, r *component.Renderable, ep *component.Epilogue) []wall {
	if !entity.ActiveInHierarchy(w, e) {
		return nil
	}
	half, depth := r.Size.X/2, r.Size.Z
	pos, yaw := entity.WorldPose(w, e)
	seg := func(ax, az, bx, bz float64) wall {
		return wall{a: floorPoint(common.V3(ax, 0, az), pos, yaw), b: floorPoint(common.V3(bx, 0, bz), pos, yaw)}
	}

	walls := []wall{
		seg(-half, 0, -half, depth),
		seg(half, 0, half, depth),
		seg(-half, depth, half, depth),
	}
	if ep.Started {
		walls = append(walls, seg(-half, 0, half, 0))
	}
	return walls
}

func floorPoint(local, origin common.Vec3, yaw float64) cp.Vector {
	p := local.RotateYaw(yaw).Add(origin)
	return cp.Vector{X: p.X, Y: p.Z}
}

func doorPassable(w *ecs.World, door ecs.Entity) bool {
	d, ok := ecs.Get(w, door, component.DoorComponent.Kind())
	if !ok {
		return true
	}
	return d.State == component.DoorOpen || d.State == component.DoorOpening
}

// playerCollider finds the collider below the PlayerTag root and its radius.
func playerCollider(w *ecs.World) (ecs.Entity, float64) {
	collider := ecs.Entity(0)
	radius := 0.0
	ecs.ForEach(w, component.ColliderComponent.Kind(), func(e ecs.Entity, c *component.Collider) {
		if collider.Valid() {
			return
		}
		if ecs.Has(w, entity.Root(w, e), component.PlayerTagComponent.Kind()) {
			collider = e
			radius = c.Radius
		}
	})
	if radius <= 0 {
		radius = defaultPlayerRadius
	}
	return collider, radius
}
