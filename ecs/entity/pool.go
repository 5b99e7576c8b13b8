package entity

import (
	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/prefabs"
)

// HallwayPool parks released hallways instead of destroying them. Callers
// must revert anomalies, snap doors and cancel tasks before Release; the pool
// only handles visibility, placement and leases.
type HallwayPool struct {
	spec   *prefabs.HallwaySpec
	size   int
	parked []ecs.Entity
}

func NewHallwayPool(spec *prefabs.HallwaySpec, size int) *HallwayPool {
	if size < 0 {
		size = 0
	}
	return &HallwayPool{spec: spec, size: size}
}

func (p *HallwayPool) Spec() *prefabs.HallwaySpec {
	if p == nil {
		return nil
	}
	return p.spec
}

// Parked is the number of hallways waiting for reuse.
func (p *HallwayPool) Parked() int {
	if p == nil {
		return 0
	}
	return len(p.parked)
}

// Acquire returns an active hallway placed at origin, reusing a parked one
// when available. Reused hallways come back uninitialized with a new lease.
func (p *HallwayPool) Acquire(w *ecs.World, origin common.Vec3, yaw float64) (ecs.Entity, error) {
	for len(p.parked) > 0 {
		e := p.parked[len(p.parked)-1]
		p.parked = p.parked[:len(p.parked)-1]
		if !ecs.IsAlive(w, e) {
			continue
		}
		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			t.Position = origin
			t.Rotation = common.V3(0, yaw, 0)
		}
		if h, ok := ecs.Get(w, e, component.HallwayComponent.Kind()); ok {
			h.Initialized = false
			h.EntryReported = false
			h.Responded = false
			h.PlayerResponse = false
		}
		bumpLease(w, e, false)
		SetActive(w, e, true)
		return e, nil
	}
	return BuildHallway(w, p.spec, origin, yaw)
}

// Release parks e or destroys it when the pool is full.
func (p *HallwayPool) Release(w *ecs.World, e ecs.Entity) {
	if !ecs.IsAlive(w, e) {
		return
	}
	if p != nil {
		for _, parked := range p.parked {
			if parked == e {
				return
			}
		}
	}
	if p == nil || len(p.parked) >= p.size {
		DestroyTree(w, e)
		return
	}
	SetActive(w, e, false)
	bumpLease(w, e, true)
	p.parked = append(p.parked, e)
}

func bumpLease(w *ecs.World, e ecs.Entity, pooled bool) {
	lt, ok := ecs.Get(w, e, component.LifetimeComponent.Kind())
	if !ok {
		_ = ecs.Add(w, e, component.LifetimeComponent.Kind(), &component.Lifetime{Lease: 1, Pooled: pooled})
		return
	}
	lt.Lease++
	lt.Pooled = pooled
}
