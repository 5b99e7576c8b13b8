package entity

import (
	"testing"

	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
)

func lease(t *testing.T, w *ecs.World, e ecs.Entity) *component.Lifetime {
	t.Helper()
	lt, ok := ecs.Get(w, e, component.LifetimeComponent.Kind())
	if !ok {
		t.Fatalf("%v has no lifetime", e)
	}
	return lt
}

func TestHallwayPoolReuse(t *testing.T) {
	w := ecs.NewWorld()
	pool := NewHallwayPool(loadHallway(t), 1)

	first, err := pool.Acquire(w, common.Zero3, 0)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if lt := lease(t, w, first); lt.Lease != 1 || lt.Pooled {
		t.Fatalf("fresh lease = %+v", *lt)
	}
	h, _ := ecs.Get(w, first, component.HallwayComponent.Kind())
	h.Initialized = true
	h.EntryReported = true

	pool.Release(w, first)
	pool.Release(w, first)
	if pool.Parked() != 1 {
		t.Fatalf("parked = %d, want 1", pool.Parked())
	}
	if lt := lease(t, w, first); lt.Lease != 2 || !lt.Pooled {
		t.Fatalf("parked lease = %+v", *lt)
	}
	if ActiveSelf(w, first) {
		t.Fatalf("parked hallway should be hidden")
	}

	again, err := pool.Acquire(w, common.V3(0, 0, 12), 0)
	if err != nil || again != first {
		t.Fatalf("acquire = %v %v, want the parked hallway", again, err)
	}
	if lt := lease(t, w, again); lt.Lease != 3 || lt.Pooled {
		t.Fatalf("reused lease = %+v", *lt)
	}
	if h.Initialized || h.EntryReported {
		t.Fatalf("reused hallway should come back uninitialized")
	}
	if pos, _ := WorldPose(w, again); pos != common.V3(0, 0, 12) || !ActiveSelf(w, again) {
		t.Fatalf("reused hallway at %v active %v", pos, ActiveSelf(w, again))
	}

	second, err := pool.Acquire(w, common.Zero3, 0)
	if err != nil || second == first {
		t.Fatalf("an empty pool should build a new hallway: %v %v", second, err)
	}
	pool.Release(w, first)
	pool.Release(w, second)
	if ecs.IsAlive(w, second) || pool.Parked() != 1 {
		t.Fatalf("a full pool should destroy the overflow")
	}
}

func TestHallwayPoolWithoutCapacity(t *testing.T) {
	w := ecs.NewWorld()
	pool := NewHallwayPool(loadHallway(t), -3)
	e, err := pool.Acquire(w, common.Zero3, 0)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	children := len(Children(w, e))
	if children == 0 {
		t.Fatalf("hallway should have parts")
	}
	pool.Release(w, e)
	if ecs.IsAlive(w, e) {
		t.Fatalf("released hallway should be destroyed")
	}
	if n := len(ecs.Entities(w)); n != 0 {
		t.Fatalf("%d entities left after destroying the only hallway", n)
	}

	var none *HallwayPool
	if none.Parked() != 0 || none.Spec() != nil {
		t.Fatalf("nil pool should be empty")
	}
}
