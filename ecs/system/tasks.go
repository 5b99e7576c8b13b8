package system

import (
	"log"

	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
)

// TaskSystem runs timed step sequences. Before every step each owner is
// re-validated; a task whose owner was destroyed or re-leased is dropped
// without running anything further.
type TaskSystem struct{}

func NewTaskSystem() *TaskSystem { return &TaskSystem{} }

// Owner captures the current identity of e for binding a task to it.
func Owner(w *ecs.World, e ecs.Entity) component.TaskOwner {
	owner := component.TaskOwner{Entity: e}
	if lt, ok := ecs.Get(w, e, component.LifetimeComponent.Kind()); ok {
		owner.Lease = lt.Lease
	}
	return owner
}

// OwnerValid reports whether the identity captured by Owner still holds.
func OwnerValid(w *ecs.World, o component.TaskOwner) bool {
	if !ecs.IsAlive(w, o.Entity) {
		return false
	}
	lt, ok := ecs.Get(w, o.Entity, component.LifetimeComponent.Kind())
	if !ok {
		return o.Lease == 0
	}
	return lt.Lease == o.Lease
}

// Schedule creates a task entity. Steps run in order, each after its own
// wait has elapsed.
func Schedule(w *ecs.World, name string, owners []component.TaskOwner, steps ...component.TaskStep) ecs.Entity {
	if w == nil || len(steps) == 0 {
		return 0
	}
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.TaskComponent.Kind(), &component.Task{
		Name:   name,
		Owners: owners,
		Steps:  steps,
		Frame:  w.Frame(),
	})
	return e
}

func CancelTask(w *ecs.World, task ecs.Entity) {
	if t, ok := ecs.Get(w, task, component.TaskComponent.Kind()); ok {
		t.Cancelled = true
	}
}

// CancelTasksOwnedBy cancels every task bound to e regardless of lease.
func CancelTasksOwnedBy(w *ecs.World, e ecs.Entity) int {
	n := 0
	ecs.ForEach(w, component.TaskComponent.Kind(), func(_ ecs.Entity, t *component.Task) {
		if t.Cancelled {
			return
		}
		for _, o := range t.Owners {
			if o.Entity == e {
				t.Cancelled = true
				n++
				return
			}
		}
	})
	return n
}

func TaskRunning(w *ecs.World, task ecs.Entity) bool {
	t, ok := ecs.Get(w, task, component.TaskComponent.Kind())
	return ok && !t.Cancelled && t.Next < len(t.Steps)
}

func (s *TaskSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	dt := w.Delta()
	ecs.ForEach(w, component.TaskComponent.Kind(), func(e ecs.Entity, t *component.Task) {
		if t.Frame != w.Frame() {
			t.Waited += dt
		}
		for {
			if !taskValid(w, t) {
				if !t.Cancelled {
					log.Printf("task: %s dropped before step %d: owner gone", t.Name, t.Next)
				}
				ecs.DestroyEntity(w, e)
				return
			}
			if t.Next >= len(t.Steps) {
				ecs.DestroyEntity(w, e)
				return
			}
			step := t.Steps[t.Next]
			if t.Waited < step.Wait {
				return
			}
			t.Waited -= step.Wait
			t.Next++
			if step.Do != nil {
				step.Do(w)
			}
			// The step may have cancelled or destroyed this task.
			if _, ok := ecs.Get(w, e, component.TaskComponent.Kind()); !ok {
				return
			}
		}
	})
}

func taskValid(w *ecs.World, t *component.Task) bool {
	if t.Cancelled {
		return false
	}
	for _, o := range t.Owners {
		if !OwnerValid(w, o) {
			return false
		}
	}
	return true
}
