package component

import "github.com/milk9111/hallways/ecs"

// TaskOwner binds a task to one identity: an entity handle plus the lease it
// held when the task was scheduled.
type TaskOwner struct {
	Entity ecs.Entity
	Lease  uint64
}

// TaskStep waits Wait seconds, then runs Do.
type TaskStep struct {
	Name string
	Wait float64
	Do   func(w *ecs.World)
}

// Task is a timed, cancellable step sequence living on its own entity.
type Task struct {
	Name      string
	Owners    []TaskOwner
	Steps     []TaskStep
	Next      int
	Waited    float64
	Cancelled bool
	// Frame is the frame the task was scheduled on; time accrues from the
	// next frame.
	Frame uint64
}

var TaskComponent = NewComponent[Task]()
