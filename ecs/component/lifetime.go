package component

// Lifetime counts how many times a pooled entity has been handed out. Tasks
// bound to an older lease are stale even though the handle is still alive.
type Lifetime struct {
	Lease  uint64
	Pooled bool
}

var LifetimeComponent = NewComponent[Lifetime]()
