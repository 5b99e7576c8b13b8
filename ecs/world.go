package ecs

// System updates a world each frame.
type System interface {
	Update(w *World)
}

// World owns entities, components, system order and the frame clock.
type World struct {
	entities entityStore
	stores   map[ComponentID]*SparseSet
	systems  []System
	events   EventQueue

	delta   float64
	elapsed float64
	frame   uint64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[ComponentID]*SparseSet)}
}

func (w *World) store(id ComponentID, create bool) *SparseSet {
	if w.stores == nil {
		w.stores = make(map[ComponentID]*SparseSet)
	}
	s, ok := w.stores[id]
	if !ok && create {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if w == nil || s == nil {
		return
	}
	w.systems = append(w.systems, s)
}

// Advance moves the clock forward by dt seconds and runs one update.
func (w *World) Advance(dt float64) {
	if w == nil {
		return
	}
	if dt < 0 {
		dt = 0
	}
	w.delta = dt
	w.elapsed += dt
	w.Update()
}

// Update runs all systems once with the current delta. Events emitted during
// the previous frame are dropped first, so hosts read them between frames.
func (w *World) Update() {
	if w == nil {
		return
	}
	w.events.flush()
	w.frame++
	for _, s := range w.systems {
		if s != nil {
			s.Update(w)
		}
	}
}

// Delta is the duration of the current frame in seconds.
func (w *World) Delta() float64 {
	if w == nil {
		return 0
	}
	return w.delta
}

// Elapsed is the total simulated time in seconds.
func (w *World) Elapsed() float64 {
	if w == nil {
		return 0
	}
	return w.elapsed
}

// Frame is the number of updates run so far.
func (w *World) Frame() uint64 {
	if w == nil {
		return 0
	}
	return w.frame
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	if w == nil {
		return 0
	}
	return w.entities.create()
}

// DestroyEntity removes every component of e and invalidates the handle.
// It returns false if e was not alive.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.removeSlot(e)
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid and not destroyed.
func IsAlive(w *World, e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns all live entities.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.all()
}
