package component

import "github.com/milk9111/hallways/ecs"

// NewComponent registers a component kind for T.
func NewComponent[T any]() ecs.ComponentHandle[T] {
	return ecs.NewComponent[T]()
}
