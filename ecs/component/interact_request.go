package component

import "github.com/milk9111/hallways/ecs"

// InteractRequest is a one-shot "activated" event from the input host
// (switch flicked, door handle pulled, button pressed).
type InteractRequest struct {
	Target ecs.Entity
}

var InteractRequestComponent = NewComponent[InteractRequest]()
