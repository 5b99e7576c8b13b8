package component

import "github.com/milk9111/hallways/ecs"

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

// Name is the authored name of a prefab part; anomalies target parts by name.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()

// Substitute marks an object spawned by an ObjectSwap anomaly.
type Substitute struct {
	Original ecs.Entity
}

var SubstituteComponent = NewComponent[Substitute]()

// LightSwitch toggles the lights of its hallway when activated.
type LightSwitch struct {
	Hallway ecs.Entity
}

var LightSwitchComponent = NewComponent[LightSwitch]()
