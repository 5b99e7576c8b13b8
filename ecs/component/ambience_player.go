package component

// AmbiencePlayer stores global ambience state on a dedicated entity. The
// ambience system mutates this component.
type AmbiencePlayer struct {
	Mode  AmbienceMode
	Track string
	Loop  bool
}

var AmbiencePlayerComponent = NewComponent[AmbiencePlayer]()
