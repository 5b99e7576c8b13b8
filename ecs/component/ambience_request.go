package component

type AmbienceMode int

const (
	AmbienceNormal AmbienceMode = iota
	AmbienceWeird
	AmbienceSilent
	AmbienceReplace
)

func (m AmbienceMode) String() string {
	switch m {
	case AmbienceNormal:
		return "normal"
	case AmbienceWeird:
		return "weird"
	case AmbienceSilent:
		return "silent"
	case AmbienceReplace:
		return "replaced"
	default:
		return "unknown"
	}
}

// AmbienceRequest is a one-shot request for the global ambience bed. Only the
// latest request of a frame is honoured.
type AmbienceRequest struct {
	Mode  AmbienceMode
	Track string
	Loop  bool
}

var AmbienceRequestComponent = NewComponent[AmbienceRequest]()
