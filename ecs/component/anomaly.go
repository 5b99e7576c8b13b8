package component

import (
	"image/color"

	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
)

type ChangeKind string

const (
	ChangeVisibilityOn    ChangeKind = "visibility_on"
	ChangeVisibilityOff   ChangeKind = "visibility_off"
	ChangeColor           ChangeKind = "color"
	ChangePositionOffset  ChangeKind = "position_offset"
	ChangeRotationOffset  ChangeKind = "rotation_offset"
	ChangeScaleMultiplier ChangeKind = "scale_multiplier"
	ChangeObjectSwap      ChangeKind = "object_swap"
	ChangeSoundOneShot    ChangeKind = "sound_one_shot"
	ChangeSoundLoop       ChangeKind = "sound_loop"
	ChangeAmbienceStop    ChangeKind = "ambience_stop"
	ChangeAmbienceReplace ChangeKind = "ambience_replace"
)

// IsAudio reports whether the kind only issues sound commands and carries no
// transform state to snapshot.
func (k ChangeKind) IsAudio() bool {
	switch k {
	case ChangeSoundOneShot, ChangeSoundLoop, ChangeAmbienceStop, ChangeAmbienceReplace:
		return true
	}
	return false
}

// Change is one candidate mutation. Only the fields used by Kind matter.
type Change struct {
	Kind   ChangeKind
	Target ecs.Entity

	Color      color.NRGBA
	Offset     common.Vec3
	Multiplier common.Vec3

	SwapPrefab string
	SwapFlip   bool

	Sound  string
	Volume float64
}

// ChangeSnapshot holds the pre-apply values of the target.
type ChangeSnapshot struct {
	HadActive bool
	Active    bool
	Color     color.NRGBA
	Position  common.Vec3
	Rotation  common.Vec3
	Scale     common.Vec3
}

// Anomaly is the anomaly instance of a hallway. Nil candidates are allowed
// and never selected.
type Anomaly struct {
	Candidates []*Change

	Applied    bool
	Chosen     *Change
	Snapshot   ChangeSnapshot
	Substitute ecs.Entity
	// Sound is the host sound id of a playing localized anomaly.
	Sound uint64
	// Playing is set once an audio anomaly has been started.
	Playing bool
}

var AnomalyComponent = NewComponent[Anomaly]()
