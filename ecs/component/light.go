package component

import "image/color"

// Light is a light source belonging to a hallway rig.
type Light struct {
	On        bool
	Intensity float64
}

// Emissive is the material feedback paired with the light sources. It must
// always mirror the rig's light state.
type Emissive struct {
	Lit      bool
	OnColor  color.NRGBA
	OffColor color.NRGBA
}

var LightComponent = NewComponent[Light]()
var EmissiveComponent = NewComponent[Emissive]()
