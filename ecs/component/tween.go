package component

import "github.com/milk9111/hallways/common"

type TweenProperty int

const (
	TweenRotation TweenProperty = iota
	TweenPosition
)

// Tween animates one transform property from From to To. The tween system
// removes the component once Elapsed reaches Duration.
type Tween struct {
	Property TweenProperty
	From     common.Vec3
	To       common.Vec3
	Duration float64
	Elapsed  float64
	Curve    common.Curve
}

var TweenComponent = NewComponent[Tween]()
