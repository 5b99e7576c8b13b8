package common

import "strings"

// Curve shapes a normalized animation time t in [0,1].
type Curve string

const (
	CurveLinear    Curve = "linear"
	CurveEaseIn    Curve = "ease_in"
	CurveEaseOut   Curve = "ease_out"
	CurveEaseInOut Curve = "ease_in_out"
)

// Eval returns the shaped value for t. Unknown curves behave as linear.
func (c Curve) Eval(t float64) float64 {
	t = Clamp01(t)
	switch Curve(strings.ToLower(string(c))) {
	case CurveEaseIn:
		return t * t
	case CurveEaseOut:
		return 1 - (1-t)*(1-t)
	case CurveEaseInOut:
		return t * t * (3 - 2*t)
	default:
		return t
	}
}
