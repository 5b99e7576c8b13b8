package common

import "math"

// Vec3 is a position, euler rotation (degrees) or scale in hallway space.
// X is across the hallway, Y is up, Z runs along the hallway.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

var (
	Zero3 = Vec3{}
	One3  = Vec3{X: 1, Y: 1, Z: 1}
)

func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Mul multiplies component-wise.
func (v Vec3) Mul(o Vec3) Vec3 {
	return Vec3{X: v.X * o.X, Y: v.Y * o.Y, Z: v.Z * o.Z}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// RotateYaw rotates v about the vertical axis by deg degrees. Positive yaw
// turns +Z towards +X.
func (v Vec3) RotateYaw(deg float64) Vec3 {
	if deg == 0 {
		return v
	}
	rad := deg * math.Pi / 180
	s, c := math.Sincos(rad)
	return Vec3{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}

// Forward returns the unit vector a yaw of deg degrees is facing.
func Forward(deg float64) Vec3 {
	return Vec3{Z: 1}.RotateYaw(deg)
}

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Lerp3(a, b Vec3, t float64) Vec3 {
	return Vec3{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t), Z: Lerp(a.Z, b.Z, t)}
}

func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// NormalizeAngle wraps deg into [0, 360).
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
