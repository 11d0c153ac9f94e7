package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is the world-space vector type. Y is up.
type Vec3 = mgl64.Vec3

// Up is the world up axis.
var Up = Vec3{0, 1, 0}

// NormalizeEpsilon is the horizontal magnitude below which a locomotion
// direction is left as-is instead of being normalized.
const NormalizeEpsilon = 0.01

// YawBasis returns the horizontal forward and right unit vectors for a yaw
// angle in radians. Pitch and roll never influence locomotion.
//
//	forward = (-sin yaw, 0, -cos yaw)
//	right   = ( cos yaw, 0, -sin yaw)
func YawBasis(yaw float64) (forward, right Vec3) {
	sin, cos := math.Sincos(yaw)
	forward = Vec3{-sin, 0, -cos}
	right = Vec3{cos, 0, -sin}
	return forward, right
}

// HorizontalLen returns the length of v projected on the XZ plane.
func HorizontalLen(v Vec3) float64 {
	return math.Sqrt(v[0]*v[0] + v[2]*v[2])
}

// NormalizeHorizontal scales the XZ components of v to unit length when their
// magnitude exceeds eps. Y is left untouched. The second result reports
// whether normalization happened.
func NormalizeHorizontal(v Vec3, eps float64) (Vec3, bool) {
	mag := HorizontalLen(v)
	if mag <= eps {
		return v, false
	}
	return Vec3{v[0] / mag, v[1], v[2] / mag}, true
}

// Normalize returns v scaled to unit length, or the zero vector when v is
// shorter than eps. mgl64's Normalize divides by zero on a zero vector.
func Normalize(v Vec3, eps float64) Vec3 {
	l := v.Len()
	if l <= eps {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

// LocalToWorld rotates a local offset (x: side, y: up, z: forward) into world
// space using the given horizontal basis.
func LocalToWorld(offset, forward, right Vec3) Vec3 {
	return right.Mul(offset[0]).
		Add(Up.Mul(offset[1])).
		Add(forward.Mul(offset[2]))
}

// DistSq returns the squared distance between a and b.
func DistSq(a, b Vec3) float64 {
	return a.Sub(b).LenSqr()
}
