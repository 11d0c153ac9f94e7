package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quat is a rotation quaternion (W + V).
type Quat = mgl64.Quat

// ModelForward is the axis a freshly built model faces before any rotation.
// It matches the locomotion forward at yaw 0.
var ModelForward = Vec3{0, 0, -1}

const parallelDot = 0.999999

// FromTo returns the shortest rotation taking direction from onto direction
// to. Both inputs are normalized first; a zero input yields identity.
//
// Near-parallel inputs return identity. Near-opposite inputs rotate 180
// degrees about an axis perpendicular to from, picked from X unless from is
// itself close to X, in which case Y is used.
func FromTo(from, to Vec3) Quat {
	from = Normalize(from, 1e-9)
	to = Normalize(to, 1e-9)
	if from.LenSqr() == 0 || to.LenSqr() == 0 {
		return mgl64.QuatIdent()
	}

	dot := from.Dot(to)
	if dot > parallelDot {
		return mgl64.QuatIdent()
	}
	if dot < -parallelDot {
		axis := Vec3{1, 0, 0}
		if math.Abs(from[0]) >= 0.8 {
			axis = Vec3{0, 1, 0}
		}
		axis = from.Cross(axis).Normalize()
		return mgl64.QuatRotate(math.Pi, axis)
	}
	return mgl64.QuatBetweenVectors(from, to)
}

// Rotate applies q to v.
func Rotate(q Quat, v Vec3) Vec3 {
	return q.Rotate(v)
}
