package placement

import (
	"github.com/go-gl/mathgl/mgl32"
)

var up = mgl32.Vec3{0, 1, 0}

// orientation builds an object's rotation. With align set, the object's up
// axis is turned onto the surface normal; yaw (radians) is applied about the
// object's own up axis before that.
func orientation(normal mgl32.Vec3, align bool, yaw float32) mgl32.Quat {
	q := mgl32.QuatIdent()
	if align && normal.Len() > 1e-6 {
		q = mgl32.QuatBetweenVectors(up, normal.Normalize())
	}
	if yaw != 0 {
		q = q.Mul(mgl32.QuatRotate(yaw, up))
	}
	return q.Normalize()
}
