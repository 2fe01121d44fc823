// Package spatialmath converts rigid transforms between the robot and middleware representations.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/spotbridge/ros"
	"go.viam.com/spotbridge/spotapi"
)

// Pose is a translation followed by a rotation. The rotation is kept exactly as received, so it
// may not be a unit quaternion.
type Pose struct {
	Point       r3.Vector
	Orientation quat.Number
}

// NewPoseFromSpot converts a robot SE3 pose.
func NewPoseFromSpot(pose spotapi.SE3Pose) Pose {
	return Pose{
		Point: r3.Vector{X: pose.Position.X, Y: pose.Position.Y, Z: pose.Position.Z},
		Orientation: quat.Number{
			Real: pose.Rotation.W,
			Imag: pose.Rotation.X,
			Jmag: pose.Rotation.Y,
			Kmag: pose.Rotation.Z,
		},
	}
}

// Transform returns the pose as a middleware transform.
func (p Pose) Transform() ros.Transform {
	return ros.Transform{
		Translation: ros.Vector3{X: p.Point.X, Y: p.Point.Y, Z: p.Point.Z},
		Rotation: ros.Quaternion{
			X: p.Orientation.Imag,
			Y: p.Orientation.Jmag,
			Z: p.Orientation.Kmag,
			W: p.Orientation.Real,
		},
	}
}

// IsUnit reports whether the rotation is a unit quaternion within tol.
func (p Pose) IsUnit(tol float64) bool {
	return math.Abs(quat.Abs(p.Orientation)-1) <= tol
}

// QuaternionAlmostEqual is an equality test for all the float components of a quaternion. Quaternions have double coverage, q == -q, and
// this function will *not* account for that. Use only if you want to check that the numbers are the same.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	return math.Abs(a.Real-b.Real) <= tol &&
		math.Abs(a.Imag-b.Imag) <= tol &&
		math.Abs(a.Jmag-b.Jmag) <= tol &&
		math.Abs(a.Kmag-b.Kmag) <= tol
}
