// Package movement provides the 6-DoF pose type shared by the view space,
// the motion controller and the transform publisher.
//
// Positions are r3 vectors in metres. Orientations are unit quaternions in
// the planning frame.
package movement

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// ErrInvalidPose is returned by Validate for poses that cannot be sent to
// the platform.
var ErrInvalidPose = errors.New("movement: invalid pose")

// Pose represents a position plus orientation.
type Pose struct {
	Position    r3.Vector
	Orientation quat.Number
}

// IdentityQuat is the no-rotation quaternion.
var IdentityQuat = quat.Number{Real: 1}

// Identity returns a pose at the origin with no rotation.
func Identity() Pose {
	return Pose{Orientation: IdentityQuat}
}

// NewPose builds a pose from a position and a (w, x, y, z) quaternion.
// The orientation is normalized.
func NewPose(x, y, z, qw, qx, qy, qz float64) Pose {
	return Pose{
		Position:    r3.Vector{X: x, Y: y, Z: z},
		Orientation: NormalizeQuat(quat.Number{Real: qw, Imag: qx, Jmag: qy, Kmag: qz}),
	}
}

// NormalizeQuat returns q scaled to unit length.
// A zero quaternion normalizes to identity.
func NormalizeQuat(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n < 1e-12 {
		return IdentityQuat
	}
	return quat.Scale(1/n, q)
}

// WithOrientationOffset returns the pose rotated by a fixed frame offset:
// orientation * offset. The position is unchanged.
func (p Pose) WithOrientationOffset(offset quat.Number) Pose {
	return Pose{
		Position:    p.Position,
		Orientation: quat.Mul(p.Orientation, offset),
	}
}

// Distance returns the Euclidean distance between the two positions.
func (p Pose) Distance(other Pose) float64 {
	return p.Position.Distance(other.Position)
}

// Validate checks that every component is finite and the orientation is
// not the zero quaternion.
func (p Pose) Validate() error {
	for _, v := range []float64{
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Orientation.Real, p.Orientation.Imag, p.Orientation.Jmag, p.Orientation.Kmag,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite component", ErrInvalidPose)
		}
	}
	if quat.Abs(p.Orientation) < 1e-12 {
		return fmt.Errorf("%w: zero orientation", ErrInvalidPose)
	}
	return nil
}

// String formats the pose for logs.
func (p Pose) String() string {
	q := p.Orientation
	return fmt.Sprintf("pos=(%.3f,%.3f,%.3f) rot=(w=%.3f,x=%.3f,y=%.3f,z=%.3f)",
		p.Position.X, p.Position.Y, p.Position.Z, q.Real, q.Imag, q.Jmag, q.Kmag)
}
