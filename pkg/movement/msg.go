package movement

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// PointMsg is the wire form of a position.
type PointMsg struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// QuaternionMsg is the wire form of an orientation. W defaults to zero when
// omitted, so senders must set it explicitly.
type QuaternionMsg struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
	W float64 `json:"w" yaml:"w"`
}

// PoseMsg is the wire form of a Pose.
type PoseMsg struct {
	Position    PointMsg      `json:"position" yaml:"position"`
	Orientation QuaternionMsg `json:"orientation" yaml:"orientation"`
}

// ToMsg converts the pose to its wire form.
func (p Pose) ToMsg() PoseMsg {
	return PoseMsg{
		Position: PointMsg{X: p.Position.X, Y: p.Position.Y, Z: p.Position.Z},
		Orientation: QuaternionMsg{
			X: p.Orientation.Imag,
			Y: p.Orientation.Jmag,
			Z: p.Orientation.Kmag,
			W: p.Orientation.Real,
		},
	}
}

// PoseFromMsg converts a wire pose. The orientation is taken as given;
// callers that need a unit quaternion normalize it themselves.
func PoseFromMsg(m PoseMsg) Pose {
	return Pose{
		Position: r3.Vector{X: m.Position.X, Y: m.Position.Y, Z: m.Position.Z},
		Orientation: quat.Number{
			Real: m.Orientation.W,
			Imag: m.Orientation.X,
			Jmag: m.Orientation.Y,
			Kmag: m.Orientation.Z,
		},
	}
}
