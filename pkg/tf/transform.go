// Package tf publishes the camera's frame transform at a fixed cadence and
// lets planners subscribe to it over a websocket.
package tf

import (
	"errors"
	"time"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/teslashibe/go-flycam/pkg/hub"
	"github.com/teslashibe/go-flycam/pkg/movement"
	"github.com/teslashibe/go-flycam/pkg/protocol"
)

// ErrNoBroadcaster is returned when a publisher has nowhere to send.
var ErrNoBroadcaster = errors.New("tf: no broadcaster")

// Transform is a stamped rigid transform from ParentFrame to ChildFrame.
type Transform struct {
	Translation r3.Vector
	Rotation    quat.Number
	ParentFrame string
	ChildFrame  string
	Stamp       time.Time
}

// FromPose builds the transform that places child at pose in parent.
func FromPose(parent, child string, pose movement.Pose, stamp time.Time) Transform {
	return Transform{
		Translation: pose.Position,
		Rotation:    pose.Orientation,
		ParentFrame: parent,
		ChildFrame:  child,
		Stamp:       stamp,
	}
}

// Pose returns the transform as a pose of the child frame.
func (t Transform) Pose() movement.Pose {
	return movement.Pose{Position: t.Translation, Orientation: t.Rotation}
}

// fromData decodes a wire transform.
func fromData(d *protocol.TransformData, ts int64) Transform {
	pose := movement.PoseFromMsg(movement.PoseMsg{Position: d.Translation, Orientation: d.Rotation})
	return FromPose(d.ParentFrame, d.ChildFrame, pose, time.UnixMilli(ts))
}

// Broadcaster delivers transforms to whoever is listening.
type Broadcaster interface {
	SendTransform(t Transform) error
}

// HubBroadcaster fans transforms out to websocket clients of a hub.
type HubBroadcaster struct {
	Hub *hub.Hub
}

// SendTransform encodes t as a protocol message and broadcasts it.
func (b HubBroadcaster) SendTransform(t Transform) error {
	msg, err := protocol.NewTransformMessage(t.ParentFrame, t.ChildFrame, t.Pose(), t.Stamp)
	if err != nil {
		return err
	}
	return b.Hub.Publish(msg)
}

var _ Broadcaster = HubBroadcaster{}
