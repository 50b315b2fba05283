// Package view holds the admissible viewpoints of a reconstruction session.
//
// A ViewSpace is loaded once at startup and is read-only afterwards, so it
// is safe to share between goroutines without locking.
package view

import (
	"fmt"

	"github.com/teslashibe/go-flycam/pkg/movement"
)

// View is a single admissible viewpoint.
type View struct {
	Index int
	Pose  movement.Pose
}

// ViewMsg is the wire form of a View.
type ViewMsg struct {
	Index int              `json:"index"`
	Pose  movement.PoseMsg `json:"pose"`
}

// ToMsg converts the view to its wire form.
func (v View) ToMsg() ViewMsg {
	return ViewMsg{Index: v.Index, Pose: v.Pose.ToMsg()}
}

// FromMsg reconstructs a view received over the wire. The orientation is
// normalized so composed poses stay unit length.
func FromMsg(m ViewMsg) View {
	p := movement.PoseFromMsg(m.Pose)
	p.Orientation = movement.NormalizeQuat(p.Orientation)
	return View{Index: m.Index, Pose: p}
}

func (v View) String() string {
	return fmt.Sprintf("view[%d] %s", v.Index, v.Pose)
}
