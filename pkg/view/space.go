package view

import (
	"fmt"

	"github.com/teslashibe/go-flycam/pkg/movement"
)

// ViewSpace is an ordered, immutable collection of views indexed by position.
type ViewSpace struct {
	views []View
}

// ViewSpaceMsg is the wire form of a ViewSpace.
type ViewSpaceMsg struct {
	Views []ViewMsg `json:"views"`
}

// NewViewSpace builds a space from poses; view i gets index i.
func NewViewSpace(poses ...movement.Pose) *ViewSpace {
	views := make([]View, len(poses))
	for i, p := range poses {
		views[i] = View{Index: i, Pose: p}
	}
	return &ViewSpace{views: views}
}

// Size returns the number of admissible views. A nil space has size 0.
func (s *ViewSpace) Size() int {
	if s == nil {
		return 0
	}
	return len(s.views)
}

// Contains reports whether index is valid for this space.
func (s *ViewSpace) Contains(index int) bool {
	return index >= 0 && index < s.Size()
}

// View returns the view at index.
func (s *ViewSpace) View(index int) (View, error) {
	if !s.Contains(index) {
		return View{}, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, index, s.Size())
	}
	return s.views[index], nil
}

// MustView returns the view at index and panics if it is out of range.
// Use only with indices produced by this space.
func (s *ViewSpace) MustView(index int) View {
	v, err := s.View(index)
	if err != nil {
		panic(err)
	}
	return v
}

// Views returns a copy of all views in index order.
func (s *ViewSpace) Views() []View {
	out := make([]View, s.Size())
	if s != nil {
		copy(out, s.views)
	}
	return out
}

// ToMsg produces the wire form of the whole space.
func (s *ViewSpace) ToMsg() ViewSpaceMsg {
	msg := ViewSpaceMsg{Views: make([]ViewMsg, 0, s.Size())}
	if s == nil {
		return msg
	}
	for _, v := range s.views {
		msg.Views = append(msg.Views, v.ToMsg())
	}
	return msg
}
