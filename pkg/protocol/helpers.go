package protocol

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-flycam/pkg/movement"
)

// NewTransformMessage creates a transform message stamped with t.
func NewTransformMessage(parent, child string, pose movement.Pose, t time.Time) (*Message, error) {
	m := pose.ToMsg()
	return NewMessageAt(TypeTransform, t, TransformData{
		ParentFrame: parent,
		ChildFrame:  child,
		Translation: m.Position,
		Rotation:    m.Orientation,
	})
}

// NewViewMessage creates a current-view message.
func NewViewMessage(index int, pose movement.Pose) (*Message, error) {
	return NewMessage(TypeView, ViewData{Index: index, Pose: pose.ToMsg()})
}

// GetTransformData extracts TransformData from a transform message
func (m *Message) GetTransformData() (*TransformData, error) {
	if m.Type != TypeTransform {
		return nil, fmt.Errorf("message type is %q, not %q", m.Type, TypeTransform)
	}
	var data TransformData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetViewData extracts ViewData from a view message
func (m *Message) GetViewData() (*ViewData, error) {
	if m.Type != TypeView {
		return nil, fmt.Errorf("message type is %q, not %q", m.Type, TypeView)
	}
	var data ViewData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
