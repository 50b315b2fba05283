// Package protocol defines the WebSocket message types streamed by the
// adapter to planners and visualizers.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/teslashibe/go-flycam/pkg/movement"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Adapter → client messages
	TypeTransform MessageType = "transform" // Frame transform at publish cadence
	TypeView      MessageType = "view"      // Current view changed
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	return NewMessageAt(msgType, time.Now(), data)
}

// NewMessageAt creates a message stamped with t.
func NewMessageAt(msgType MessageType, t time.Time, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: t.UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// TransformData is a stamped transform between two frames.
type TransformData struct {
	ParentFrame string                 `json:"parent_frame"`
	ChildFrame  string                 `json:"child_frame"`
	Translation movement.PointMsg      `json:"translation"`
	Rotation    movement.QuaternionMsg `json:"rotation"`
}

// ViewData announces the current view.
type ViewData struct {
	Index int              `json:"index"`
	Pose  movement.PoseMsg `json:"pose"`
}
