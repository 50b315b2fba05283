// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern.
package hub

import (
	"github.com/teslashibe/go-flycam/pkg/protocol"
)

// Message is a pre-encoded text frame queued for clients.
type Message struct {
	Type protocol.MessageType
	Data []byte
}

// NewJSONMessage wraps pre-encoded JSON bytes.
func NewJSONMessage(data []byte) Message {
	return Message{Data: data}
}

// FromProtocol encodes a protocol message once so it can be fanned out
// to every client without re-marshaling.
func FromProtocol(m *protocol.Message) (Message, error) {
	data, err := m.Bytes()
	if err != nil {
		return Message{}, err
	}
	return Message{Type: m.Type, Data: data}, nil
}
