// Package retrieval triggers stereo sensor data capture on the external
// data retrieval service. The adapter forwards the receive status and never
// looks at the captured data itself.
package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnavailable is returned when the data service cannot be contacted or
// answers with an error.
var ErrUnavailable = errors.New("retrieval: data service unavailable")

// ReceiveInfo is the outcome of a capture request.
type ReceiveInfo int

const (
	// Received means the data was captured and stored.
	Received ReceiveInfo = iota
	// ReceptionFailed means the service tried and failed.
	ReceptionFailed
	// ReceptionTimeout means no data arrived in time.
	ReceptionTimeout
	// NoData means the sensor produced nothing to store.
	NoData
)

var receiveInfoNames = map[ReceiveInfo]string{
	Received:         "RECEIVED",
	ReceptionFailed:  "RECEPTION_FAILED",
	ReceptionTimeout: "RECEPTION_TIMEOUT",
	NoData:           "NO_DATA",
}

func (r ReceiveInfo) String() string {
	if s, ok := receiveInfoNames[r]; ok {
		return s
	}
	return fmt.Sprintf("ReceiveInfo(%d)", int(r))
}

// MarshalJSON encodes the status by name.
func (r ReceiveInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts the status name.
func (r *ReceiveInfo) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("receive info must be a string: %w", err)
	}
	for k, v := range receiveInfoNames {
		if v == s {
			*r = k
			return nil
		}
	}
	return fmt.Errorf("unknown receive info %q", s)
}

// Retriever asks the data service to capture data. pathHint names where the
// capture should be stored; it may be empty.
type Retriever interface {
	Retrieve(ctx context.Context, pathHint string) (ReceiveInfo, error)
}
