package planning

import (
	"encoding/json"
	"fmt"

	"github.com/teslashibe/go-flycam/pkg/view"
)

// CostException flags whether a MovementCost is directly usable.
type CostException int

const (
	// None means the cost can be used as is.
	None CostException = iota
	// CostUnknown means the platform could not estimate the cost.
	CostUnknown
	// InvalidStartState means the start view is not reachable or invalid.
	InvalidStartState
	// InvalidTargetState means the target view is not reachable or invalid.
	InvalidTargetState
	// NoPathFound means no transition between the views exists.
	NoPathFound
)

var exceptionNames = map[CostException]string{
	None:               "NONE",
	CostUnknown:        "COST_UNKNOWN",
	InvalidStartState:  "INVALID_START_STATE",
	InvalidTargetState: "INVALID_TARGET_STATE",
	NoPathFound:        "NO_PATH_FOUND",
}

func (e CostException) String() string {
	if s, ok := exceptionNames[e]; ok {
		return s
	}
	return fmt.Sprintf("CostException(%d)", int(e))
}

// MarshalJSON encodes the exception by name.
func (e CostException) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON accepts the exception name.
func (e *CostException) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cost exception must be a string: %w", err)
	}
	for k, v := range exceptionNames {
		if v == s {
			*e = k
			return nil
		}
	}
	return fmt.Errorf("unknown cost exception %q", s)
}

// MovementCost is a scalar proxy for how expensive a move is.
type MovementCost struct {
	Cost      float64       `json:"cost"`
	Exception CostException `json:"exception"`
}

// CostModel ranks candidate views by straight-line distance. It never asks
// the platform anything, so planners can query it for many candidates.
type CostModel struct{}

// Estimate returns the cost of moving to target from an unspecified
// position. Without a start view this platform does not model cost, so the
// estimate is zero.
func (CostModel) Estimate(target view.View) MovementCost {
	return MovementCost{Cost: 0, Exception: None}
}

// Between returns the Euclidean distance between the two view positions.
// wantDetail is accepted for callers that may ask for richer output in
// future; it does not change the result.
func (CostModel) Between(start, target view.View, wantDetail bool) MovementCost {
	return MovementCost{
		Cost:      start.Pose.Distance(target.Pose),
		Exception: None,
	}
}
