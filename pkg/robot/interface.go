// Package robot provides the simulator-side collaborators the adapter uses
// to move the flying stereo camera.
//
// Interfaces are kept small so the planning core depends only on what it
// calls: moving a model is all it needs.
package robot

import (
	"context"

	"github.com/teslashibe/go-flycam/pkg/movement"
)

// PoseSetter teleports a named simulator model to a pose.
// Implementations return ErrUnreachable when the simulator cannot be
// contacted and an error wrapping ErrRejected when it refuses the request.
type PoseSetter interface {
	SetModelPose(ctx context.Context, model string, pose movement.Pose) error
}

// StatusChecker reports whether the simulator is reachable.
type StatusChecker interface {
	Ping(ctx context.Context) error
}

// Simulator is the composite interface implemented by HTTPController.
type Simulator interface {
	PoseSetter
	StatusChecker
}

// Ensure HTTPController implements Simulator
var _ Simulator = (*HTTPController)(nil)
