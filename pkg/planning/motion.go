package planning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"gonum.org/v1/gonum/num/quat"

	"github.com/teslashibe/go-flycam/internal/log"
	"github.com/teslashibe/go-flycam/pkg/movement"
	"github.com/teslashibe/go-flycam/pkg/robot"
	"github.com/teslashibe/go-flycam/pkg/view"
)

// DefaultCameraToBody converts the planning convention (camera looking
// along +z) into the simulator model's body convention. It is (w, x, y, z) =
// (0.5, 0.5, -0.5, 0.5).
func DefaultCameraToBody() quat.Number {
	return quat.Number{Real: 0.5, Imag: 0.5, Jmag: -0.5, Kmag: 0.5}
}

// MotionConfig configures a MotionController.
type MotionConfig struct {
	// ModelName is the simulator model that gets teleported.
	ModelName string

	// CameraToBody is right-multiplied onto every target orientation.
	CameraToBody quat.Number

	// SettleDuration is waited after each command so observers polling the
	// simulator see the new state. Zero disables the wait.
	SettleDuration time.Duration

	// Clock drives the settle wait. Nil means the wall clock.
	Clock clock.Clock
}

// DefaultMotionConfig returns the configuration used by the flying stereo
// camera in simulation.
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{
		ModelName:      "flying_stereo_cam",
		CameraToBody:   DefaultCameraToBody(),
		SettleDuration: time.Second,
	}
}

// MotionController teleports the camera body to a view's pose. It does not
// plan paths or check collisions.
type MotionController struct {
	setter robot.PoseSetter
	cfg    MotionConfig
	clock  clock.Clock
	logger *slog.Logger
}

// NewMotionController creates a controller that moves through setter.
func NewMotionController(setter robot.PoseSetter, cfg MotionConfig, logger *slog.Logger) *MotionController {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	cfg.CameraToBody = movement.NormalizeQuat(cfg.CameraToBody)
	return &MotionController{
		setter: setter,
		cfg:    cfg,
		clock:  clk,
		logger: log.OrDefault(logger).With("component", "motion"),
	}
}

// BodyPose is the pose the camera body must assume to realise target.
func (m *MotionController) BodyPose(target view.View) movement.Pose {
	return target.Pose.WithOrientationOffset(m.cfg.CameraToBody)
}

// Command issues the set-pose call for target. It does not wait for the
// platform to arrive.
func (m *MotionController) Command(ctx context.Context, target view.View) error {
	body := m.BodyPose(target)

	m.logger.Debug("commanding model pose",
		"model", m.cfg.ModelName,
		"view", target.Index,
		"pose", body.String(),
	)

	if err := m.setter.SetModelPose(ctx, m.cfg.ModelName, body); err != nil {
		return fmt.Errorf("%w: view %d: %w", ErrMoveFailed, target.Index, err)
	}
	return nil
}

// Settle blocks for the settle duration or until ctx is done.
func (m *MotionController) Settle(ctx context.Context) error {
	if m.cfg.SettleDuration <= 0 {
		return nil
	}

	timer := m.clock.Timer(m.cfg.SettleDuration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
