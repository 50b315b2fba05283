// Package planning implements the robot side of the view planning
// interface for a simulated flying stereo camera.
//
// The camera can occupy exactly the views of a fixed, pre-loaded view space.
// FlyingStereoCamera tracks which view it is at, moves between views by
// teleporting the simulator model, prices candidate moves and triggers data
// capture at the current view.
package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-flycam/internal/log"
	"github.com/teslashibe/go-flycam/pkg/movement"
	"github.com/teslashibe/go-flycam/pkg/retrieval"
	"github.com/teslashibe/go-flycam/pkg/view"
)

// Config holds the adapter settings read at startup.
type Config struct {
	// PlanningFrame names the frame all poses are expressed in.
	PlanningFrame string

	// DataFolder is the root for capture path hints.
	DataFolder string

	// CapturePattern is formatted with the current view index and joined to
	// DataFolder, e.g. "capture_set_%d".
	CapturePattern string
}

// InitializationInfo is the opaque payload of a planning space
// initialization request.
type InitializationInfo struct {
	Raw json.RawMessage
}

// Stats contains move counters.
type Stats struct {
	CurrentView int    `json:"current_view"`
	ViewCount   int    `json:"view_count"`
	Moves       uint64 `json:"moves"`
	FailedMoves uint64 `json:"failed_moves"`
	Retrievals  uint64 `json:"retrievals"`
}

// FlyingStereoCamera is the planning interface adapter. It is safe for
// concurrent use: reads of the current view never block, and moves are
// serialized.
type FlyingStereoCamera struct {
	cfg       Config
	space     *view.ViewSpace
	motion    *MotionController
	retriever retrieval.Retriever
	costs     CostModel
	logger    *slog.Logger

	current atomic.Int64
	moveMu  sync.Mutex

	moves       atomic.Uint64
	failedMoves atomic.Uint64
	retrievals  atomic.Uint64
}

// New creates the adapter over a loaded view space. It fails with
// ErrEmptyViewSpace when space has no views; callers should treat that as
// fatal. retriever may be nil, in which case RetrieveData always fails.
func New(cfg Config, space *view.ViewSpace, motion *MotionController, retriever retrieval.Retriever, logger *slog.Logger) (*FlyingStereoCamera, error) {
	if space.Size() == 0 {
		return nil, ErrEmptyViewSpace
	}
	if motion == nil {
		return nil, fmt.Errorf("planning: motion controller is required")
	}
	if cfg.CapturePattern == "" {
		cfg.CapturePattern = "capture_set_%d"
	}

	c := &FlyingStereoCamera{
		cfg:       cfg,
		space:     space,
		motion:    motion,
		retriever: retriever,
		logger:    log.OrDefault(logger).With("component", "planning"),
	}
	c.current.Store(0)

	c.logger.Info("loaded view space", "views", space.Size(), "frame", cfg.PlanningFrame)
	return c, nil
}

// Start moves the camera to the first view of the space.
func (c *FlyingStereoCamera) Start(ctx context.Context) error {
	c.logger.Info("setting up first position")
	if _, err := c.MoveTo(ctx, c.space.MustView(0)); err != nil {
		return fmt.Errorf("initial move: %w", err)
	}
	return nil
}

// PlanningFrame returns the frame all poses are expressed in.
func (c *FlyingStereoCamera) PlanningFrame() string {
	return c.cfg.PlanningFrame
}

// InitializePlanningSpace always returns false: the space is fixed at load
// time and changes only by editing the view space file and restarting.
func (c *FlyingStereoCamera) InitializePlanningSpace(info InitializationInfo) bool {
	c.logger.Warn("planning space initialization is not available for this interface; the view space is loaded from file on startup")
	return false
}

// CurrentIndex returns the index of the current view.
func (c *FlyingStereoCamera) CurrentIndex() int {
	return int(c.current.Load())
}

// CurrentView returns the view the camera nominally occupies.
func (c *FlyingStereoCamera) CurrentView() view.View {
	v := c.space.MustView(c.CurrentIndex())
	c.logger.Debug("current view requested", "view", v.Index)
	return v
}

// CurrentPose returns the planning-frame pose of the current view. It is
// the read side used by the transform publisher.
func (c *FlyingStereoCamera) CurrentPose() movement.Pose {
	return c.space.MustView(c.CurrentIndex()).Pose
}

// PlanningSpace returns the view space. Callers must not modify it.
func (c *FlyingStereoCamera) PlanningSpace() *view.ViewSpace {
	return c.space
}

// MovementCost estimates the cost of moving to target without a start view.
func (c *FlyingStereoCamera) MovementCost(target view.View) MovementCost {
	return c.costs.Estimate(target)
}

// MovementCostBetween returns the cost of moving from start to target.
func (c *FlyingStereoCamera) MovementCostBetween(start, target view.View, wantDetail bool) MovementCost {
	return c.costs.Between(start, target, wantDetail)
}

// MoveTo teleports the camera to target and makes it the current view.
//
// The current view advances as soon as the simulator accepts the command,
// before the settle wait; arrival is not verified. If the command fails the
// current view is left unchanged and the error wraps ErrMoveFailed.
//
// Only target.Index is checked against the view space. The simulator is
// commanded with target's pose as given, while CurrentView and the published
// transform report the pose the view space holds for that index.
func (c *FlyingStereoCamera) MoveTo(ctx context.Context, target view.View) (bool, error) {
	if !c.space.Contains(target.Index) {
		return false, fmt.Errorf("%w: index %d, space has %d views", ErrInvalidView, target.Index, c.space.Size())
	}

	c.moveMu.Lock()
	defer c.moveMu.Unlock()

	from := c.CurrentIndex()
	if err := c.motion.Command(ctx, target); err != nil {
		c.failedMoves.Add(1)
		c.logger.Warn("move failed", "from", from, "to", target.Index, "error", err)
		return false, err
	}

	c.current.Store(int64(target.Index))
	c.moves.Add(1)
	c.logger.Info("moved", "from", from, "to", target.Index)

	if err := c.motion.Settle(ctx); err != nil {
		c.logger.Debug("settle interrupted", "view", target.Index, "error", err)
	}
	return true, nil
}

// DataPath is the capture path hint for the given view index.
func (c *FlyingStereoCamera) DataPath(index int) string {
	return filepath.Join(c.cfg.DataFolder, fmt.Sprintf(c.cfg.CapturePattern, index))
}

// RetrieveData asks the data service to capture at the current view. The
// receive status is returned as reported by the service.
func (c *FlyingStereoCamera) RetrieveData(ctx context.Context) (retrieval.ReceiveInfo, error) {
	if c.retriever == nil {
		return retrieval.ReceptionFailed, fmt.Errorf("%w: no data retriever configured", ErrRetrievalFailed)
	}

	index := c.CurrentIndex()
	path := c.DataPath(index)
	c.retrievals.Add(1)

	info, err := c.retriever.Retrieve(ctx, path)
	if err != nil {
		c.logger.Warn("data retrieval failed", "view", index, "path", path, "error", err)
		return info, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}

	c.logger.Info("data retrieved", "view", index, "path", path, "status", info.String())
	return info, nil
}

// SetupTF acknowledges a transform setup request. There is nothing to set
// up: the transform is published continuously.
func (c *FlyingStereoCamera) SetupTF() {}

// Stats returns move and retrieval counters.
func (c *FlyingStereoCamera) Stats() Stats {
	return Stats{
		CurrentView: c.CurrentIndex(),
		ViewCount:   c.space.Size(),
		Moves:       c.moves.Load(),
		FailedMoves: c.failedMoves.Load(),
		Retrievals:  c.retrievals.Load(),
	}
}
