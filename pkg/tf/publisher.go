package tf

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/teslashibe/go-flycam/internal/log"
	"github.com/teslashibe/go-flycam/pkg/movement"
)

// DefaultInterval is the publish period, about 20 Hz.
const DefaultInterval = 50 * time.Millisecond

// PoseSource returns the pose to publish. It must not block.
type PoseSource func() movement.Pose

// PublisherConfig configures a Publisher.
type PublisherConfig struct {
	ParentFrame string
	ChildFrame  string
	Interval    time.Duration

	// Clock drives the ticker. Nil means the wall clock.
	Clock clock.Clock
}

// DefaultPublisherConfig returns the frames and cadence the adapter uses.
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		ParentFrame: "dr_origin",
		ChildFrame:  "cam_pos",
		Interval:    DefaultInterval,
	}
}

// Publisher periodically reads a pose and broadcasts it as a transform.
// It never writes adapter state.
type Publisher struct {
	cfg    PublisherConfig
	source PoseSource
	out    Broadcaster
	clock  clock.Clock
	logger *slog.Logger

	published atomic.Uint64
	failed    atomic.Uint64
}

// NewPublisher creates a publisher. Zero config fields take their defaults.
func NewPublisher(source PoseSource, out Broadcaster, cfg PublisherConfig, logger *slog.Logger) *Publisher {
	def := DefaultPublisherConfig()
	if cfg.ParentFrame == "" {
		cfg.ParentFrame = def.ParentFrame
	}
	if cfg.ChildFrame == "" {
		cfg.ChildFrame = def.ChildFrame
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &Publisher{
		cfg:    cfg,
		source: source,
		out:    out,
		clock:  clk,
		logger: log.OrDefault(logger).With("component", "tf"),
	}
}

// Run publishes every interval until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	if p.out == nil {
		return ErrNoBroadcaster
	}

	ticker := p.clock.Ticker(p.cfg.Interval)
	defer ticker.Stop()

	p.logger.Info("publishing transform",
		"parent", p.cfg.ParentFrame,
		"child", p.cfg.ChildFrame,
		"interval", p.cfg.Interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.PublishOnce(); err != nil && p.failed.Add(1) == 1 {
				p.logger.Warn("transform publish failed", "error", err)
			}
		}
	}
}

// PublishOnce reads the current pose and sends one transform.
func (p *Publisher) PublishOnce() error {
	if p.out == nil {
		return ErrNoBroadcaster
	}
	t := FromPose(p.cfg.ParentFrame, p.cfg.ChildFrame, p.source(), p.clock.Now())
	if err := p.out.SendTransform(t); err != nil {
		return err
	}
	p.published.Add(1)
	return nil
}

// Published returns how many transforms were sent.
func (p *Publisher) Published() uint64 {
	return p.published.Load()
}
