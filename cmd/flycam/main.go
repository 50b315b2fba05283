// Command flycam serves the planning interface for a simulated flying
// stereo camera and publishes its frame transform.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/teslashibe/go-flycam/internal/config"
	"github.com/teslashibe/go-flycam/internal/log"
	"github.com/teslashibe/go-flycam/pkg/hub"
	"github.com/teslashibe/go-flycam/pkg/planning"
	"github.com/teslashibe/go-flycam/pkg/retrieval"
	"github.com/teslashibe/go-flycam/pkg/robot"
	"github.com/teslashibe/go-flycam/pkg/tf"
	"github.com/teslashibe/go-flycam/pkg/view"
	"github.com/teslashibe/go-flycam/pkg/web"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "YAML config file (optional)")
	dataFolder := flag.String("data", "", "Data folder holding the view space file")
	viewSpace := flag.String("view-space", "", "View space file name inside the data folder")
	frame := flag.String("frame", "", "Planning frame (default dr_origin)")
	listen := flag.String("listen", "", "Listen address (default :8088)")
	simulator := flag.String("simulator", "", "Simulator bridge URL")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("failed to load config", err)
	}
	override(&cfg.DataFolder, *dataFolder)
	override(&cfg.ViewSpaceName, *viewSpace)
	override(&cfg.PlanningFrame, *frame)
	override(&cfg.ListenAddr, *listen)
	override(&cfg.SimulatorURL, *simulator)
	if *debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fatal("invalid config", err)
	}

	log.Init(cfg.LogLevel, cfg.LogFormat)
	logger := log.L()
	mainLog := log.Component("main")

	fmt.Println("🛸 Flying stereo camera")
	fmt.Printf("   Frame: %s\n", cfg.PlanningFrame)
	fmt.Printf("   Views: %s/%s\n", cfg.DataFolder, cfg.ViewSpaceName)
	fmt.Println()

	space, err := view.LoadFromFolder(cfg.DataFolder, cfg.ViewSpaceName)
	if err != nil {
		fatal("failed to load view space", err)
	}

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim := robot.NewHTTPController(cfg.SimulatorURL)
	sim.ReferenceFrame = cfg.PlanningFrame
	if err := sim.Ping(ctx); err != nil {
		mainLog.Warn("simulator not reachable yet", "url", cfg.SimulatorURL, "error", err)
	}

	motion := planning.NewMotionController(sim, planning.MotionConfig{
		ModelName:      cfg.ModelName,
		CameraToBody:   planning.DefaultCameraToBody(),
		SettleDuration: cfg.SettleDuration,
	}, logger)

	cam, err := planning.New(planning.Config{
		PlanningFrame:  cfg.PlanningFrame,
		DataFolder:     cfg.DataFolder,
		CapturePattern: cfg.CapturePattern,
	}, space, motion, retrieval.NewHTTPRetriever(cfg.RetrieverURL), logger)
	if err != nil {
		fatal("failed to initialize adapter", err)
	}
	if err := cam.Start(ctx); err != nil {
		mainLog.Warn("could not move to the first view", "error", err)
	}

	tfHub := hub.New("tf", logger)
	go tfHub.Run(ctx)

	publisher := tf.NewPublisher(cam.CurrentPose, tf.HubBroadcaster{Hub: tfHub}, tf.PublisherConfig{
		ParentFrame: cfg.PlanningFrame,
		ChildFrame:  cfg.CameraFrame,
		Interval:    cfg.PublishInterval,
	}, logger)

	server := web.NewServer(web.Config{Addr: cfg.ListenAddr, AccessLog: os.Stdout}, cam, tfHub, logger)

	errs := make(chan error, 2)
	go func() { errs <- publisher.Run(ctx) }()
	go func() { errs <- server.Start() }()

	fmt.Println("✅ Ready")

	var runErr error
	select {
	case <-ctx.Done():
		fmt.Println("\n👋 Shutting down...")
	case runErr = <-errs:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = multierr.Combine(runErr, server.Shutdown(shutdownCtx))
	if err != nil && !errors.Is(err, context.Canceled) {
		fatal("shutdown", err)
	}

	fmt.Println("👋 Goodbye!")
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func fatal(msg string, err error) {
	log.Component("main").Error(msg, "error", err)
	os.Exit(1)
}
