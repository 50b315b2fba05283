// Package web exposes the planning interface over HTTP and streams the
// camera transform to websocket clients.
package web

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-flycam/internal/log"
	"github.com/teslashibe/go-flycam/pkg/hub"
	"github.com/teslashibe/go-flycam/pkg/planning"
	"github.com/teslashibe/go-flycam/pkg/retrieval"
	"github.com/teslashibe/go-flycam/pkg/view"
)

// Adapter is the planning interface served by the web layer.
type Adapter interface {
	PlanningFrame() string
	InitializePlanningSpace(info planning.InitializationInfo) bool
	PlanningSpace() *view.ViewSpace
	CurrentView() view.View
	RetrieveData(ctx context.Context) (retrieval.ReceiveInfo, error)
	MovementCost(target view.View) planning.MovementCost
	MovementCostBetween(start, target view.View, wantDetail bool) planning.MovementCost
	MoveTo(ctx context.Context, target view.View) (bool, error)
	SetupTF()
	Stats() planning.Stats
}

var _ Adapter = (*planning.FlyingStereoCamera)(nil)

// Config configures the server.
type Config struct {
	// Addr is the listen address, e.g. ":8088".
	Addr string

	// AccessLog receives one line per request. Nil disables request logging.
	AccessLog io.Writer
}

// Server is the planning interface HTTP server
type Server struct {
	app     *fiber.App
	cfg     Config
	adapter Adapter
	logger  *slog.Logger

	// Transform and view stream for /ws/tf clients
	tfHub *hub.Hub
}

// NewServer creates the server and registers all routes. tfHub may be nil,
// in which case /ws/tf is not served and view changes are not announced.
func NewServer(cfg Config, adapter Adapter, tfHub *hub.Hub, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		adapter: adapter,
		tfHub:   tfHub,
		logger:  log.OrDefault(logger).With("component", "web"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "flycam",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Use(recover.New())
	if cfg.AccessLog != nil {
		app.Use(fiberlogger.New(fiberlogger.Config{Output: cfg.AccessLog}))
	}
	app.Use(cors.New())

	// Planning interface
	ri := app.Group("/robot_interface")
	ri.Post("/planning_space_initialization", s.handleInitialize)
	ri.Get("/feasible_view_space", s.handleViewSpace)
	ri.Get("/current_view", s.handleCurrentView)
	ri.Post("/retrieve_data", s.handleRetrieveData)
	ri.Post("/movement_cost", s.handleMovementCost)
	ri.Post("/move_to", s.handleMoveTo)
	ri.Post("/setup_tf", s.handleSetupTF)
	ri.Get("/planning_frame", s.handlePlanningFrame)

	// Process status
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)

	if tfHub != nil {
		// WebSocket upgrade middleware
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws/tf", websocket.New(s.handleTFWS))
	}

	s.app = app
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("planning interface listening", "addr", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// handleError renders errors as {"error": "..."}.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
