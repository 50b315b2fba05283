package web

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-flycam/pkg/hub"
	"github.com/teslashibe/go-flycam/pkg/planning"
	"github.com/teslashibe/go-flycam/pkg/protocol"
	"github.com/teslashibe/go-flycam/pkg/view"
)

// MovementCostRequest is the body of a movement cost query.
type MovementCostRequest struct {
	StartView             *view.ViewMsg `json:"start_view,omitempty"`
	TargetView            *view.ViewMsg `json:"target_view"`
	AdditionalInformation bool          `json:"additional_information"`
}

// MoveToRequest is the body of a move request.
type MoveToRequest struct {
	TargetView *view.ViewMsg `json:"target_view"`
}

// decodeBody unmarshals a JSON body into v. An empty body leaves v untouched.
func decodeBody(c *fiber.Ctx, v interface{}) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request: "+err.Error())
	}
	return nil
}

// handleInitialize accepts and declines a planning space initialization
func (s *Server) handleInitialize(c *fiber.Ctx) error {
	var raw json.RawMessage
	if err := decodeBody(c, &raw); err != nil {
		return err
	}
	accepted := s.adapter.InitializePlanningSpace(planning.InitializationInfo{Raw: raw})
	return c.JSON(fiber.Map{"accepted": accepted})
}

func (s *Server) handleViewSpace(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"view_space": s.adapter.PlanningSpace().ToMsg()})
}

func (s *Server) handleCurrentView(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"view": s.adapter.CurrentView().ToMsg()})
}

func (s *Server) handlePlanningFrame(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"frame": s.adapter.PlanningFrame()})
}

// handleRetrieveData triggers capture at the current view
func (s *Server) handleRetrieveData(c *fiber.Ctx) error {
	info, err := s.adapter.RetrieveData(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"receive_info": info,
			"error":        err.Error(),
		})
	}
	return c.JSON(fiber.Map{"receive_info": info})
}

// handleMovementCost prices a move; without a start view the estimate
// for the target alone is returned
func (s *Server) handleMovementCost(c *fiber.Ctx) error {
	var req MovementCostRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	if req.TargetView == nil {
		return fiber.NewError(fiber.StatusBadRequest, "target_view is required")
	}

	target := view.FromMsg(*req.TargetView)
	var cost planning.MovementCost
	if req.StartView == nil {
		cost = s.adapter.MovementCost(target)
	} else {
		cost = s.adapter.MovementCostBetween(view.FromMsg(*req.StartView), target, req.AdditionalInformation)
	}
	return c.JSON(fiber.Map{"movement_cost": cost})
}

// handleMoveTo moves the camera and announces the new view to stream clients
func (s *Server) handleMoveTo(c *fiber.Ctx) error {
	var req MoveToRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	if req.TargetView == nil {
		return fiber.NewError(fiber.StatusBadRequest, "target_view is required")
	}

	ok, err := s.adapter.MoveTo(c.UserContext(), view.FromMsg(*req.TargetView))
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	if ok && s.tfHub != nil {
		current := s.adapter.CurrentView()
		if err := s.announceView(current); err != nil {
			s.logger.Debug("view announcement failed", "view", current.Index, "error", err)
		}
	}
	return c.JSON(fiber.Map{"success": ok})
}

// announceView tells stream clients which view the camera is at.
func (s *Server) announceView(v view.View) error {
	msg, err := protocol.NewViewMessage(v.Index, v.Pose)
	if err != nil {
		return err
	}
	return s.tfHub.Publish(msg)
}

func (s *Server) handleSetupTF(c *fiber.Ctx) error {
	s.adapter.SetupTF()
	return c.JSON(fiber.Map{})
}

// StatusResponse is the process status
type StatusResponse struct {
	planning.Stats
	Frame     string `json:"frame"`
	TFClients int    `json:"tf_clients"`
}

// handleStatus returns move counters and stream state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	resp := StatusResponse{
		Stats: s.adapter.Stats(),
		Frame: s.adapter.PlanningFrame(),
	}
	if s.tfHub != nil {
		resp.TFClients = s.tfHub.ClientCount()
	}
	return c.JSON(resp)
}

// handleTFWS streams transforms and view changes until the client leaves
func (s *Server) handleTFWS(c *websocket.Conn) {
	hub.NewClient(s.tfHub, c).Run()
}

