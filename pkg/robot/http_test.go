package robot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/teslashibe/go-flycam/pkg/movement"
)

// fakeBridge records set_model_state requests.
type fakeBridge struct {
	mu       sync.Mutex
	requests []setModelStateRequest
	reply    setModelStateResponse
	status   int
}

func (f *fakeBridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/gazebo/status":
		w.WriteHeader(http.StatusOK)
	case "/gazebo/set_model_state":
		var req setModelStateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.requests = append(f.requests, req)
		status, reply := f.status, f.reply
		f.mu.Unlock()

		if status != 0 && status != http.StatusOK {
			http.Error(w, "bridge down", status)
			return
		}
		json.NewEncoder(w).Encode(reply)
	default:
		http.NotFound(w, r)
	}
}

func newBridge(t *testing.T, f *fakeBridge) *HTTPController {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewHTTPController(srv.URL + "/gazebo/").WithClient(srv.Client())
}

func TestHTTPController_SetModelPose(t *testing.T) {
	bridge := &fakeBridge{reply: setModelStateResponse{Success: true}}
	ctrl := newBridge(t, bridge)
	ctrl.ReferenceFrame = "world"

	pose := movement.NewPose(1, 2, 3, 0.5, 0.5, -0.5, 0.5)
	if err := ctrl.SetModelPose(context.Background(), "flying_stereo_cam", pose); err != nil {
		t.Fatalf("SetModelPose: %v", err)
	}

	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	if len(bridge.requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(bridge.requests))
	}
	got := bridge.requests[0].ModelState
	if got.ModelName != "flying_stereo_cam" {
		t.Errorf("model = %q", got.ModelName)
	}
	if got.ReferenceFrame != "world" {
		t.Errorf("reference frame = %q", got.ReferenceFrame)
	}
	if got.Pose.Position.Z != 3 || got.Pose.Orientation.Y != -0.5 {
		t.Errorf("pose not forwarded: %+v", got.Pose)
	}
}

func TestHTTPController_ReportedFailure(t *testing.T) {
	bridge := &fakeBridge{reply: setModelStateResponse{Success: false, StatusMessage: "model not found"}}
	ctrl := newBridge(t, bridge)

	err := ctrl.SetModelPose(context.Background(), "ghost", movement.Identity())

	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected *RejectedError, got %v", err)
	}
	if rejected.Message != "model not found" {
		t.Errorf("message = %q", rejected.Message)
	}
	if !errors.Is(err, ErrRejected) {
		t.Error("error should match ErrRejected")
	}
}

func TestHTTPController_HTTPStatusFailure(t *testing.T) {
	bridge := &fakeBridge{status: http.StatusServiceUnavailable}
	ctrl := newBridge(t, bridge)

	err := ctrl.SetModelPose(context.Background(), "flying_stereo_cam", movement.Identity())

	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected *RejectedError, got %v", err)
	}
	if rejected.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rejected.StatusCode)
	}
}

func TestHTTPController_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ctrl := NewHTTPController(url)
	err := ctrl.SetModelPose(context.Background(), "flying_stereo_cam", movement.Identity())
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	if err := ctrl.Ping(context.Background()); !errors.Is(err, ErrUnreachable) {
		t.Fatalf("Ping: expected ErrUnreachable, got %v", err)
	}
}

func TestHTTPController_Ping(t *testing.T) {
	ctrl := newBridge(t, &fakeBridge{})
	if err := ctrl.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
