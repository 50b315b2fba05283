package robot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/go-flycam/internal/httpc"
	"github.com/teslashibe/go-flycam/pkg/movement"
)

// DefaultCallTimeout bounds a single set-model-state call.
const DefaultCallTimeout = 2 * time.Second

// httpClient is shared by all HTTPController instances.
var httpClient = httpc.NewClient(DefaultCallTimeout)

// HTTPController talks to the simulator's model-state HTTP bridge.
type HTTPController struct {
	BaseURL string

	// ReferenceFrame is sent with every pose. Empty means world.
	ReferenceFrame string

	client *http.Client
}

// NewHTTPController creates a controller for the bridge at baseURL,
// e.g. "http://localhost:11345/gazebo".
func NewHTTPController(baseURL string) *HTTPController {
	return &HTTPController{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

// WithClient overrides the HTTP client. Intended for tests.
func (r *HTTPController) WithClient(c *http.Client) *HTTPController {
	r.client = c
	return r
}

type modelState struct {
	ModelName      string           `json:"model_name"`
	Pose           movement.PoseMsg `json:"pose"`
	ReferenceFrame string           `json:"reference_frame,omitempty"`
}

type setModelStateRequest struct {
	ModelState modelState `json:"model_state"`
}

type setModelStateResponse struct {
	Success       bool   `json:"success"`
	StatusMessage string `json:"status_message"`
}

// SetModelPose teleports model to pose.
func (r *HTTPController) SetModelPose(ctx context.Context, model string, pose movement.Pose) error {
	req := setModelStateRequest{
		ModelState: modelState{
			ModelName:      model,
			Pose:           pose.ToMsg(),
			ReferenceFrame: r.ReferenceFrame,
		},
	}

	var resp setModelStateResponse
	if err := httpc.PostJSON(ctx, r.client, r.BaseURL+"/set_model_state", req, &resp); err != nil {
		return classify(err)
	}
	if !resp.Success {
		return &RejectedError{Message: resp.StatusMessage}
	}
	return nil
}

// Ping checks that the bridge answers.
func (r *HTTPController) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/status", nil)
	if err != nil {
		return fmt.Errorf("failed to build status request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RejectedError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}

// classify maps transport and status failures onto the package errors.
func classify(err error) error {
	var se *httpc.StatusError
	if errors.As(err, &se) {
		return &RejectedError{StatusCode: se.StatusCode, Message: se.Body}
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
