package retrieval

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-flycam/internal/httpc"
)

// DefaultTimeout bounds one capture. Stereo captures with point cloud
// generation are slow.
const DefaultTimeout = 30 * time.Second

// HTTPRetriever calls the data service's retrieve endpoint.
type HTTPRetriever struct {
	BaseURL string
	client  *http.Client
}

// NewHTTPRetriever creates a retriever for the service at baseURL.
func NewHTTPRetriever(baseURL string) *HTTPRetriever {
	return &HTTPRetriever{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  httpc.NewClient(DefaultTimeout),
	}
}

// WithClient overrides the HTTP client. Intended for tests.
func (h *HTTPRetriever) WithClient(c *http.Client) *HTTPRetriever {
	h.client = c
	return h
}

type retrieveRequest struct {
	RequestID string `json:"request_id"`
	Path      string `json:"path,omitempty"`
}

type retrieveResponse struct {
	ReceiveInfo ReceiveInfo `json:"receive_info"`
}

// Retrieve requests a capture stored under pathHint.
func (h *HTTPRetriever) Retrieve(ctx context.Context, pathHint string) (ReceiveInfo, error) {
	req := retrieveRequest{
		RequestID: uuid.NewString(),
		Path:      pathHint,
	}

	var resp retrieveResponse
	err := httpc.PostJSON(ctx, h.client, h.BaseURL+"/retrieve_data", req, &resp)
	if err == nil {
		return resp.ReceiveInfo, nil
	}

	if isTimeout(err) {
		return ReceptionTimeout, fmt.Errorf("%w: request %s timed out: %v", ErrUnavailable, req.RequestID, err)
	}
	return ReceptionFailed, fmt.Errorf("%w: request %s: %v", ErrUnavailable, req.RequestID, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
