package retrieval

import (
	"context"
	"sync"
)

// Mock implements Retriever for testing.
type Mock struct {
	// RetrieveFunc is called when Retrieve is invoked. When nil, Retrieve
	// returns Received.
	RetrieveFunc func(ctx context.Context, pathHint string) (ReceiveInfo, error)

	mu    sync.Mutex
	paths []string
}

// Retrieve records pathHint and delegates to RetrieveFunc.
func (m *Mock) Retrieve(ctx context.Context, pathHint string) (ReceiveInfo, error) {
	m.mu.Lock()
	m.paths = append(m.paths, pathHint)
	m.mu.Unlock()

	if m.RetrieveFunc != nil {
		return m.RetrieveFunc(ctx, pathHint)
	}
	return Received, nil
}

// Paths returns every path hint received so far.
func (m *Mock) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

// Ensure Mock implements Retriever
var _ Retriever = (*Mock)(nil)
