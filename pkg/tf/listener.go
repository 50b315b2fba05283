package tf

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-flycam/internal/log"
	"github.com/teslashibe/go-flycam/pkg/protocol"
)

// Listener receives transforms from an adapter's /ws/tf stream.
type Listener struct {
	conn   *websocket.Conn
	logger *slog.Logger
}

// Dial connects to a transform stream, e.g. ws://localhost:8088/ws/tf.
func Dial(ctx context.Context, url string, logger *slog.Logger) (*Listener, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("tf: dial %s: %w", url, err)
	}
	return &Listener{
		conn:   conn,
		logger: log.OrDefault(logger).With("component", "tf-listener"),
	}, nil
}

// Run decodes transforms into out until the connection closes or ctx is
// cancelled. Other message types are skipped. out is not closed.
func (l *Listener) Run(ctx context.Context, out chan<- Transform) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			l.conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("tf: read: %w", err)
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			l.logger.Debug("skipping malformed message", "error", err)
			continue
		}
		if msg.Type != protocol.TypeTransform {
			continue
		}
		td, err := msg.GetTransformData()
		if err != nil {
			l.logger.Debug("skipping bad transform", "error", err)
			continue
		}

		select {
		case out <- fromData(td, msg.Timestamp):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close closes the underlying connection.
func (l *Listener) Close() error {
	return l.conn.Close()
}
