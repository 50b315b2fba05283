// Command tf-echo prints the transforms streamed by a flycam adapter.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/teslashibe/go-flycam/internal/log"
	"github.com/teslashibe/go-flycam/pkg/tf"
)

func main() {
	url := flag.String("url", "ws://localhost:8088/ws/tf", "Transform stream URL")
	count := flag.Int("n", 0, "Stop after n transforms (0 = forever)")
	flag.Parse()

	log.Init("info", "text")
	logger := log.Component("tf-echo")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l, err := tf.Dial(ctx, *url, log.L())
	if err != nil {
		logger.Error("dial failed", "error", err)
		os.Exit(1)
	}
	defer l.Close()

	out := make(chan tf.Transform, 16)
	errs := make(chan error, 1)
	go func() { errs <- l.Run(ctx, out) }()

	frames := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	seen := 0
	for {
		select {
		case t := <-out:
			q := t.Rotation
			fmt.Printf("%s  %s  t=(%.3f %.3f %.3f)  q=(%.3f %.3f %.3f %.3f)\n",
				dim(t.Stamp.Format("15:04:05.000")), frames(t.ParentFrame+" -> "+t.ChildFrame),
				t.Translation.X, t.Translation.Y, t.Translation.Z,
				q.Imag, q.Jmag, q.Kmag, q.Real)
			seen++
			if *count > 0 && seen >= *count {
				return
			}
		case err := <-errs:
			if err != nil && ctx.Err() == nil {
				logger.Error("stream ended", "error", err)
				os.Exit(1)
			}
			return
		}
	}
}
