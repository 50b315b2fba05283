package planning

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"gonum.org/v1/gonum/num/quat"

	"github.com/teslashibe/go-flycam/internal/log"
	"github.com/teslashibe/go-flycam/pkg/movement"
	"github.com/teslashibe/go-flycam/pkg/retrieval"
	"github.com/teslashibe/go-flycam/pkg/robot"
	"github.com/teslashibe/go-flycam/pkg/view"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

// mockSimulator records all set-pose commands for testing
type mockSimulator struct {
	mu       sync.Mutex
	calls    []poseCall
	err      error
	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

type poseCall struct {
	model string
	pose  movement.Pose
}

func (m *mockSimulator) SetModelPose(ctx context.Context, model string, pose movement.Pose) error {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		seen := m.maxSeen.Load()
		if n <= seen || m.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, poseCall{model: model, pose: pose})
	return m.err
}

func (m *mockSimulator) setErr(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *mockSimulator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockSimulator) lastCall() poseCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return poseCall{}
	}
	return m.calls[len(m.calls)-1]
}

// triangleSpace has views at (0,0,0), (1,0,0) and (2,2,0).
func triangleSpace() *view.ViewSpace {
	return view.NewViewSpace(
		movement.NewPose(0, 0, 0, 1, 0, 0, 0),
		movement.NewPose(1, 0, 0, 1, 0, 0, 0),
		movement.NewPose(2, 2, 0, 1, 0, 0, 0),
	)
}

func newTestCamera(t *testing.T, sim robot.PoseSetter, ret retrieval.Retriever, settle time.Duration, clk clock.Clock) *FlyingStereoCamera {
	t.Helper()
	motion := NewMotionController(sim, MotionConfig{
		ModelName:      "flying_stereo_cam",
		CameraToBody:   DefaultCameraToBody(),
		SettleDuration: settle,
		Clock:          clk,
	}, log.Discard())

	cam, err := New(Config{
		PlanningFrame:  "dr_origin",
		DataFolder:     "/data",
		CapturePattern: "capture_set_%d",
	}, triangleSpace(), motion, ret, log.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cam
}

func TestNew_RefusesEmptyViewSpace(t *testing.T) {
	motion := NewMotionController(&mockSimulator{}, DefaultMotionConfig(), log.Discard())

	for name, space := range map[string]*view.ViewSpace{
		"empty": view.NewViewSpace(),
		"nil":   nil,
	} {
		cam, err := New(Config{}, space, motion, nil, log.Discard())
		if !errors.Is(err, ErrEmptyViewSpace) {
			t.Errorf("%s: expected ErrEmptyViewSpace, got %v", name, err)
		}
		if cam != nil {
			t.Errorf("%s: expected nil adapter", name)
		}
	}
}

func TestNew_StartsAtFirstView(t *testing.T) {
	cam := newTestCamera(t, &mockSimulator{}, nil, 0, nil)

	if cam.CurrentIndex() != 0 {
		t.Errorf("initial index = %d, want 0", cam.CurrentIndex())
	}
	if cam.CurrentView().Index != 0 {
		t.Errorf("initial view = %d, want 0", cam.CurrentView().Index)
	}
	if cam.PlanningFrame() != "dr_origin" {
		t.Errorf("frame = %q", cam.PlanningFrame())
	}
	if cam.PlanningSpace().Size() != 3 {
		t.Errorf("space size = %d", cam.PlanningSpace().Size())
	}
}

func TestStart_CommandsFirstView(t *testing.T) {
	sim := &mockSimulator{}
	cam := newTestCamera(t, sim, nil, 0, nil)

	if err := cam.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sim.callCount() != 1 {
		t.Fatalf("got %d commands, want 1", sim.callCount())
	}
	if cam.CurrentIndex() != 0 {
		t.Errorf("index = %d, want 0", cam.CurrentIndex())
	}
}

func TestScenario_TriangleCostsAndMove(t *testing.T) {
	sim := &mockSimulator{}
	cam := newTestCamera(t, sim, nil, 0, nil)
	space := cam.PlanningSpace()

	start := cam.CurrentView()
	if c := cam.MovementCostBetween(start, space.MustView(1), false); !floatEquals(c.Cost, 1.0) {
		t.Errorf("cost to view 1 = %v, want 1.0", c.Cost)
	}
	if c := cam.MovementCostBetween(start, space.MustView(2), false); !floatEquals(c.Cost, 2*math.Sqrt2) {
		t.Errorf("cost to view 2 = %v, want %v", c.Cost, 2*math.Sqrt2)
	}

	ok, err := cam.MoveTo(context.Background(), space.MustView(2))
	if err != nil || !ok {
		t.Fatalf("MoveTo: ok=%v err=%v", ok, err)
	}

	if cam.CurrentIndex() != 2 {
		t.Errorf("index = %d, want 2", cam.CurrentIndex())
	}
	cur := cam.CurrentView()
	if cur.Pose.Position.X != 2 || cur.Pose.Position.Y != 2 || cur.Pose.Position.Z != 0 {
		t.Errorf("current position = %v, want (2,2,0)", cur.Pose.Position)
	}
}

func TestMoveTo_AppliesCameraToBodyOffset(t *testing.T) {
	sim := &mockSimulator{}
	cam := newTestCamera(t, sim, nil, 0, nil)

	s := math.Sqrt2 / 2
	target := view.View{Index: 1, Pose: movement.NewPose(1, 0, 0, s, 0, 0, s)}
	if _, err := cam.MoveTo(context.Background(), target); err != nil {
		t.Fatalf("MoveTo: %v", err)
	}

	call := sim.lastCall()
	if call.model != "flying_stereo_cam" {
		t.Errorf("model = %q", call.model)
	}
	want := quat.Mul(target.Pose.Orientation, DefaultCameraToBody())
	got := call.pose.Orientation
	if !floatEquals(got.Real, want.Real) || !floatEquals(got.Imag, want.Imag) ||
		!floatEquals(got.Jmag, want.Jmag) || !floatEquals(got.Kmag, want.Kmag) {
		t.Errorf("body orientation = %v, want %v", got, want)
	}
	if call.pose.Position != target.Pose.Position {
		t.Errorf("body position = %v, want %v", call.pose.Position, target.Pose.Position)
	}
}

func TestMoveTo_FailureKeepsCurrentView(t *testing.T) {
	sim := &mockSimulator{}
	cam := newTestCamera(t, sim, nil, 0, nil)
	space := cam.PlanningSpace()

	if _, err := cam.MoveTo(context.Background(), space.MustView(1)); err != nil {
		t.Fatalf("first move: %v", err)
	}

	sim.setErr(fmt.Errorf("%w: connection refused", robot.ErrUnreachable))
	ok, err := cam.MoveTo(context.Background(), space.MustView(2))

	if ok {
		t.Error("MoveTo reported success for a failed command")
	}
	if !errors.Is(err, ErrMoveFailed) {
		t.Errorf("error should wrap ErrMoveFailed: %v", err)
	}
	if !errors.Is(err, robot.ErrUnreachable) {
		t.Errorf("error should keep the simulator cause: %v", err)
	}
	if cam.CurrentIndex() != 1 {
		t.Errorf("index = %d, want 1 (unchanged)", cam.CurrentIndex())
	}

	stats := cam.Stats()
	if stats.Moves != 1 || stats.FailedMoves != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestMoveTo_RejectsUnknownIndex(t *testing.T) {
	sim := &mockSimulator{}
	cam := newTestCamera(t, sim, nil, 0, nil)

	for _, idx := range []int{-1, 3} {
		ok, err := cam.MoveTo(context.Background(), view.View{Index: idx, Pose: movement.Identity()})
		if ok || !errors.Is(err, ErrInvalidView) {
			t.Errorf("index %d: ok=%v err=%v", idx, ok, err)
		}
	}
	if sim.callCount() != 0 {
		t.Errorf("simulator should not be commanded, got %d calls", sim.callCount())
	}
}

func TestMoveTo_AdvancesBeforeSettle(t *testing.T) {
	sim := &mockSimulator{}
	mock := clock.NewMock()
	cam := newTestCamera(t, sim, nil, time.Second, mock)

	done := make(chan struct{})
	go func() {
		defer close(done)
		cam.MoveTo(context.Background(), cam.PlanningSpace().MustView(2))
	}()

	deadline := time.Now().Add(2 * time.Second)
	for cam.CurrentIndex() != 2 {
		if time.Now().After(deadline) {
			t.Fatal("index never advanced")
		}
		time.Sleep(time.Millisecond)
	}

	select {
	case <-done:
		t.Fatal("MoveTo returned before the settle duration elapsed")
	default:
	}

	// Advance until the settle timer, which may not exist yet, fires.
	for {
		mock.Add(250 * time.Millisecond)
		select {
		case <-done:
			return
		case <-time.After(5 * time.Millisecond):
		}
		if time.Now().After(deadline) {
			t.Fatal("MoveTo never returned")
		}
	}
}

func TestMoveTo_SettleCancelled(t *testing.T) {
	cam := newTestCamera(t, &mockSimulator{}, nil, time.Hour, clock.NewMock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := cam.MoveTo(ctx, cam.PlanningSpace().MustView(1))
	if !ok || err != nil {
		t.Fatalf("cancelled settle should still report the issued move: ok=%v err=%v", ok, err)
	}
	if cam.CurrentIndex() != 1 {
		t.Errorf("index = %d, want 1", cam.CurrentIndex())
	}
}

func TestMoveTo_Serialized(t *testing.T) {
	sim := &mockSimulator{delay: 2 * time.Millisecond}
	cam := newTestCamera(t, sim, nil, 0, nil)
	space := cam.PlanningSpace()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Reader, like the transform publisher
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				if idx := cam.CurrentView().Index; !space.Contains(idx) {
					t.Errorf("read invalid index %d", idx)
					return
				}
			}
		}
	}()

	var movers sync.WaitGroup
	for i := 0; i < 10; i++ {
		movers.Add(1)
		go func(i int) {
			defer movers.Done()
			cam.MoveTo(context.Background(), space.MustView(i%space.Size()))
		}(i)
	}
	movers.Wait()
	close(stop)
	wg.Wait()

	if sim.maxSeen.Load() != 1 {
		t.Errorf("max concurrent commands = %d, want 1", sim.maxSeen.Load())
	}
	if sim.callCount() != 10 {
		t.Errorf("commands = %d, want 10", sim.callCount())
	}
}

func TestInitializePlanningSpace_AlwaysRejected(t *testing.T) {
	cam := newTestCamera(t, &mockSimulator{}, nil, 0, nil)

	for _, raw := range []string{"", "{}", `{"views":[]}`, "garbage"} {
		if cam.InitializePlanningSpace(InitializationInfo{Raw: []byte(raw)}) {
			t.Errorf("InitializePlanningSpace(%q) = true, want false", raw)
		}
	}
}

func TestRetrieveData_UsesCurrentViewPath(t *testing.T) {
	ret := &retrieval.Mock{}
	cam := newTestCamera(t, &mockSimulator{}, ret, 0, nil)

	cam.MoveTo(context.Background(), cam.PlanningSpace().MustView(2))
	info, err := cam.RetrieveData(context.Background())
	if err != nil {
		t.Fatalf("RetrieveData: %v", err)
	}
	if info != retrieval.Received {
		t.Errorf("info = %v", info)
	}

	paths := ret.Paths()
	want := filepath.Join("/data", "capture_set_2")
	if len(paths) != 1 || paths[0] != want {
		t.Errorf("paths = %v, want [%s]", paths, want)
	}
}

func TestRetrieveData_PropagatesFailure(t *testing.T) {
	ret := &retrieval.Mock{
		RetrieveFunc: func(ctx context.Context, path string) (retrieval.ReceiveInfo, error) {
			return retrieval.ReceptionTimeout, retrieval.ErrUnavailable
		},
	}
	cam := newTestCamera(t, &mockSimulator{}, ret, 0, nil)

	info, err := cam.RetrieveData(context.Background())
	if !errors.Is(err, ErrRetrievalFailed) || !errors.Is(err, retrieval.ErrUnavailable) {
		t.Errorf("err = %v", err)
	}
	if info != retrieval.ReceptionTimeout {
		t.Errorf("info = %v, want collaborator status", info)
	}
}

func TestRetrieveData_NoRetriever(t *testing.T) {
	cam := newTestCamera(t, &mockSimulator{}, nil, 0, nil)

	info, err := cam.RetrieveData(context.Background())
	if !errors.Is(err, ErrRetrievalFailed) {
		t.Errorf("err = %v", err)
	}
	if info != retrieval.ReceptionFailed {
		t.Errorf("info = %v", info)
	}
}
