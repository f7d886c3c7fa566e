package render

import (
	"image"
	"sync"
	"testing"
	"time"

	"github.com/prismled/prism-core/internal/infrastructure/config"
	"github.com/prismled/prism-core/internal/infrastructure/logging"
	"github.com/prismled/prism-core/internal/scope"
)

type paintRecorder struct {
	mu     sync.Mutex
	images []image.Image
}

func (r *paintRecorder) record(img image.Image) {
	r.mu.Lock()
	r.images = append(r.images, img)
	r.mu.Unlock()
}

func (r *paintRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.images)
}

func (r *paintRecorder) waitFor(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.count() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d paints, have %d", n, r.count())
}

func actorLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, "test")
}

func TestActor_PaintsOnlyWithLayoutAndFrame(t *testing.T) {
	rec := &paintRecorder{}
	a := NewActor(rec.record, actorLogger())
	defer a.Dispose()

	a.Init(40, 40, 1)
	a.PushFrame(Frame{Colors: []scope.Color{{R: 255}}})
	time.Sleep(50 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatal("painted before any layout arrived")
	}

	a.UpdateLayout(singleBlockLayout())
	rec.waitFor(t, 1)
}

func TestActor_FrameBeforeInitIsRetained(t *testing.T) {
	rec := &paintRecorder{}
	a := NewActor(rec.record, actorLogger())
	defer a.Dispose()

	a.PushFrame(Frame{Colors: []scope.Color{{G: 255}}})
	a.UpdateLayout(singleBlockLayout())
	time.Sleep(50 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatal("painted without surface dimensions")
	}

	a.Init(40, 40, 1)
	rec.waitFor(t, 1)
}

func TestActor_RepaintsOnEachFrame(t *testing.T) {
	rec := &paintRecorder{}
	a := NewActor(rec.record, actorLogger())
	defer a.Dispose()

	a.Init(40, 40, 1)
	a.UpdateLayout(singleBlockLayout())
	a.PushFrame(Frame{Colors: []scope.Color{{R: 255}}})
	a.PushFrame(Frame{Colors: []scope.Color{{G: 255}}})
	a.PushFrame(Frame{Colors: []scope.Color{{B: 255}}})
	rec.waitFor(t, 3)
}

func TestActor_DisposeStopsTheLoop(t *testing.T) {
	rec := &paintRecorder{}
	a := NewActor(rec.record, actorLogger())

	a.Init(40, 40, 1)
	a.UpdateLayout(singleBlockLayout())
	a.PushFrame(Frame{Colors: []scope.Color{{R: 255}}})
	rec.waitFor(t, 1)

	a.Dispose()
	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("actor did not stop after dispose")
	}

	a.PushFrame(Frame{Colors: []scope.Color{{G: 255}}})
	time.Sleep(50 * time.Millisecond)
	if rec.count() != 1 {
		t.Errorf("paint after dispose: %d images", rec.count())
	}

	a.Dispose() // idempotent
}

func TestActor_UnknownMessageIsIgnored(t *testing.T) {
	rec := &paintRecorder{}
	a := NewActor(rec.record, actorLogger())
	defer a.Dispose()

	a.Init(40, 40, 1)
	a.UpdateLayout(singleBlockLayout())
	a.send("not a render message")
	a.PushFrame(Frame{Colors: []scope.Color{{R: 255}}})
	rec.waitFor(t, 1)
}

func TestActor_LayoutChangeRepaintsWithHeldFrame(t *testing.T) {
	rec := &paintRecorder{}
	a := NewActor(rec.record, actorLogger())
	defer a.Dispose()

	a.Init(60, 60, 1)
	a.UpdateLayout(singleBlockLayout())
	a.PushFrame(Frame{Colors: []scope.Color{{R: 255}}})
	rec.waitFor(t, 1)

	moved := singleBlockLayout()
	moved.Blocks[0].X = 20
	a.UpdateLayout(moved)
	rec.waitFor(t, 2)
}
