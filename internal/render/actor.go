package render

import (
	"fmt"
	"image"

	"github.com/prismled/prism-core/internal/infrastructure/logging"
	"github.com/prismled/prism-core/internal/layout"
)

type initMsg struct {
	width, height int
	pixelRatio    float64
}

type layoutMsg struct {
	layout layout.Multi
}

type frameMsg struct {
	frame Frame
}

type disposeMsg struct{}

// Actor owns a drawing surface on a dedicated goroutine. Layout and
// frame messages may arrive in any order from different producers; the
// actor repaints whenever it holds both, and silently retains whichever
// half arrived first until the other shows up.
type Actor struct {
	msgs    chan any
	done    chan struct{}
	onPaint func(image.Image)
	logger  *logging.Logger
}

// actorQueueSize absorbs frame bursts between repaints.
const actorQueueSize = 16

// NewActor starts the render loop. onPaint receives every finished
// image on the actor goroutine and must not block for long.
func NewActor(onPaint func(image.Image), logger *logging.Logger) *Actor {
	a := &Actor{
		msgs:    make(chan any, actorQueueSize),
		done:    make(chan struct{}),
		onPaint: onPaint,
		logger:  logger.With("component", "render_actor"),
	}
	go a.run()
	return a
}

// Init sets the surface dimensions. Until Init arrives nothing paints.
func (a *Actor) Init(width, height int, pixelRatio float64) {
	a.send(initMsg{width: width, height: height, pixelRatio: pixelRatio})
}

// UpdateLayout replaces the current layout and triggers a repaint if a
// frame is already held.
func (a *Actor) UpdateLayout(l layout.Multi) {
	a.send(layoutMsg{layout: l})
}

// PushFrame replaces the current frame and triggers a repaint if a
// layout is already held.
func (a *Actor) PushFrame(f Frame) {
	a.send(frameMsg{frame: f})
}

// Dispose stops the actor. Messages sent after Dispose are dropped.
func (a *Actor) Dispose() {
	a.send(disposeMsg{})
}

// Done is closed once the actor goroutine has exited.
func (a *Actor) Done() <-chan struct{} { return a.done }

func (a *Actor) send(msg any) {
	select {
	case a.msgs <- msg:
	case <-a.done:
	}
}

func (a *Actor) run() {
	defer close(a.done)

	var (
		width, height int
		pixelRatio    float64
		lay           *layout.Multi
		frame         *Frame
	)

	for msg := range a.msgs {
		switch m := msg.(type) {
		case initMsg:
			width, height, pixelRatio = m.width, m.height, m.pixelRatio
		case layoutMsg:
			l := m.layout
			lay = &l
		case frameMsg:
			f := m.frame
			frame = &f
		case disposeMsg:
			return
		default:
			a.logger.Warn("unknown render message", "type", fmt.Sprintf("%T", msg))
			continue
		}

		if width <= 0 || height <= 0 || lay == nil || frame == nil {
			continue
		}
		a.onPaint(Paint(*lay, *frame, width, height, pixelRatio))
	}
}
