package stream

import (
	"context"
	"errors"
	"sync"

	"github.com/prismled/prism-core/internal/infrastructure/logging"
	"github.com/prismled/prism-core/internal/scope"
)

// ErrShutdown is returned by EnsureListening after Shutdown.
var ErrShutdown = errors.New("stream: distributor is shut down")

// Source establishes the backend frame subscription. Listen returns once
// the subscription is active; frames are delivered asynchronously until
// the context is cancelled.
type Source interface {
	Listen(ctx context.Context, deliver func(port string, colors []scope.Color)) error
}

// Subscriber receives color frames for one port.
type Subscriber func(colors []scope.Color)

// Distributor multiplexes one backend frame stream to many subscribers
// and caches the latest frame per port.
//
// Cache updates and subscriber notification happen under one mutex, so a
// subscriber is never invoked after its unsubscribe function returns.
// Subscribers must not call back into the Distributor.
type Distributor struct {
	source Source
	logger *logging.Logger

	mu        sync.Mutex
	latest    map[string][]scope.Color
	subs      map[string]map[int]Subscriber
	nextSubID int
	listening bool
	closed    bool
	attempt   *listenAttempt
}

type listenAttempt struct {
	done chan struct{}
	err  error
}

// New creates a distributor over the given frame source.
func New(source Source, logger *logging.Logger) *Distributor {
	return &Distributor{
		source: source,
		logger: logger.With("component", "stream"),
		latest: make(map[string][]scope.Color),
		subs:   make(map[string]map[int]Subscriber),
	}
}

// EnsureListening starts the backend subscription if it is not already
// running. Concurrent callers share a single attempt; a failed attempt
// is retried by the next caller.
func (d *Distributor) EnsureListening(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrShutdown
	}
	if d.listening {
		d.mu.Unlock()
		return nil
	}
	if a := d.attempt; a != nil {
		d.mu.Unlock()
		select {
		case <-a.done:
			return a.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	a := &listenAttempt{done: make(chan struct{})}
	d.attempt = a
	d.mu.Unlock()

	err := d.source.Listen(ctx, d.dispatch)

	d.mu.Lock()
	d.attempt = nil
	if err == nil {
		d.listening = true
	} else {
		d.logger.Warn("frame subscription failed", "error", err)
	}
	d.mu.Unlock()

	a.err = err
	close(a.done)
	return err
}

// dispatch stores a frame and notifies that port's subscribers.
func (d *Distributor) dispatch(port string, colors []scope.Color) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.latest[port] = colors
	for _, sub := range d.subs[port] {
		sub(colors)
	}
}

// Subscribe registers a consumer for one port's frames. If a frame is
// already cached it is replayed synchronously before Subscribe returns.
// The returned function removes the subscription and is safe to call
// more than once.
func (d *Distributor) Subscribe(port string, fn Subscriber) func() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return func() {}
	}
	id := d.nextSubID
	d.nextSubID++
	if d.subs[port] == nil {
		d.subs[port] = make(map[int]Subscriber)
	}
	d.subs[port][id] = fn
	cached := d.latest[port]
	if cached != nil {
		fn(cached)
	}
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.subs[port], id)
			if len(d.subs[port]) == 0 {
				delete(d.subs, port)
			}
		})
	}
}

// GetLatest returns the most recent frame for a port, if any.
func (d *Distributor) GetLatest(port string) ([]scope.Color, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	colors, ok := d.latest[port]
	return colors, ok
}

// SubscriberCount reports the live subscriptions for a port.
func (d *Distributor) SubscriberCount(port string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs[port])
}

// Shutdown stops delivery and drops all subscribers and cached frames.
// The underlying source is stopped by cancelling the context passed to
// EnsureListening.
func (d *Distributor) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.subs = make(map[string]map[int]Subscriber)
	d.latest = make(map[string][]scope.Color)
}
