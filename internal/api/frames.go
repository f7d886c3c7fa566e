package api

import (
	"context"
	"sync"
	"time"

	"github.com/prismled/prism-core/internal/infrastructure/logging"
	"github.com/prismled/prism-core/internal/scope"
	"github.com/prismled/prism-core/internal/stream"
)

// FrameEvent is the payload broadcast on a "frames:<port>" channel.
type FrameEvent struct {
	Port   string        `json:"port"`
	Colors []scope.Color `json:"colors"`
}

// frameRelays bridges the colour stream distributor to the WebSocket hub.
// One relay per known port; each relay throttles broadcasts so slow frames
// pass through immediately and bursts collapse to the latest frame.
type frameRelays struct {
	stream   *stream.Distributor
	hub      *Hub
	interval time.Duration
	logger   *logging.Logger

	mu     sync.Mutex
	relays map[string]*frameRelay
}

type frameRelay struct {
	throttler *stream.Throttler
	unsub     func()
}

func newFrameRelays(dist *stream.Distributor, hub *Hub, interval time.Duration, logger *logging.Logger) *frameRelays {
	return &frameRelays{
		stream:   dist,
		hub:      hub,
		interval: interval,
		logger:   logger,
		relays:   make(map[string]*frameRelay),
	}
}

// sync reconciles the relay set against the current port list. Ports no
// longer present are unsubscribed; new ports get a throttled subscription.
func (f *frameRelays) sync(ctx context.Context, ports []string) {
	if f.stream == nil {
		return
	}
	if err := f.stream.EnsureListening(ctx); err != nil {
		f.logger.Warn("colour stream unavailable", "error", err)
		return
	}

	want := make(map[string]struct{}, len(ports))
	for _, port := range ports {
		want[port] = struct{}{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for port, relay := range f.relays {
		if _, ok := want[port]; !ok {
			relay.unsub()
			relay.throttler.Stop()
			delete(f.relays, port)
		}
	}

	for port := range want {
		if _, ok := f.relays[port]; ok {
			continue
		}
		channel := FramesChannel(port)
		p := port
		throttler := stream.NewThrottler(f.interval, func(colors []scope.Color) {
			f.hub.Broadcast(channel, FrameEvent{Port: p, Colors: colors})
		})
		unsub := f.stream.Subscribe(port, throttler.Offer)
		f.relays[port] = &frameRelay{throttler: throttler, unsub: unsub}
	}
}

// stopAll tears down every relay. Used on server shutdown.
func (f *frameRelays) stopAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for port, relay := range f.relays {
		relay.unsub()
		relay.throttler.Stop()
		delete(f.relays, port)
	}
}
