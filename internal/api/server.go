// Package api provides the HTTP REST API and WebSocket server for Prism Core.
//
// It exposes the device snapshot, scope tree, zone/layout projections,
// rendered previews, and scope mutation endpoints to UI clients, and pushes
// live colour frames over WebSocket.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prismled/prism-core/internal/infrastructure/config"
	"github.com/prismled/prism-core/internal/infrastructure/logging"
	"github.com/prismled/prism-core/internal/infrastructure/mqtt"
	"github.com/prismled/prism-core/internal/inventory"
	"github.com/prismled/prism-core/internal/stream"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	WS         config.WebSocketConfig
	Logger     *logging.Logger
	Registry   *inventory.Registry
	ConfigRepo inventory.ConfigRepository // optional: scope config persistence
	MQTT       *mqtt.Client               // optional: snapshot/frame/command channel
	Topics     mqtt.Topics
	QoS        byte
	Stream     *stream.Distributor // optional: live frame relay
	Throttle   time.Duration       // per-port frame broadcast spacing
	PixelRatio float64
	Version    string
}

// Server is the HTTP API server for Prism Core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg        config.APIConfig
	wsCfg      config.WebSocketConfig
	logger     *logging.Logger
	registry   *inventory.Registry
	configRepo inventory.ConfigRepository
	mqtt       *mqtt.Client
	topics     mqtt.Topics
	qos        byte
	stream     *stream.Distributor
	throttle   time.Duration
	pixelRatio float64
	version    string
	server     *http.Server
	hub        *Hub
	relays     *frameRelays
	cancel     context.CancelFunc // cancels background goroutines on Close()

	// restored tracks device ids whose persisted config has been applied,
	// so rescans do not clobber live edits with stale stored state.
	restoredMu sync.Mutex
	restored   map[string]struct{}
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("device registry is required")
	}
	// MQTT is optional; without it snapshots, commands and frame relay are
	// disabled but reads and WebSocket control messages still function.

	if deps.Throttle <= 0 {
		deps.Throttle = stream.DefaultThrottleInterval
	}
	if deps.PixelRatio <= 0 {
		deps.PixelRatio = 1.0
	}

	return &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		logger:     deps.Logger,
		registry:   deps.Registry,
		configRepo: deps.ConfigRepo,
		mqtt:       deps.MQTT,
		topics:     deps.Topics,
		qos:        deps.QoS,
		stream:     deps.Stream,
		throttle:   deps.Throttle,
		pixelRatio: deps.PixelRatio,
		version:    deps.Version,
		restored:   make(map[string]struct{}),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, subscribes to the retained
// device snapshot topic, starts the frame relay, and launches the HTTP
// listener in a background goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	s.relays = newFrameRelays(s.stream, s.hub, s.throttle, s.logger)

	// Pick up the retained device list and follow rescans.
	if err := s.subscribeDeviceSnapshots(srvCtx); err != nil {
		s.logger.Warn("failed to subscribe to device snapshots", "error", err)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub, snapshot subscription)
	if s.cancel != nil {
		s.cancel()
	}
	if s.relays != nil {
		s.relays.stopAll()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
