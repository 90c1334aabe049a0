package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/gray-logic-irclimate/internal/bridges/ir"
	"github.com/nerrad567/gray-logic-irclimate/internal/climate"
	"github.com/nerrad567/gray-logic-irclimate/internal/device"
	"github.com/nerrad567/gray-logic-irclimate/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-irclimate/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-irclimate/internal/infrastructure/mqtt"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// DeviceStore reads the device registry. It is satisfied by *device.Registry.
type DeviceStore interface {
	ListDevices(ctx context.Context) ([]device.Device, error)
	GetDevice(ctx context.Context, id string) (*device.Device, error)
	GetDeviceBySlug(ctx context.Context, slug string) (*device.Device, error)
	GetStats() device.Stats
}

// HistoryStore reads state history. It is satisfied by
// *device.SQLiteStateHistoryRepository.
type HistoryStore interface {
	GetHistory(ctx context.Context, deviceID string, limit int) ([]device.StateHistoryEntry, error)
}

// Controller drives live units. It is satisfied by *ir.Bridge.
type Controller interface {
	Control(ctx context.Context, deviceID string, call climate.Call) (climate.State, error)
	State(deviceID string) (climate.State, bool)
	Health() ir.HealthMessage
	Statistics() ir.BridgeStatistics
}

// StateSubscriber is the MQTT subset the WebSocket relay needs.
type StateSubscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Devices  DeviceStore

	// Optional. Missing pieces turn the matching endpoints into 503s.
	History  HistoryStore
	Bridge   Controller
	MQTT     StateSubscriber
	Gatherer prometheus.Gatherer

	Version string
}

// Server is the HTTP API server.
//
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	secCfg    config.SecurityConfig
	logger    *logging.Logger
	devices   DeviceStore
	history   HistoryStore
	bridge    Controller
	mqtt      StateSubscriber
	gatherer  prometheus.Gatherer
	version   string
	startTime time.Time
	server    *http.Server
	listener  net.Listener
	hub       *Hub
	cancel    context.CancelFunc
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Devices == nil {
		return nil, fmt.Errorf("device registry is required")
	}
	if deps.Security.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}

	return &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		secCfg:    deps.Security,
		logger:    deps.Logger,
		devices:   deps.Devices,
		history:   deps.History,
		bridge:    deps.Bridge,
		mqtt:      deps.MQTT,
		gatherer:  deps.Gatherer,
		version:   deps.Version,
		startTime: time.Now(),
		hub:       NewHub(deps.WS, deps.Logger),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub, subscribes to unit state topics for the
// relay, and launches the HTTP listener in a background goroutine. The
// listener is bound before Start returns, so a port conflict is reported
// here.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	if err := s.subscribeStateUpdates(); err != nil {
		s.logger.Warn("failed to subscribe to state updates for WebSocket", "error", err)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}
	s.listener = ln

	go func() {
		s.logger.Info("API server listening", "address", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
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
