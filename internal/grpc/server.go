package grpc

import (
	"errors"
	"net"
	"sync"

	"google.golang.org/grpc"

	"github.com/clearbid/auctiond/internal/core/auction"
	"github.com/clearbid/auctiond/internal/logging"
)

// Server hosts the auction query handlers over gRPC.
type Server struct {
	mu sync.RWMutex

	grpcServer *grpc.Server
	engine     *auction.Engine
	config     *ServerConfig
	log        logging.Logger

	listener net.Listener
	running  bool
}

// NewServer creates a gRPC server over the given engine.
func NewServer(cfg *ServerConfig, engine *auction.Engine, log logging.Logger) (*Server, error) {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if engine == nil {
		return nil, errors.New("grpc: engine is required")
	}
	if log == nil {
		log = logging.Disabled
	}

	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
		grpc.ForceServerCodec(jsonCodec{}),
	}
	srv := &Server{
		grpcServer: grpc.NewServer(opts...),
		engine:     engine,
		config:     cfg,
		log:        log,
	}
	srv.grpcServer.RegisterService(&queryServiceDesc, srv)
	return srv, nil
}

// Start begins accepting connections. It blocks until the server stops.
func (s *Server) Start() error {
	listener, err := s.listen()
	if err != nil {
		return err
	}
	return s.grpcServer.Serve(listener)
}

// StartAsync begins accepting connections in a goroutine and returns once
// the listener is bound.
func (s *Server) StartAsync() error {
	listener, err := s.listen()
	if err != nil {
		return err
	}
	go func() {
		if err := s.grpcServer.Serve(listener); err != nil {
			s.log.Errorf("grpc serve: %v", err)
		}
	}()
	return nil
}

func (s *Server) listen() (net.Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, errors.New("server is already running")
	}
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return nil, err
	}
	s.listener = listener
	s.running = true
	s.log.Infof("grpc listening on %s", listener.Addr())
	return listener, nil
}

// Stop gracefully stops the server, draining open connections.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.grpcServer.GracefulStop()
	s.running = false
}

// IsRunning reports whether the server is accepting connections.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Address returns the bound listen address, empty if not running.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// GetGRPCServer returns the underlying grpc.Server so callers can register
// additional services before Start.
func (s *Server) GetGRPCServer() *grpc.Server {
	return s.grpcServer
}
