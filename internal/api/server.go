package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/amterp/cardman/internal/kv"
	"github.com/amterp/cardman/internal/service"
)

// Server wraps the HTTP server for the web frontend.
type Server struct {
	httpServer *http.Server
	watcher    *StorageWatcher
	wsHub      *WebSocketHub
	log        *zap.SugaredLogger
}

// NewServer creates a server for the card service on port. When storage
// keeps the blob in a file, that file is watched so writes from other
// cardman processes reach connected clients.
func NewServer(cards *service.CardService, storage kv.Storage, key string, port int, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	mux := http.NewServeMux()
	wsHub := NewWebSocketHub(cards, log)
	mux.HandleFunc("GET /api/v1/ws", wsHub.ServeWS)
	NewHandler(cards, log).RegisterRoutes(mux)

	var watcher *StorageWatcher
	if locator, ok := storage.(kv.Locator); ok {
		var err error
		watcher, err = NewStorageWatcher(locator.Location(key), cards, log)
		if err != nil {
			log.Warnw("failed to create storage watcher", "error", err)
		}
	}

	return &Server{
		httpServer: &http.Server{
			Addr:        fmt.Sprintf(":%d", port),
			Handler:     Logging(log.Named("http"))(Cors(mux)),
			ReadTimeout: 15 * time.Second,
		},
		watcher: watcher,
		wsHub:   wsHub,
		log:     log,
	}
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests. Blocks until shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve handles requests on ln. Blocks until shutdown; a clean shutdown
// returns nil.
func (s *Server) Serve(ln net.Listener) error {
	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			s.log.Warnw("failed to start storage watcher", "error", err)
		}
	}

	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.log.Warnw("failed to stop storage watcher", "error", err)
		}
	}
	s.wsHub.Close()

	return s.httpServer.Shutdown(ctx)
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
