// Package server exposes the controller over HTTP: a websocket feed that
// pushes state snapshots and accepts commands, plus a small REST mirror.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/lox/autojack/internal/controller"
)

// Game is the part of the controller the server drives
type Game interface {
	Snapshot() controller.Snapshot
	ToggleAutoPlay() bool
	SetAutoPlay(on bool)
	Reset()
	Subscribe() (<-chan controller.Snapshot, func())
}

// Server represents the WebSocket server
type Server struct {
	addr        string
	game        Game
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	startOnce   sync.Once
	done        chan struct{}
}

// NewServer creates a new server for game
func NewServer(addr string, game Game, logger *log.Logger) *Server {
	return &Server{
		addr: addr,
		game: game,
		upgrader: websocket.Upgrader{
			// Viewers are served from anywhere
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		done:        make(chan struct{}),
	}
}

// Routes sets up the HTTP routes
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	r.Get("/state", s.handleState)
	r.Post("/autoplay", s.handleAutoPlay)
	r.Post("/reset", s.handleReset)
	r.Get("/ws", s.handleWebSocket)

	return r
}

// Start runs the connection hub until ctx is cancelled. It must be called
// before serving Routes.
func (s *Server) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.run(ctx)
	})
}

// ListenAndServe starts the hub and serves HTTP until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.Start(ctx)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("Shutting down server")
	return srv.Shutdown(shutdownCtx)
}

// run handles connection lifecycle and fans state out to every client
func (s *Server) run(ctx context.Context) {
	defer close(s.done)
	updates, unsubscribe := s.game.Subscribe()
	defer unsubscribe()

	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", total)
			s.sendState(conn, s.game.Snapshot())

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				_ = conn.Close()
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client disconnected", "total", total)

		case snap := <-updates:
			s.Broadcast(snap)

		case <-ctx.Done():
			s.closeAll()
			return
		}
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
		delete(s.connections, conn)
	}
}

// Broadcast sends a state message to every connected client
func (s *Server) Broadcast(snap controller.Snapshot) {
	msg, err := NewMessage(MessageTypeState, snap)
	if err != nil {
		s.logger.Error("Failed to encode state", "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if err := conn.SendMessage(msg); err == nil {
			count++
		}
	}
	s.logger.Debug("Broadcast state", "seq", snap.Seq, "state", snap.State, "recipients", count)
}

func (s *Server) sendState(conn *Connection, snap controller.Snapshot) {
	msg, err := NewMessage(MessageTypeState, snap)
	if err != nil {
		s.logger.Error("Failed to encode state", "error", err)
		return
	}
	_ = conn.SendMessage(msg)
}

// ConnectionCount returns the number of connected clients
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.game, s.logger)
	select {
	case s.register <- client:
	case <-s.done:
		_ = client.Close()
		return
	}
	client.Start()

	go func() {
		<-client.Done()
		select {
		case s.unregister <- client:
		case <-s.done:
		}
	}()
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.game.Snapshot())
}

// handleAutoPlay toggles auto-play, or sets it with ?on=true|false
func (s *Server) handleAutoPlay(w http.ResponseWriter, r *http.Request) {
	if v := r.URL.Query().Get("on"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "on must be true or false")
			return
		}
		s.game.SetAutoPlay(on)
	} else {
		s.game.ToggleAutoPlay()
	}
	s.writeJSON(w, http.StatusOK, AutoPlayData{AutoPlay: s.game.Snapshot().AutoPlay})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.game.Reset()
	s.writeJSON(w, http.StatusOK, s.game.Snapshot())
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Debug("Failed to write response", "error", err)
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorData{Code: http.StatusText(status), Message: message})
}
