// Package web provides an HTTP status page and button endpoint for the
// simulator.
package web

import (
	"context"
	"net"
	"net/http"

	"github.com/sweeney/binw2-sim/internal/status"
	"github.com/sweeney/binw2-sim/internal/topology"
)

// ButtonPresser queues a button press on the simulated board.
type ButtonPresser interface {
	RequestButtonPress()
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	table      *topology.Table
	button     ButtonPresser
}

// New creates a Server that reads state from the given tracker. button may
// be nil, in which case POST /button answers 503.
func New(addr string, tracker *status.Tracker, table *topology.Table, button ButtonPresser) *Server {
	s := &Server{tracker: tracker, table: table, button: button}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/button", s.handleButton)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler returns the server's request router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap, s.table)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleButton(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.button == nil {
		http.Error(w, "no button on this board", http.StatusServiceUnavailable)
		return
	}
	s.button.RequestButtonPress()
	w.WriteHeader(http.StatusAccepted)
}
