package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pawnhall/gameclient/checkout"
	"github.com/pawnhall/gameclient/config"
	"github.com/pawnhall/gameclient/notify"
	"github.com/pawnhall/gameclient/service"
	"github.com/pawnhall/gameclient/session"
)

// Server is the local HTTP gateway a display layer polls. It renders
// nothing; every endpoint returns JSON snapshots of the client's state.
type Server struct {
	machine  *session.Machine
	chat     *service.Chat
	workflow *checkout.Workflow
	reporter *notify.Reporter
	cfg      *config.Config
	router   *mux.Router
}

// NewServer creates a new gateway server.
func NewServer(machine *session.Machine, chat *service.Chat, workflow *checkout.Workflow, reporter *notify.Reporter, cfg *config.Config) *Server {
	s := &Server{
		machine:  machine,
		chat:     chat,
		workflow: workflow,
		reporter: reporter,
		cfg:      cfg,
		router:   mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session observation
	api.HandleFunc("/session", s.handleGetSession).Methods("GET")
	api.HandleFunc("/session/peers", s.handleGetPeers).Methods("GET")

	// Chat
	api.HandleFunc("/chat", s.handleSendChat).Methods("POST")

	// Servers-list scan
	api.HandleFunc("/servers", s.handleGetServers).Methods("GET")
	api.HandleFunc("/servers/scan", s.handleStartScan).Methods("POST")

	// Notifications
	api.HandleFunc("/notifications", s.handleListNotifications).Methods("GET")
	api.HandleFunc("/notifications/{id}", s.handleDismissNotification).Methods("DELETE")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Session Handlers

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"state": s.machine.State().String(),
	}
	if self, ok := s.machine.Self(); ok {
		resp["self"] = self
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPeers(w http.ResponseWriter, r *http.Request) {
	// The peer list is delivered on demand; an HTTP GET is exactly such a
	// demand.
	s.machine.RequestPeers()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"peers": s.machine.Peers(),
	})
}

// Chat Handlers

func (s *Server) handleSendChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	if err := s.chat.Say(req.Text); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "sent",
	})
}

// Scan Handlers

func (s *Server) handleGetServers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"servers":  s.cfg.Servers,
		"scanning": s.workflow.Scanning(),
		"statuses": s.workflow.Last(),
	})
}

func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	// The scan outlives the request, so it must not inherit the request
	// context.
	if err := s.workflow.Start(context.Background(), s.cfg.Servers); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "scan started",
	})
}

// Notification Handlers

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": s.reporter.Active(),
	})
}

func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if !s.reporter.Dismiss(id) {
		respondError(w, http.StatusNotFound, "notification not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "dismissed",
	})
}
