package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Akif-Ali-10p/BotInterpreter/config"
	"github.com/Akif-Ali-10p/BotInterpreter/relay"
	"github.com/Akif-Ali-10p/BotInterpreter/storage"
)

// Server hosts the websocket relay endpoint and the REST surface the UI
// uses for message history and speaker settings.
type Server struct {
	httpServer *http.Server
	wsHandler  *relay.Handler
	store      storage.Store
	logger     *zap.SugaredLogger
}

func New(cfg *config.ServerConfig, wsHandler *relay.Handler, store storage.Store, logger *zap.SugaredLogger) *Server {
	s := &Server{
		wsHandler: wsHandler,
		store:     store,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.HandleWebSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/sessions/{id}/messages", s.handleGetMessages)
	mux.HandleFunc("DELETE /api/sessions/{id}/messages", s.handleClearMessages)
	mux.HandleFunc("GET /api/sessions/{id}/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/sessions/{id}/settings", s.handlePutSettings)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}

	return s
}

// Handler exposes the route mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving HTTP until the server is shut down.
func (s *Server) Start() error {
	s.logger.Infow("server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and drains in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      "ok",
		"connections": s.wsHandler.ConnectionCount(),
	})
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("missing session id"))
		return
	}

	messages, err := s.store.GetMessages(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to load messages: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(messages); err != nil {
		s.logger.Errorw("failed to encode response", "error", err)
	}
}

func (s *Server) handleClearMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("missing session id"))
		return
	}

	if err := s.store.ClearMessages(r.Context(), sessionID); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to clear messages: %w", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("missing session id"))
		return
	}

	settings, err := s.store.GetSettings(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrSettingsNotFound) {
			s.writeError(w, http.StatusNotFound, fmt.Errorf("settings for session %s not found", sessionID))
			return
		}
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to load settings: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(settings); err != nil {
		s.logger.Errorw("failed to encode response", "error", err)
	}
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("missing session id"))
		return
	}

	defer func() {
		if err := r.Body.Close(); err != nil {
			s.logger.Errorw("failed to close request body", "error", err)
		}
	}()

	var settings storage.Settings
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&settings); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid payload: %w", err))
		return
	}
	settings.SessionID = sessionID

	stored, err := s.store.CreateOrUpdateSettings(r.Context(), settings)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to persist settings: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stored); err != nil {
		s.logger.Errorw("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload := map[string]string{"error": err.Error()}
	if encodeErr := json.NewEncoder(w).Encode(payload); encodeErr != nil {
		s.logger.Errorw("failed to encode error response", "error", encodeErr)
	}
}
