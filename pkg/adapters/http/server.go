package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/switchboard"
	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/runner"
)

// Router defines the part of *switchboard.Router served over HTTP.
type Router interface {
	Dispatch(ctx context.Context, msg domain.Message) *domain.Result
	Inspect() []domain.IntentNode
	Conversation(ctx context.Context, sender string) (domain.Conversation, error)
	Conversations(ctx context.Context) ([]string, error)
	Forget(ctx context.Context, sender string) error
	Ready() bool
}

var _ Router = (*switchboard.Router)(nil)

// Server holds the handlers of the HTTP API.
type Server struct {
	Router    Router
	Streams   *StreamManager
	sanitizer runner.Sanitizer
	metrics   http.Handler
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts a metrics handler on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxInputSize sets the byte limit of inbound message text.
func WithMaxInputSize(size int) Option {
	return func(s *Server) {
		s.sanitizer.MaxSize = size
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates the API server.
func NewServer(router Router, opts ...Option) *Server {
	s := &Server{
		Router: router,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates a new HTTP handler for the router.
func NewHandler(router Router, opts ...Option) http.Handler {
	return NewServer(router, opts...).Handler()
}

// Handler builds the chi route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/messages", s.PostMessage)
		r.Get("/intents", s.GetIntents)
		r.Get("/contexts", s.ListContexts)
		r.Get("/contexts/{sender}", s.GetContext)
		r.Delete("/contexts/{sender}", s.DeleteContext)
		r.Get("/events", s.SubscribeEvents)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MessageRequest is the body of POST /v1/messages.
type MessageRequest struct {
	Sender      string `json:"sender"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Text        string `json:"text"`
	Channel     string `json:"channel,omitempty"`
}

// PostMessage handles the POST /v1/messages request.
// Dropped messages are still answered with 200; the Result carries the reason.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	var body MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.error(w, http.StatusBadRequest, "invalid request body")
		s.logger.Warn("PostMessage: invalid request body", "err", err)
		return
	}
	if strings.TrimSpace(body.Sender) == "" {
		s.error(w, http.StatusBadRequest, "sender is required")
		return
	}

	text, err := s.sanitizer.Clean(body.Text)
	if err != nil {
		s.error(w, http.StatusBadRequest, fmt.Sprintf("invalid text: %v", err))
		s.logger.Warn("PostMessage: input rejected", "err", err, "size", len(body.Text))
		return
	}
	if !s.Router.Ready() {
		s.error(w, http.StatusServiceUnavailable, "router is not trained")
		return
	}

	msg := domain.NewMessage(body.Sender, text)
	msg.Sender.Username = body.Username
	msg.Sender.DisplayName = body.DisplayName
	msg.Channel = body.Channel
	if msg.Channel == "" {
		msg.Channel = "http"
	}

	res := s.Router.Dispatch(r.Context(), msg)
	payload, err := json.Marshal(res)
	if err != nil {
		s.logger.Warn("PostMessage: output is not JSON, sending it as text", "action", res.Action, "err", err)
		printable := *res
		printable.Output = fmt.Sprint(res.Output)
		if payload, err = json.Marshal(&printable); err != nil {
			s.error(w, http.StatusInternalServerError, "failed to encode result")
			s.logger.Error("PostMessage: result encode failed", "err", err)
			return
		}
	}

	s.Streams.Broadcast(res.Sender, string(payload))
	s.write(w, http.StatusOK, payload)
}

// GetIntents handles the GET /v1/intents request.
func (s *Server) GetIntents(w http.ResponseWriter, r *http.Request) {
	s.json(w, http.StatusOK, s.Router.Inspect())
}

// ListContexts handles the GET /v1/contexts request.
func (s *Server) ListContexts(w http.ResponseWriter, r *http.Request) {
	senders, err := s.Router.Conversations(r.Context())
	if err != nil {
		s.error(w, http.StatusInternalServerError, "failed to list conversations")
		s.logger.Error("ListContexts failed", "err", err)
		return
	}
	s.json(w, http.StatusOK, map[string][]string{"senders": senders})
}

// GetContext handles the GET /v1/contexts/{sender} request.
func (s *Server) GetContext(w http.ResponseWriter, r *http.Request) {
	sender := chi.URLParam(r, "sender")
	conv, err := s.Router.Conversation(r.Context(), sender)
	if err != nil {
		s.error(w, http.StatusInternalServerError, "failed to read conversation")
		s.logger.Error("GetContext failed", "sender", sender, "err", err)
		return
	}
	s.json(w, http.StatusOK, conv)
}

// DeleteContext handles the DELETE /v1/contexts/{sender} request.
func (s *Server) DeleteContext(w http.ResponseWriter, r *http.Request) {
	sender := chi.URLParam(r, "sender")
	if err := s.Router.Forget(r.Context(), sender); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.error(w, http.StatusInternalServerError, "failed to delete conversation")
		s.logger.Error("DeleteContext failed", "sender", sender, "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if !s.Router.Ready() {
		s.json(w, http.StatusServiceUnavailable, map[string]string{"status": "training"})
		return
	}
	s.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.json(w, http.StatusOK, map[string]string{
		"app":     "switchboard-http",
		"version": strings.TrimSpace(switchboard.Version),
	})
}

// json encodes v before writing the status, so encode failures become a 500.
func (s *Server) json(w http.ResponseWriter, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("response encode failed", "err", err)
		status = http.StatusInternalServerError
		payload = []byte(`{"error":"failed to encode response"}`)
	}
	s.write(w, status, payload)
}

func (s *Server) write(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(payload, '\n')); err != nil {
		s.logger.Debug("response write failed", "err", err)
	}
}

func (s *Server) error(w http.ResponseWriter, status int, msg string) {
	s.json(w, status, map[string]string{"error": msg})
}
