// Package api exposes a small REST surface over the same core the terminal
// uses: stateless chat completion and command extraction.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shellsage/shellsage/config"
	"github.com/shellsage/shellsage/expert"
	"github.com/shellsage/shellsage/llm"
	"github.com/shellsage/shellsage/parser"
	"github.com/shellsage/shellsage/session"
)

type Server struct {
	router   *chi.Mux
	cfg      *config.Config
	client   llm.Client
	registry expert.Registry
	model    string
}

// NewServer builds the REST server around one model client.
func NewServer(cfg *config.Config, client llm.Client, model string) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		cfg:      cfg,
		client:   client,
		registry: expert.DefaultRegistry(),
		model:    model,
	}

	router.Get("/", s.root)
	router.Get("/health", s.health)
	router.Post("/chat", s.chat)
	router.Post("/extract", s.extract)

	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start blocks serving HTTP on the configured address.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.API.Host, s.cfg.API.Port)
	slog.Info("API server starting", "addr", addr, "model", s.model)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "shellsage",
		"model":   s.model,
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	Message     string  `json:"message"`
	Model       string  `json:"model,omitempty"`
	Expert      string  `json:"expert,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// chat answers one message without server-side history: each request builds a
// throwaway session so the persona prompt machinery is shared with the CLI.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	mode := expert.General
	if req.Expert != "" {
		m, err := s.registry.ParseMode(req.Expert)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		mode = m
	}

	sess := session.New(s.registry, mode, expert.Full)
	sess.AddUser(req.Message)

	temp, maxTokens := sess.Generation()
	if req.Temperature > 0 {
		temp = req.Temperature
	}
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	text, err := s.client.Chat(r.Context(), sess.Messages(), llm.Options{
		Model:       s.pickModel(req.Model),
		Temperature: temp,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		slog.Error("chat request failed", "error", err)
		writeError(w, http.StatusBadGateway, "LLM request failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: text})
}

type extractRequest struct {
	Text   string `json:"text"`
	Expert string `json:"expert,omitempty"`
}

type extractCandidate struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

type extractResponse struct {
	Candidates []extractCandidate `json:"candidates"`
}

// extract runs the classification and extraction pipeline on arbitrary text.
func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	mode := parser.ModeLinuxExpert
	if req.Expert != "" && req.Expert != string(expert.Linux) {
		mode = parser.ModeOther
	}

	out := extractResponse{Candidates: []extractCandidate{}}
	for _, c := range parser.ClassifyAndExtract(req.Text, mode) {
		out.Candidates = append(out.Candidates, extractCandidate{
			Text:       c.Text,
			Confidence: c.Confidence,
			Rationale:  c.Rationale,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) pickModel(override string) string {
	if override != "" {
		return override
	}
	return s.model
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
