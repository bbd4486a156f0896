package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tomasoliva/brio-agent/internal/app/assistant"
	"github.com/tomasoliva/brio-agent/internal/domain"
	"github.com/tomasoliva/brio-agent/internal/identity"
)

type Server struct {
	svc *assistant.Service
}

// NewServer builds the HTTP surface: the command endpoint plus the thin
// dashboard endpoints, all behind bearer-token identity.
func NewServer(svc *assistant.Service, tokens map[string]string) http.Handler {
	s := &Server{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(withRequestLogging)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(tokens))

		r.Post("/api/command", s.handleCommand)
		r.Get("/api/profile", s.handleProfile)
		r.Post("/api/projects/rename", s.handleRenameProject)

		r.Get("/api/tasks", s.handleListTasks)
		r.Get("/api/notes", s.handleListNotes)
		r.Get("/api/goals", s.handleListGoals)
		r.Get("/api/events", s.handleListEvents)
	})

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type commandRequest struct {
	Parts               []domain.MessagePart `json:"parts"`
	CurrentCategory     string               `json:"currentCategory"`
	AvailableCategories []string             `json:"availableCategories,omitempty"`
	ChatHistory         []domain.ChatMessage `json:"chatHistory,omitempty"`
	InteractionMode     string               `json:"interactionMode"`
	IsEndingChatSession bool                 `json:"isEndingChatSession,omitempty"`
}

type commandResponse struct {
	Status                string                           `json:"status"` // "ok" | "error"
	AIMessage             string                           `json:"aiMessage"`
	Operations            []domain.OperationEnvelope       `json:"operations"`
	ExecutedOperationsLog []domain.ExecutedOperationResult `json:"executedOperationsLog,omitempty"`
	OriginalInputParts    []domain.MessagePart             `json:"originalInputParts,omitempty"`
	Error                 string                           `json:"error,omitempty"`
}

type renameProjectRequest struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.CurrentCategory == "" && !req.IsEndingChatSession {
		badRequest(w, "currentCategory is required")
		return
	}

	out, err := s.svc.HandleCommand(r.Context(), assistant.CommandInput{
		UserID:          userID,
		Parts:           req.Parts,
		CurrentCategory: req.CurrentCategory,
		Categories:      req.AvailableCategories,
		Mode:            parseInteractionMode(req.InteractionMode),
		History:         req.ChatHistory,
		EndSession:      req.IsEndingChatSession,
	})
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyInput) {
			badRequest(w, "command input is empty")
			return
		}
		internalError(w, err)
		return
	}

	resp := commandResponse{
		Status:                string(out.Status),
		AIMessage:             out.AIMessage,
		Operations:            domain.Envelope(out.Operations),
		ExecutedOperationsLog: out.Executed,
		OriginalInputParts:    out.OriginalParts,
		Error:                 out.OverallError,
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	summary, err := s.svc.ContextSummary(r.Context(), userID)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"contextSummary": summary})
}

func (s *Server) handleRenameProject(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	var req renameProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.OldName) == "" {
		badRequest(w, "oldName is required")
		return
	}

	updated, err := s.svc.RenameCategory(r.Context(), userID, req.OldName, req.NewName)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	tasks, err := s.svc.Tasks().ListTasks(r.Context(), userID, categoryFilter(r))
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": orEmpty(tasks)})
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	notes, err := s.svc.Notes().ListNotes(r.Context(), userID, categoryFilter(r))
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": orEmpty(notes)})
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	goals, err := s.svc.Goals().ListGoals(r.Context(), userID, categoryFilter(r))
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": orEmpty(goals)})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	events, err := s.svc.Events().ListEvents(r.Context(), userID, categoryFilter(r))
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": orEmpty(events)})
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func parseInteractionMode(s string) domain.InteractionMode {
	switch strings.TrimSpace(s) {
	case "chatSession":
		return domain.ModeChatSession
	default:
		return domain.ModeQuickCommand
	}
}

func categoryFilter(r *http.Request) string {
	c := r.URL.Query().Get("category")
	if c == domain.CategoryAll {
		return ""
	}
	return c
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, _ error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}
