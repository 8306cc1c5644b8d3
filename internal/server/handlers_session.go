package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sema-dev/sema-core/internal/event"
)

// CreateSessionRequest is the request body for POST /session.
type CreateSessionRequest struct {
	Directory string `json:"directory"`
	Title     string `json:"title,omitempty"`
	AgentName string `json:"agentName,omitempty"`
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	directory := r.URL.Query().Get("directory")

	sessions, err := s.engine.ListSessions(r.Context(), directory)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.Directory == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "directory is required")
		return
	}

	sess, err := s.engine.CreateSession(r.Context(), req.Directory, req.Title, req.AgentName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := s.engine.GetSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.engine.DeleteSession(r.Context(), sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeSuccess(w)
}

// SendMessageRequest is the request body for POST /session/{id}/message.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// sendMessage drives a turn to completion; progress streams separately
// over /event while this request is in flight.
func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}

	if err := s.engine.ProcessUserInput(r.Context(), sessionID, req.Text); err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeSuccess(w)
}

func (s *Server) abortSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.engine.InterruptSession(sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeSuccess(w)
}

// PermissionResponseRequest is the request body for POST
// /session/{id}/permission, answering a pending tool:permission:request.
type PermissionResponseRequest struct {
	AgentID      string                   `json:"agentID"`
	CallID       string                   `json:"callID"`
	Decision     event.PermissionDecision `json:"decision"`
	FeedbackText string                   `json:"feedbackText,omitempty"`
}

func (s *Server) respondToolPermission(w http.ResponseWriter, r *http.Request) {
	var req PermissionResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	s.engine.RespondToToolPermission(event.AgentID(req.AgentID), req.CallID, req.Decision, req.FeedbackText)
	writeSuccess(w)
}

// AnswerRequest is the request body for POST /session/{id}/answer,
// answering a pending ask:question:request.
type AnswerRequest struct {
	AgentID string            `json:"agentID"`
	Answers map[string]string `json:"answers"`
}

func (s *Server) respondAskQuestion(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	s.engine.RespondToAskQuestion(event.AgentID(req.AgentID), req.Answers)
	writeSuccess(w)
}

// PlanExitRequest is the request body for POST /session/{id}/plan-exit,
// answering a pending plan:exit:request.
type PlanExitRequest struct {
	AgentID  string                  `json:"agentID"`
	Selected event.PlanExitSelection `json:"selected"`
}

func (s *Server) respondPlanExit(w http.ResponseWriter, r *http.Request) {
	var req PlanExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	s.engine.RespondToPlanExit(event.AgentID(req.AgentID), req.Selected)
	writeSuccess(w)
}
