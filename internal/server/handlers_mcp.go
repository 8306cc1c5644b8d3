package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sema-dev/sema-core/internal/mcp"
)

// AddMCPServerRequest is the request body for POST /mcp.
type AddMCPServerRequest struct {
	Name   string      `json:"name"`
	Config *mcp.Config `json:"config"`
}

func (s *Server) listMCPServers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.ListMCPServers())
}

func (s *Server) addMCPServer(w http.ResponseWriter, r *http.Request) {
	var req AddMCPServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Config == nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "name and config are required")
		return
	}

	if err := s.engine.AddMCPServer(r.Context(), req.Name, req.Config); err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeSuccess(w)
}

func (s *Server) getMCPServer(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	status, err := s.engine.GetMCPServer(name)
	if err != nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) removeMCPServer(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := s.engine.RemoveMCPServer(name); err != nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		return
	}
	writeSuccess(w)
}
