package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) listSkills(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.ListSkills())
}

func (s *Server) getSkill(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	sk, ok := s.engine.GetSkill(name)
	if !ok {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "skill not found")
		return
	}
	writeJSON(w, http.StatusOK, sk)
}

func (s *Server) unregisterSkill(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.engine.UnregisterSkill(name)
	writeSuccess(w)
}

func (s *Server) listAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.ListAgents())
}

func (s *Server) getAgent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	a, err := s.engine.GetAgent(name)
	if err != nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) unregisterAgent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.engine.UnregisterAgent(name)
	writeSuccess(w)
}
