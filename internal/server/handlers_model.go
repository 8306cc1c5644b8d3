package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) listModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.ListModels())
}

func (s *Server) getModel(w http.ResponseWriter, r *http.Request) {
	providerID := chi.URLParam(r, "providerID")
	modelID := chi.URLParam(r, "modelID")

	model, err := s.engine.GetModel(providerID, modelID)
	if err != nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model)
}

func (s *Server) listProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.ListProviders())
}
