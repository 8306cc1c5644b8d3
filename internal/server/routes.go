package server

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all API routes, every one of them a thin
// translation onto an *engine.Engine call.
func (s *Server) setupRoutes() {
	r := s.router

	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.createSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/message", s.sendMessage)
			r.Post("/abort", s.abortSession)
			r.Post("/permission", s.respondToolPermission)
			r.Post("/answer", s.respondAskQuestion)
			r.Post("/plan-exit", s.respondPlanExit)
		})
	})

	r.Get("/event", s.globalEvents)

	r.Route("/model", func(r chi.Router) {
		r.Get("/", s.listModels)
		r.Get("/{providerID}/{modelID}", s.getModel)
	})
	r.Get("/provider", s.listProviders)

	r.Route("/mcp", func(r chi.Router) {
		r.Get("/", s.listMCPServers)
		r.Post("/", s.addMCPServer)
		r.Get("/{name}", s.getMCPServer)
		r.Delete("/{name}", s.removeMCPServer)
	})

	r.Route("/skill", func(r chi.Router) {
		r.Get("/", s.listSkills)
		r.Get("/{name}", s.getSkill)
		r.Delete("/{name}", s.unregisterSkill)
	})

	r.Route("/agent", func(r chi.Router) {
		r.Get("/", s.listAgents)
		r.Get("/{name}", s.getAgent)
		r.Delete("/{name}", s.unregisterAgent)
	})
}
