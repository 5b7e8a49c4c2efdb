package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router монтирует все маршруты под /api
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		r.Route("/proposals", func(r chi.Router) {
			r.Post("/", h.CreateProposalHandler)
			r.Get("/", h.ListProposalsHandler)
			r.Get("/pending", h.ListPendingProposalsHandler)
			r.Get("/approved", h.ListApprovedProposalsHandler)
			r.Get("/user/{userId}", h.ListUserProposalsHandler)
			r.Get("/{proposalId}", h.GetProposalHandler)
			r.Patch("/{proposalId}", h.EditProposalHandler)
			r.Patch("/{proposalId}/review", h.ReviewProposalHandler)
			r.Post("/{proposalId}/advisor-comments", h.AddAdvisorCommentHandler)
		})

		r.Route("/sponsors", func(r chi.Router) {
			r.Post("/", h.SubmitSponsorHandler)
			r.Get("/", h.ListSponsorsHandler)
			r.Get("/pending", h.ListPendingSponsorsHandler)
			r.Get("/proposal/{proposalId}", h.ListProposalSponsorsHandler)
			r.Patch("/{sponsorId}/review", h.ReviewSponsorHandler)
		})
	})
	return r
}
