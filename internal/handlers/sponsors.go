package handlers

import (
	"net/http"

	"eventhub/internal/workflow"
	"eventhub/models"
)

// SubmitSponsorHandler обрабатывает POST /api/sponsors
func (h *Handler) SubmitSponsorHandler(w http.ResponseWriter, r *http.Request) {
	var ns workflow.NewSponsor
	if !decodeJSON(w, r, &ns) {
		return
	}
	sp, err := h.svc.SubmitSponsor(r.Context(), ns)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Sponsor submitted successfully", sp)
}

func (h *Handler) listSponsors(w http.ResponseWriter, r *http.Request, filter models.SponsorFilter) {
	params := parsePaginationParams(r)
	filter.Limit, filter.Offset = params.Limit, params.Offset
	sponsors, err := h.svc.ListSponsors(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", sponsors)
}

func (h *Handler) ListSponsorsHandler(w http.ResponseWriter, r *http.Request) {
	h.listSponsors(w, r, models.SponsorFilter{})
}

func (h *Handler) ListPendingSponsorsHandler(w http.ResponseWriter, r *http.Request) {
	h.listSponsors(w, r, models.SponsorFilter{Status: models.SponsorPending})
}

func (h *Handler) ListProposalSponsorsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "proposalId")
	if !ok {
		return
	}
	h.listSponsors(w, r, models.SponsorFilter{ProposalID: id})
}

// sponsorReviewRequest также принимает поле status из формы рассмотрения.
type sponsorReviewRequest struct {
	workflow.SponsorDecision
	Status string `json:"status"`
}

// ReviewSponsorHandler обрабатывает PATCH /api/sponsors/{sponsorId}/review
func (h *Handler) ReviewSponsorHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "sponsorId")
	if !ok {
		return
	}
	var req sponsorReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d := req.SponsorDecision
	if d.Outcome == "" {
		d.Outcome = outcomeFromStatus(req.Status)
	}
	sp, err := h.svc.ReviewSponsor(r.Context(), id, d)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Sponsor reviewed successfully", sp)
}
