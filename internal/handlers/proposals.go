package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"eventhub/internal/budget"
	"eventhub/internal/workflow"
	"eventhub/models"
)

// CreateProposalHandler обрабатывает POST /api/proposals
func (h *Handler) CreateProposalHandler(w http.ResponseWriter, r *http.Request) {
	var np workflow.NewProposal
	if !decodeJSON(w, r, &np) {
		return
	}
	p, err := h.svc.CreateProposal(r.Context(), np)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Event proposal submitted successfully", p)
}

func (h *Handler) GetProposalHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "proposalId")
	if !ok {
		return
	}
	v, err := h.svc.GetProposal(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", v)
}

func (h *Handler) listProposals(w http.ResponseWriter, r *http.Request, filter models.ProposalFilter) {
	params := parsePaginationParams(r)
	filter.Limit, filter.Offset = params.Limit, params.Offset
	views, err := h.svc.ListProposals(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", views)
}

// ListProposalsHandler обрабатывает GET /api/proposals с необязательным фильтром status
func (h *Handler) ListProposalsHandler(w http.ResponseWriter, r *http.Request) {
	var filter models.ProposalFilter
	switch status := models.ProposalStatus(strings.TrimSpace(r.URL.Query().Get("status"))); status {
	case "":
	case models.StatusPending, models.StatusApproved, models.StatusRejected:
		filter.Status = status
	default:
		writeFail(w, http.StatusBadRequest, "Invalid status")
		return
	}
	h.listProposals(w, r, filter)
}

func (h *Handler) ListPendingProposalsHandler(w http.ResponseWriter, r *http.Request) {
	h.listProposals(w, r, models.ProposalFilter{Status: models.StatusPending})
}

// ListApprovedProposalsHandler для куратора: одобренные мероприятия,
// последние рассмотренные первыми.
func (h *Handler) ListApprovedProposalsHandler(w http.ResponseWriter, r *http.Request) {
	h.listProposals(w, r, models.ProposalFilter{Status: models.StatusApproved, ByReviewedAt: true})
}

func (h *Handler) ListUserProposalsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userId")
	if !ok {
		return
	}
	h.listProposals(w, r, models.ProposalFilter{SubmittedBy: userID})
}

// EditProposalHandler обрабатывает PATCH /api/proposals/{proposalId}?userId=
func (h *Handler) EditProposalHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "proposalId")
	if !ok {
		return
	}
	actorID, err := uuid.Parse(r.URL.Query().Get("userId"))
	if err != nil {
		writeFail(w, http.StatusBadRequest, "Missing or invalid userId")
		return
	}
	var edits workflow.ProposalEdits
	if !decodeJSON(w, r, &edits) {
		return
	}
	p, err := h.svc.EditProposal(r.Context(), id, edits, actorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Event proposal updated successfully", p)
}

// reviewRequest принимает либо явный outcome, либо пару status и
// needsRevision из формы рассмотрения. status может быть глаголом
// ("approve", "reject") или итоговым статусом ("approved", "rejected").
// ocaOfficerId и allocatedBudget это имена из формы для reviewerId и
// allocatedAmount; присланный клиентом sponsorRequirement игнорируется и
// вычисляется заново.
type reviewRequest struct {
	Outcome         models.ReviewOutcome  `json:"outcome"`
	Status          string                `json:"status"`
	NeedsRevision   bool                  `json:"needsRevision"`
	Comment         string                `json:"comment"`
	AllocatedAmount *budget.LenientAmount `json:"allocatedAmount"`
	AllocatedBudget *budget.LenientAmount `json:"allocatedBudget"`
	ReviewerID      uuid.UUID             `json:"reviewerId"`
	OcaOfficerID    uuid.UUID             `json:"ocaOfficerId"`
}

// outcomeFromStatus переводит поле status формы в outcome.
func outcomeFromStatus(status string) models.ReviewOutcome {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case string(models.OutcomeApprove), string(models.StatusApproved):
		return models.OutcomeApprove
	case string(models.OutcomeReject), string(models.StatusRejected):
		return models.OutcomeReject
	}
	return ""
}

func (rr reviewRequest) decision() workflow.Decision {
	outcome := rr.Outcome
	if outcome == "" {
		if rr.NeedsRevision {
			outcome = models.OutcomeRequestRevision
		} else {
			outcome = outcomeFromStatus(rr.Status)
		}
	}
	d := workflow.Decision{
		Outcome:    outcome,
		Comment:    rr.Comment,
		ReviewerID: rr.ReviewerID,
	}
	if d.ReviewerID == uuid.Nil {
		d.ReviewerID = rr.OcaOfficerID
	}
	switch {
	case rr.AllocatedAmount != nil:
		d.AllocatedAmount = *rr.AllocatedAmount
	case rr.AllocatedBudget != nil:
		d.AllocatedAmount = *rr.AllocatedBudget
	}
	return d
}

// ReviewProposalHandler обрабатывает PATCH /api/proposals/{proposalId}/review
func (h *Handler) ReviewProposalHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "proposalId")
	if !ok {
		return
	}
	var req reviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.Review(r.Context(), id, req.decision())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Event proposal reviewed successfully", v)
}

type advisorCommentRequest struct {
	Comment   string    `json:"comment"`
	AdvisorID uuid.UUID `json:"advisorId"`
}

func (h *Handler) AddAdvisorCommentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "proposalId")
	if !ok {
		return
	}
	var req advisorCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.AddAdvisorComment(r.Context(), id, req.Comment, req.AdvisorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Comment added successfully", v)
}
