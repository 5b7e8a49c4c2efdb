package workflow

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"eventhub/internal/budget"
	"eventhub/models"
)

// NewSponsor is a funding offer against a proposal.
type NewSponsor struct {
	ProposalID  uuid.UUID        `json:"eventProposalId" validate:"required"`
	SponsorName string           `json:"sponsorName" validate:"required"`
	Amount      *decimal.Decimal `json:"amount"`
	SubmittedBy uuid.UUID        `json:"submittedBy" validate:"required"`
}

func (ns *NewSponsor) Validate() error {
	ns.SponsorName = strings.TrimSpace(ns.SponsorName)
	return validateStruct(ns, checkAmount("amount", ns.Amount)...)
}

// SponsorDecision is the reviewer's verdict on a contribution.
type SponsorDecision struct {
	Outcome    models.ReviewOutcome `json:"outcome" validate:"required,oneof=approve reject"`
	Comment    string               `json:"reviewComment"`
	ReviewerID uuid.UUID            `json:"reviewedBy" validate:"required"`
}

// SubmitSponsor records a pending contribution against a proposal.
func (s *Service) SubmitSponsor(ctx context.Context, ns NewSponsor) (*models.Sponsor, error) {
	if err := ns.Validate(); err != nil {
		return nil, err
	}
	p, err := s.store.GetProposal(ctx, ns.ProposalID)
	if err != nil {
		return nil, err
	}
	if s.strictSponsorAmount {
		if p.Status != models.StatusApproved {
			return nil, fieldError("eventProposalId", "sponsorship is only open for approved proposals")
		}
		if ns.Amount.GreaterThan(p.SponsorRequirement) {
			return nil, fieldError("amount", "amount exceeds the outstanding sponsor requirement of "+p.SponsorRequirement.String())
		}
	}

	now := s.now()
	sp := &models.Sponsor{
		ID:          uuid.New(),
		ProposalID:  p.ID,
		SponsorName: ns.SponsorName,
		Amount:      *ns.Amount,
		Status:      models.SponsorPending,
		SubmittedBy: ns.SubmittedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateSponsor(ctx, sp); err != nil {
		return nil, errors.Wrap(err, "create sponsor")
	}
	s.record(ctx, models.AuditRecord{
		Action:       models.ActionSponsorCreate,
		PerformedBy:  sp.SubmittedBy,
		TargetEntity: "sponsor",
		TargetID:     sp.ID,
		Details:      map[string]any{"proposalId": p.ID.String(), "sponsorName": sp.SponsorName, "amount": sp.Amount.String()},
	})
	return sp, nil
}

// ReviewSponsor approves or rejects a pending contribution. Approval lowers
// the parent proposal's sponsor requirement by the contributed amount.
func (s *Service) ReviewSponsor(ctx context.Context, id uuid.UUID, d SponsorDecision) (*models.Sponsor, error) {
	if err := validateStruct(d); err != nil {
		return nil, err
	}
	r := models.SponsorReview{
		Status:     models.SponsorRejected,
		ReviewedBy: d.ReviewerID,
		ReviewedAt: s.now(),
	}
	if d.Outcome == models.OutcomeApprove {
		r.Status = models.SponsorApproved
	}
	if c := strings.TrimSpace(d.Comment); c != "" {
		r.Comment = &c
	}

	sp, err := s.store.ReviewSponsor(ctx, id, r, budget.DecrementSponsorRequirement)
	if err != nil {
		return nil, err
	}
	s.record(ctx, models.AuditRecord{
		Action:       models.ActionSponsorReview,
		PerformedBy:  d.ReviewerID,
		TargetEntity: "sponsor",
		TargetID:     sp.ID,
		Details:      map[string]any{"proposalId": sp.ProposalID.String(), "status": string(sp.Status), "amount": sp.Amount.String()},
	})
	return sp, nil
}

func (s *Service) GetSponsor(ctx context.Context, id uuid.UUID) (*models.Sponsor, error) {
	return s.store.GetSponsor(ctx, id)
}

// ListSponsors returns matching sponsors, newest first, with people and the
// sponsored event resolved for display.
func (s *Service) ListSponsors(ctx context.Context, filter models.SponsorFilter) ([]SponsorView, error) {
	sponsors, err := s.store.ListSponsors(ctx, filter)
	if err != nil {
		return nil, err
	}
	people, events := identityCache{}, eventCache{}
	views := make([]SponsorView, 0, len(sponsors))
	for _, sp := range sponsors {
		views = append(views, s.sponsorView(ctx, people, events, sp))
	}
	return views, nil
}
