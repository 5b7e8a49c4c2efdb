package workflow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"eventhub/internal/budget"
	"eventhub/models"
)

// NewProposal contains the information needed to submit a proposal.
type NewProposal struct {
	Title       string           `json:"title" validate:"required"`
	Description string           `json:"description" validate:"required"`
	Budget      *decimal.Decimal `json:"budget"`
	ClubName    string           `json:"clubName" validate:"required"`
	StartDate   time.Time        `json:"startDate" validate:"required"`
	EndDate     time.Time        `json:"endDate" validate:"required,gtefield=StartDate"`
	SubmittedBy uuid.UUID        `json:"submittedBy" validate:"required"`
}

func (np *NewProposal) clean() {
	np.Title = strings.TrimSpace(np.Title)
	np.Description = strings.TrimSpace(np.Description)
	np.ClubName = strings.TrimSpace(np.ClubName)
}

func (np *NewProposal) Validate() error {
	np.clean()
	return validateStruct(np, checkAmount("budget", np.Budget)...)
}

// ProposalEdits defines what the owner may change on a pending proposal.
// Nil fields are left as they are.
type ProposalEdits struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Budget      *decimal.Decimal `json:"budget"`
	ClubName    *string          `json:"clubName"`
	StartDate   *time.Time       `json:"startDate"`
	EndDate     *time.Time       `json:"endDate"`
}

// apply merges the edits over p and returns the merged fields for validation.
func (e ProposalEdits) apply(p *models.Proposal) NewProposal {
	if e.Title != nil {
		p.Title = *e.Title
	}
	if e.Description != nil {
		p.Description = *e.Description
	}
	if e.Budget != nil {
		p.Budget = *e.Budget
	}
	if e.ClubName != nil {
		p.ClubName = *e.ClubName
	}
	if e.StartDate != nil {
		p.StartDate = *e.StartDate
	}
	if e.EndDate != nil {
		p.EndDate = *e.EndDate
	}
	b := p.Budget
	return NewProposal{
		Title:       p.Title,
		Description: p.Description,
		Budget:      &b,
		ClubName:    p.ClubName,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		SubmittedBy: p.SubmittedBy,
	}
}

// Decision is an OCA reviewer's verdict on a proposal.
type Decision struct {
	Outcome models.ReviewOutcome `json:"outcome" validate:"required,oneof=approve reject request_revision"`
	Comment string               `json:"comment"`
	// AllocatedAmount is only read for approvals.
	AllocatedAmount budget.LenientAmount `json:"allocatedAmount"`
	ReviewerID      uuid.UUID            `json:"reviewerId" validate:"required"`
}

// reviewUpdate is the transition table of the review state machine.
func reviewUpdate(current models.Proposal, d Decision, at time.Time) models.ReviewUpdate {
	u := models.ReviewUpdate{
		Comment:            d.Comment,
		ReviewedBy:         d.ReviewerID,
		ReviewedAt:         at,
		AllocatedBudget:    decimal.Zero,
		SponsorRequirement: decimal.Zero,
	}
	switch d.Outcome {
	case models.OutcomeApprove:
		split := budget.SplitBudget(current.Budget, d.AllocatedAmount.Value)
		u.Status = models.StatusApproved
		u.AllocatedBudget = split.AllocatedBudget
		u.SponsorRequirement = split.SponsorRequirement
	case models.OutcomeReject:
		u.Status = models.StatusRejected
	case models.OutcomeRequestRevision:
		u.Status = models.StatusPending
		u.NeedsRevision = true
	}
	return u
}

func (s *Service) CreateProposal(ctx context.Context, np NewProposal) (*models.Proposal, error) {
	if err := np.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	p := &models.Proposal{
		ID:                 uuid.New(),
		Title:              np.Title,
		Description:        np.Description,
		Budget:             *np.Budget,
		AllocatedBudget:    decimal.Zero,
		SponsorRequirement: decimal.Zero,
		ClubName:           np.ClubName,
		StartDate:          np.StartDate,
		EndDate:            np.EndDate,
		Status:             models.StatusPending,
		SubmittedBy:        np.SubmittedBy,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.store.CreateProposal(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create proposal")
	}
	s.record(ctx, models.AuditRecord{
		Action:       models.ActionProposalCreate,
		PerformedBy:  p.SubmittedBy,
		TargetEntity: "proposal",
		TargetID:     p.ID,
		Details:      map[string]any{"title": p.Title, "clubName": p.ClubName, "budget": p.Budget.String()},
	})
	return p, nil
}

func (s *Service) GetProposal(ctx context.Context, id uuid.UUID) (*ProposalView, error) {
	p, err := s.store.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(ctx, identityCache{}, *p)
	return &v, nil
}

func (s *Service) ListProposals(ctx context.Context, filter models.ProposalFilter) ([]ProposalView, error) {
	proposals, err := s.store.ListProposals(ctx, filter)
	if err != nil {
		return nil, err
	}
	cache := identityCache{}
	views := make([]ProposalView, 0, len(proposals))
	for _, p := range proposals {
		views = append(views, s.view(ctx, cache, p))
	}
	return views, nil
}

// EditProposal lets the submitter change a proposal that is still pending.
func (s *Service) EditProposal(ctx context.Context, id uuid.UUID, edits ProposalEdits, actorID uuid.UUID) (*models.Proposal, error) {
	p, err := s.store.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusPending {
		return nil, errors.Wrap(models.ErrInvalidState, "only pending proposals may be modified")
	}
	if p.SubmittedBy != actorID {
		return nil, errors.Wrap(models.ErrForbidden, "only the submitter may modify a proposal")
	}

	merged := edits.apply(p)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	p.Title, p.Description, p.ClubName = merged.Title, merged.Description, merged.ClubName
	p.UpdatedAt = s.now()

	if err := s.store.UpdateProposalDetails(ctx, p); err != nil {
		return nil, err
	}
	s.record(ctx, models.AuditRecord{
		Action:       models.ActionProposalUpdate,
		PerformedBy:  actorID,
		TargetEntity: "proposal",
		TargetID:     p.ID,
		Details:      map[string]any{"title": p.Title, "budget": p.Budget.String()},
	})
	return p, nil
}

// Review applies an OCA decision. Re-reviewing an already decided proposal is
// allowed; approval recomputes the split from the requested budget.
func (s *Service) Review(ctx context.Context, id uuid.UUID, d Decision) (*ProposalView, error) {
	var extra []models.FieldError
	if d.AllocatedAmount.Value.GreaterThan(budget.MaxAmount) {
		extra = append(extra, models.FieldError{
			Field: "allocatedAmount",
			Error: "allocatedAmount must not exceed " + budget.MaxAmount.StringFixed(budget.CentPlaces),
		})
	}
	if err := validateStruct(d, extra...); err != nil {
		return nil, err
	}
	at := s.now()
	p, err := s.store.ApplyReview(ctx, id, func(current models.Proposal) models.ReviewUpdate {
		return reviewUpdate(current, d, at)
	})
	if err != nil {
		return nil, err
	}

	v := s.view(ctx, identityCache{}, *p)
	s.record(ctx, models.AuditRecord{
		Action:       models.ActionProposalReview,
		PerformedBy:  d.ReviewerID,
		TargetEntity: "proposal",
		TargetID:     p.ID,
		Details: map[string]any{
			"outcome":            string(d.Outcome),
			"status":             string(p.Status),
			"allocatedBudget":    p.AllocatedBudget.String(),
			"sponsorRequirement": p.SponsorRequirement.String(),
			"comment":            d.Comment,
		},
	})

	if p.Status == models.StatusApproved {
		for _, hook := range s.hooks {
			if err := hook(ctx, v); err != nil {
				s.logger.WarnContext(ctx, "approval hook failed",
					slog.String("proposal_id", p.ID.String()),
					slog.Any("error", &models.DependencyError{Dependency: "approval hook", Err: err}))
			}
		}
	}
	return &v, nil
}

// AddAdvisorComment appends an advisor's note to a proposal.
func (s *Service) AddAdvisorComment(ctx context.Context, id uuid.UUID, comment string, advisorID uuid.UUID) (*ProposalView, error) {
	comment = strings.TrimSpace(comment)
	in := struct {
		Comment   string    `json:"comment" validate:"required"`
		AdvisorID uuid.UUID `json:"advisorId" validate:"required"`
	}{comment, advisorID}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	p, err := s.store.AddAdvisorComment(ctx, id, models.AdvisorComment{
		Comment:   comment,
		AdvisorID: advisorID,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, models.AuditRecord{
		Action:       models.ActionAdvisorComment,
		PerformedBy:  advisorID,
		TargetEntity: "proposal",
		TargetID:     p.ID,
		Details:      map[string]any{"comment": comment},
	})
	v := s.view(ctx, identityCache{}, *p)
	return &v, nil
}
