package workflow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"eventhub/models"
)

// ProposalView is a proposal with submitter and reviewer resolved for display.
type ProposalView struct {
	models.Proposal
	Submitter *models.Identity `json:"submitter,omitempty"`
	Reviewer  *models.Identity `json:"reviewer,omitempty"`
}

// identityCache memoises lookups within a single call.
type identityCache map[uuid.UUID]*models.Identity

func (s *Service) lookup(ctx context.Context, cache identityCache, id uuid.UUID) *models.Identity {
	if s.identity == nil || id == uuid.Nil {
		return nil
	}
	if ident, ok := cache[id]; ok {
		return ident
	}
	ident, err := s.identity.ResolveIdentity(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "identity not resolved",
			slog.String("user_id", id.String()),
			slog.Any("error", &models.DependencyError{Dependency: "identity", Err: err}))
		cache[id] = nil
		return nil
	}
	cache[id] = &ident
	return &ident
}

func (s *Service) view(ctx context.Context, cache identityCache, p models.Proposal) ProposalView {
	v := ProposalView{Proposal: p, Submitter: s.lookup(ctx, cache, p.SubmittedBy)}
	if p.ReviewedBy != nil {
		v.Reviewer = s.lookup(ctx, cache, *p.ReviewedBy)
	}
	return v
}

// EventSummary names the proposal a sponsor contributes to.
type EventSummary struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	ClubName string    `json:"clubName"`
}

// SponsorView is a sponsor with people and the sponsored event resolved for
// display.
type SponsorView struct {
	models.Sponsor
	Submitter *models.Identity `json:"submitter,omitempty"`
	Reviewer  *models.Identity `json:"reviewer,omitempty"`
	Event     *EventSummary    `json:"event,omitempty"`
}

// eventCache memoises proposal lookups within a single call.
type eventCache map[uuid.UUID]*EventSummary

func (s *Service) event(ctx context.Context, cache eventCache, id uuid.UUID) *EventSummary {
	if ev, ok := cache[id]; ok {
		return ev
	}
	p, err := s.store.GetProposal(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "sponsored event not resolved",
			slog.String("proposal_id", id.String()),
			slog.Any("error", err))
		cache[id] = nil
		return nil
	}
	ev := &EventSummary{ID: p.ID, Title: p.Title, ClubName: p.ClubName}
	cache[id] = ev
	return ev
}

func (s *Service) sponsorView(ctx context.Context, people identityCache, events eventCache, sp models.Sponsor) SponsorView {
	v := SponsorView{
		Sponsor:   sp,
		Submitter: s.lookup(ctx, people, sp.SubmittedBy),
		Event:     s.event(ctx, events, sp.ProposalID),
	}
	if sp.ReviewedBy != nil {
		v.Reviewer = s.lookup(ctx, people, *sp.ReviewedBy)
	}
	return v
}
