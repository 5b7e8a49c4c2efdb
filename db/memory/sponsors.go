package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"eventhub/models"
)

func (s *Store) CreateSponsor(ctx context.Context, sp *models.Sponsor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[sp.ProposalID]
	if !ok {
		return errors.Wrapf(models.ErrNotFound, "proposal %s", sp.ProposalID)
	}
	val := *sp
	s.sponsors[sp.ID] = &val
	p.Sponsors = append(p.Sponsors, sp.ID)
	return nil
}

func (s *Store) GetSponsor(ctx context.Context, id uuid.UUID) (*models.Sponsor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.sponsors[id]
	if !ok {
		return nil, errors.Wrapf(models.ErrNotFound, "sponsor %s", id)
	}
	val := *sp
	return &val, nil
}

func (s *Store) ListSponsors(ctx context.Context, f models.SponsorFilter) ([]models.Sponsor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Sponsor, 0, len(s.sponsors))
	for _, sp := range s.sponsors {
		if f.ProposalID != uuid.Nil && sp.ProposalID != f.ProposalID {
			continue
		}
		if f.Status != "" && sp.Status != f.Status {
			continue
		}
		out = append(out, *sp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

func (s *Store) ReviewSponsor(ctx context.Context, id uuid.UUID, r models.SponsorReview, decrement models.DecrementFunc) (*models.Sponsor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.sponsors[id]
	if !ok {
		return nil, errors.Wrapf(models.ErrNotFound, "sponsor %s", id)
	}
	if sp.Status != models.SponsorPending {
		return nil, errors.Wrapf(models.ErrInvalidState, "sponsor %s already %s", id, sp.Status)
	}
	if r.Status == models.SponsorApproved {
		// A missing parent leaves nothing to decrement.
		if p, ok := s.proposals[sp.ProposalID]; ok {
			p.SponsorRequirement = decrement(p.SponsorRequirement, sp.Amount)
			p.UpdatedAt = r.ReviewedAt
		}
	}
	reviewedBy, reviewedAt := r.ReviewedBy, r.ReviewedAt
	sp.Status = r.Status
	sp.ReviewComment = r.Comment
	sp.ReviewedBy = &reviewedBy
	sp.ReviewedAt = &reviewedAt
	sp.UpdatedAt = r.ReviewedAt
	val := *sp
	return &val, nil
}
