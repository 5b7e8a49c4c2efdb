// Package memory is an in-process Store for tests and single-node demos.
// A single mutex serialises every write, so a sponsor approval and the
// requirement decrement it causes are atomic with respect to each other.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"eventhub/models"
)

type Store struct {
	mu         sync.RWMutex
	proposals  map[uuid.UUID]*models.Proposal
	sponsors   map[uuid.UUID]*models.Sponsor
	identities map[uuid.UUID]models.Identity
	audit      []models.AuditRecord
}

func NewStore() *Store {
	return &Store{
		proposals:  make(map[uuid.UUID]*models.Proposal),
		sponsors:   make(map[uuid.UUID]*models.Sponsor),
		identities: make(map[uuid.UUID]models.Identity),
	}
}

// copyProposal returns a deep copy so callers never share slices with the store.
func copyProposal(p *models.Proposal) *models.Proposal {
	val := *p
	val.RevisionHistory = clone(p.RevisionHistory)
	val.AdvisorComments = clone(p.AdvisorComments)
	val.Sponsors = clone(p.Sponsors)
	return &val
}

// clone copies items into a new slice that is never nil.
func clone[T any](items []T) []T {
	return append(make([]T, 0, len(items)), items...)
}

func (s *Store) CreateProposal(ctx context.Context, p *models.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[p.ID]; ok {
		return errors.Errorf("proposal %s already exists", p.ID)
	}
	s.proposals[p.ID] = copyProposal(p)
	return nil
}

func (s *Store) GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.proposals[id]
	if !ok {
		return nil, errors.Wrapf(models.ErrNotFound, "proposal %s", id)
	}
	return copyProposal(p), nil
}

func (s *Store) ListProposals(ctx context.Context, f models.ProposalFilter) ([]models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Proposal, 0, len(s.proposals))
	for _, p := range s.proposals {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.SubmittedBy != uuid.Nil && p.SubmittedBy != f.SubmittedBy {
			continue
		}
		out = append(out, *copyProposal(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.ByReviewedAt {
			a, b := out[i].ReviewedAt, out[j].ReviewedAt
			if a != nil && b != nil && !a.Equal(*b) {
				return a.After(*b)
			}
			if (a == nil) != (b == nil) {
				return a != nil
			}
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, f.Limit, f.Offset), nil
}

func (s *Store) UpdateProposalDetails(ctx context.Context, p *models.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.proposals[p.ID]
	if !ok {
		return errors.Wrapf(models.ErrNotFound, "proposal %s", p.ID)
	}
	if cur.Status != models.StatusPending {
		return errors.Wrap(models.ErrInvalidState, "only pending proposals may be modified")
	}
	cur.Title = p.Title
	cur.Description = p.Description
	cur.Budget = p.Budget
	cur.ClubName = p.ClubName
	cur.StartDate = p.StartDate
	cur.EndDate = p.EndDate
	cur.UpdatedAt = p.UpdatedAt
	return nil
}

func (s *Store) ApplyReview(ctx context.Context, id uuid.UUID, decide models.ReviewFunc) (*models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.proposals[id]
	if !ok {
		return nil, errors.Wrapf(models.ErrNotFound, "proposal %s", id)
	}
	u := decide(*copyProposal(cur))
	comment := u.Comment
	reviewedAt := u.ReviewedAt
	reviewedBy := u.ReviewedBy

	cur.Status = u.Status
	cur.NeedsRevision = u.NeedsRevision
	cur.AllocatedBudget = u.AllocatedBudget
	cur.SponsorRequirement = u.SponsorRequirement
	cur.Comment = &comment
	cur.ReviewedAt = &reviewedAt
	cur.ReviewedBy = &reviewedBy
	cur.UpdatedAt = u.ReviewedAt
	cur.RevisionHistory = append(cur.RevisionHistory, models.RevisionEntry{Comment: u.Comment, Timestamp: u.ReviewedAt})
	return copyProposal(cur), nil
}

func (s *Store) AddAdvisorComment(ctx context.Context, id uuid.UUID, c models.AdvisorComment) (*models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.proposals[id]
	if !ok {
		return nil, errors.Wrapf(models.ErrNotFound, "proposal %s", id)
	}
	cur.AdvisorComments = append(cur.AdvisorComments, c)
	return copyProposal(cur), nil
}

func (s *Store) SetApprovalDocument(ctx context.Context, id uuid.UUID, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.proposals[id]
	if !ok {
		return errors.Wrapf(models.ErrNotFound, "proposal %s", id)
	}
	cur.ApprovalDocument = &filename
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
