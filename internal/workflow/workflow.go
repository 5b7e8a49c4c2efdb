// Package workflow implements proposal review and sponsorship fulfilment on
// top of a Store. Collaborators for identity lookup, audit records and
// post-approval documents are optional; their failures are logged and never
// undo a committed transition.
package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eventhub/models"
)

// ProposalStore persists proposals and their review fields.
type ProposalStore interface {
	CreateProposal(ctx context.Context, p *models.Proposal) error
	GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	ListProposals(ctx context.Context, filter models.ProposalFilter) ([]models.Proposal, error)
	// UpdateProposalDetails writes the owner-editable fields only while the
	// proposal is pending; otherwise it returns models.ErrInvalidState.
	UpdateProposalDetails(ctx context.Context, p *models.Proposal) error
	// ApplyReview holds the proposal exclusively, derives the update from the
	// stored row and writes it together with a revision history entry.
	ApplyReview(ctx context.Context, id uuid.UUID, decide models.ReviewFunc) (*models.Proposal, error)
	AddAdvisorComment(ctx context.Context, id uuid.UUID, c models.AdvisorComment) (*models.Proposal, error)
	SetApprovalDocument(ctx context.Context, id uuid.UUID, filename string) error
}

// SponsorStore persists sponsor contributions.
type SponsorStore interface {
	CreateSponsor(ctx context.Context, s *models.Sponsor) error
	GetSponsor(ctx context.Context, id uuid.UUID) (*models.Sponsor, error)
	ListSponsors(ctx context.Context, filter models.SponsorFilter) ([]models.Sponsor, error)
	// ReviewSponsor records the review of a pending sponsor. On approval the
	// parent proposal's requirement is replaced by decrement(current, amount)
	// in the same unit of work, with the proposal held exclusively.
	ReviewSponsor(ctx context.Context, id uuid.UUID, r models.SponsorReview, decrement models.DecrementFunc) (*models.Sponsor, error)
}

type Store interface {
	ProposalStore
	SponsorStore
}

// IdentityResolver resolves user ids for display.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, id uuid.UUID) (models.Identity, error)
}

// AuditRecorder receives a record of every completed workflow operation.
type AuditRecorder interface {
	Record(ctx context.Context, rec models.AuditRecord) error
}

// ApprovalHook runs synchronously after an approval has been committed.
type ApprovalHook func(ctx context.Context, v ProposalView) error

type Service struct {
	store    Store
	identity IdentityResolver
	audit    AuditRecorder
	hooks    []ApprovalHook
	logger   *slog.Logger
	now      func() time.Time

	strictSponsorAmount bool
}

type Option func(*Service)

func WithIdentityResolver(r IdentityResolver) Option {
	return func(s *Service) { s.identity = r }
}

func WithAuditRecorder(r AuditRecorder) Option {
	return func(s *Service) { s.audit = r }
}

func WithApprovalHook(h ApprovalHook) Option {
	return func(s *Service) { s.hooks = append(s.hooks, h) }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStrictSponsorAmount makes SubmitSponsor reject contributions to
// proposals that are not approved, or that exceed the outstanding requirement.
func WithStrictSponsorAmount(strict bool) Option {
	return func(s *Service) { s.strictSponsorAmount = strict }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// record hands rec to the audit collaborator; failures are only logged.
func (s *Service) record(ctx context.Context, rec models.AuditRecord) {
	if s.audit == nil {
		return
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if err := s.audit.Record(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "audit record dropped",
			slog.String("action", string(rec.Action)),
			slog.String("target_id", rec.TargetID.String()),
			slog.Any("error", &models.DependencyError{Dependency: "audit", Err: err}))
	}
}
