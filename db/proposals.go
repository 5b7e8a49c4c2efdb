package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"eventhub/models"
)

const proposalColumns = `id, title, description, budget, allocated_budget, sponsor_requirement,
        club_name, start_date, end_date, status, needs_revision, comment, reviewed_at,
        reviewed_by, approval_document, submitted_by, created_at, updated_at`

func (s *Storage) CreateProposal(ctx context.Context, p *models.Proposal) error {
	query := `
        INSERT INTO proposals
            (id, title, description, budget, allocated_budget, sponsor_requirement,
             club_name, start_date, end_date, status, needs_revision, submitted_by, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Description, p.Budget, p.AllocatedBudget, p.SponsorRequirement,
		p.ClubName, p.StartDate, p.EndDate, p.Status, p.NeedsRevision, p.SubmittedBy, p.CreatedAt, p.UpdatedAt)
	return errors.Wrap(err, "insert proposal")
}

func (s *Storage) GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	p := models.Proposal{}
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`
	if err := s.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, notFound(err, "proposal "+id.String())
	}
	proposals := []models.Proposal{p}
	if err := loadChildren(ctx, s.db, proposals); err != nil {
		return nil, err
	}
	return &proposals[0], nil
}

func (s *Storage) ListProposals(ctx context.Context, f models.ProposalFilter) ([]models.Proposal, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.SubmittedBy != uuid.Nil {
		args = append(args, f.SubmittedBy)
		conds = append(conds, fmt.Sprintf("submitted_by = $%d", len(args)))
	}

	query := `SELECT ` + proposalColumns + ` FROM proposals`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if f.ByReviewedAt {
		query += " ORDER BY reviewed_at DESC NULLS LAST, created_at DESC"
	} else {
		query += " ORDER BY created_at DESC"
	}
	query += pagination(f.Limit, f.Offset)

	proposals := []models.Proposal{}
	if err := s.db.SelectContext(ctx, &proposals, query, args...); err != nil {
		return nil, errors.Wrap(err, "select proposals")
	}
	if err := loadChildren(ctx, s.db, proposals); err != nil {
		return nil, err
	}
	return proposals, nil
}

func (s *Storage) UpdateProposalDetails(ctx context.Context, p *models.Proposal) error {
	query := `
        UPDATE proposals
        SET title=$1, description=$2, budget=$3, club_name=$4, start_date=$5, end_date=$6, updated_at=$7
        WHERE id=$8 AND status='pending'`
	res, err := s.db.ExecContext(ctx, query,
		p.Title, p.Description, p.Budget, p.ClubName, p.StartDate, p.EndDate, p.UpdatedAt, p.ID)
	if err != nil {
		return errors.Wrap(err, "update proposal")
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return errors.Wrap(err, "update proposal")
	}

	// Ничего не обновили: отличаем отсутствующую заявку от уже рассмотренной.
	var status string
	if err := s.db.GetContext(ctx, &status, `SELECT status FROM proposals WHERE id=$1`, p.ID); err != nil {
		return notFound(err, "proposal "+p.ID.String())
	}
	return errors.Wrap(models.ErrInvalidState, "only pending proposals may be modified")
}

func (s *Storage) ApplyReview(ctx context.Context, id uuid.UUID, decide models.ReviewFunc) (*models.Proposal, error) {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		current := models.Proposal{}
		query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &current, query, id); err != nil {
			return notFound(err, "proposal "+id.String())
		}

		u := decide(current)
		_, err := tx.ExecContext(ctx, `
            UPDATE proposals
            SET status=$1, needs_revision=$2, allocated_budget=$3, sponsor_requirement=$4,
                comment=$5, reviewed_by=$6, reviewed_at=$7, updated_at=$7
            WHERE id=$8`,
			u.Status, u.NeedsRevision, u.AllocatedBudget, u.SponsorRequirement,
			u.Comment, u.ReviewedBy, u.ReviewedAt, id)
		if err != nil {
			return errors.Wrap(err, "update proposal review")
		}

		_, err = tx.ExecContext(ctx, `
            INSERT INTO proposal_revisions (proposal_id, comment, created_at)
            VALUES ($1, $2, $3)`, id, u.Comment, u.ReviewedAt)
		return errors.Wrap(err, "insert revision")
	})
	if err != nil {
		return nil, err
	}
	return s.GetProposal(ctx, id)
}

func (s *Storage) AddAdvisorComment(ctx context.Context, id uuid.UUID, c models.AdvisorComment) (*models.Proposal, error) {
	query := `
        INSERT INTO advisor_comments (proposal_id, advisor_id, comment, created_at)
        VALUES ($1, $2, $3, $4)`
	if _, err := s.db.ExecContext(ctx, query, id, c.AdvisorID, c.Comment, c.CreatedAt); err != nil {
		return nil, notFound(err, "proposal "+id.String())
	}
	return s.GetProposal(ctx, id)
}

func (s *Storage) SetApprovalDocument(ctx context.Context, id uuid.UUID, filename string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE proposals SET approval_document=$1 WHERE id=$2`, filename, id)
	if err != nil {
		return errors.Wrap(err, "set approval document")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrap(models.ErrNotFound, "proposal "+id.String())
	}
	return nil
}

type revisionRow struct {
	ProposalID uuid.UUID `db:"proposal_id"`
	models.RevisionEntry
}

type advisorCommentRow struct {
	ProposalID uuid.UUID `db:"proposal_id"`
	models.AdvisorComment
}

type sponsorRefRow struct {
	ProposalID uuid.UUID `db:"proposal_id"`
	ID         uuid.UUID `db:"id"`
}

// loadChildren заполняет историю ревизий, комментарии кураторов и id спонсоров,
// по одному запросу на дочернюю таблицу.
func loadChildren(ctx context.Context, q sqlx.QueryerContext, proposals []models.Proposal) error {
	if len(proposals) == 0 {
		return nil
	}
	index := make(map[uuid.UUID]int, len(proposals))
	ids := make([]string, len(proposals))
	for i := range proposals {
		index[proposals[i].ID] = i
		ids[i] = proposals[i].ID.String()
		proposals[i].RevisionHistory = []models.RevisionEntry{}
		proposals[i].AdvisorComments = []models.AdvisorComment{}
		proposals[i].Sponsors = []uuid.UUID{}
	}

	var revisions []revisionRow
	err := sqlx.SelectContext(ctx, q, &revisions, `
        SELECT proposal_id, comment, created_at FROM proposal_revisions
        WHERE proposal_id = ANY($1::uuid[]) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return errors.Wrap(err, "select revisions")
	}
	for _, r := range revisions {
		p := &proposals[index[r.ProposalID]]
		p.RevisionHistory = append(p.RevisionHistory, r.RevisionEntry)
	}

	var comments []advisorCommentRow
	err = sqlx.SelectContext(ctx, q, &comments, `
        SELECT proposal_id, advisor_id, comment, created_at FROM advisor_comments
        WHERE proposal_id = ANY($1::uuid[]) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return errors.Wrap(err, "select advisor comments")
	}
	for _, c := range comments {
		p := &proposals[index[c.ProposalID]]
		p.AdvisorComments = append(p.AdvisorComments, c.AdvisorComment)
	}

	var refs []sponsorRefRow
	err = sqlx.SelectContext(ctx, q, &refs, `
        SELECT proposal_id, id FROM sponsors
        WHERE proposal_id = ANY($1::uuid[]) ORDER BY created_at`, pq.Array(ids))
	if err != nil {
		return errors.Wrap(err, "select sponsor refs")
	}
	for _, r := range refs {
		p := &proposals[index[r.ProposalID]]
		p.Sponsors = append(p.Sponsors, r.ID)
	}
	return nil
}

func pagination(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}
