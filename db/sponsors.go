package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"eventhub/models"
)

const sponsorColumns = `id, proposal_id, sponsor_name, amount, status, submitted_by,
        reviewed_by, review_comment, reviewed_at, created_at, updated_at`

func (s *Storage) CreateSponsor(ctx context.Context, sp *models.Sponsor) error {
	query := `
        INSERT INTO sponsors
            (id, proposal_id, sponsor_name, amount, status, submitted_by, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query,
		sp.ID, sp.ProposalID, sp.SponsorName, sp.Amount, sp.Status, sp.SubmittedBy, sp.CreatedAt, sp.UpdatedAt)
	if err != nil {
		return notFound(err, "proposal "+sp.ProposalID.String())
	}
	return nil
}

func (s *Storage) GetSponsor(ctx context.Context, id uuid.UUID) (*models.Sponsor, error) {
	sp := models.Sponsor{}
	query := `SELECT ` + sponsorColumns + ` FROM sponsors WHERE id = $1`
	if err := s.db.GetContext(ctx, &sp, query, id); err != nil {
		return nil, notFound(err, "sponsor "+id.String())
	}
	return &sp, nil
}

func (s *Storage) ListSponsors(ctx context.Context, f models.SponsorFilter) ([]models.Sponsor, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.ProposalID != uuid.Nil {
		args = append(args, f.ProposalID)
		conds = append(conds, fmt.Sprintf("proposal_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + sponsorColumns + ` FROM sponsors`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC" + pagination(f.Limit, f.Offset)

	sponsors := []models.Sponsor{}
	if err := s.db.SelectContext(ctx, &sponsors, query, args...); err != nil {
		return nil, errors.Wrap(err, "select sponsors")
	}
	return sponsors, nil
}

func (s *Storage) ReviewSponsor(ctx context.Context, id uuid.UUID, r models.SponsorReview, decrement models.DecrementFunc) (*models.Sponsor, error) {
	sp := models.Sponsor{}
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT ` + sponsorColumns + ` FROM sponsors WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &sp, query, id); err != nil {
			return notFound(err, "sponsor "+id.String())
		}
		if sp.Status != models.SponsorPending {
			return errors.Wrapf(models.ErrInvalidState, "sponsor %s already %s", id, sp.Status)
		}

		_, err := tx.ExecContext(ctx, `
            UPDATE sponsors
            SET status=$1, review_comment=$2, reviewed_by=$3, reviewed_at=$4, updated_at=$4
            WHERE id=$5`,
			r.Status, r.Comment, r.ReviewedBy, r.ReviewedAt, id)
		if err != nil {
			return errors.Wrap(err, "update sponsor review")
		}
		if r.Status != models.SponsorApproved {
			return nil
		}

		var current decimal.Decimal
		err = tx.GetContext(ctx, &current,
			`SELECT sponsor_requirement FROM proposals WHERE id = $1 FOR UPDATE`, sp.ProposalID)
		if err != nil {
			return notFound(err, "proposal "+sp.ProposalID.String())
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE proposals SET sponsor_requirement=$1, updated_at=$2 WHERE id=$3`,
			decrement(current, sp.Amount), r.ReviewedAt, sp.ProposalID)
		return errors.Wrap(err, "decrement sponsor requirement")
	})
	if err != nil {
		return nil, err
	}

	reviewedBy, reviewedAt := r.ReviewedBy, r.ReviewedAt
	sp.Status = r.Status
	sp.ReviewComment = r.Comment
	sp.ReviewedBy = &reviewedBy
	sp.ReviewedAt = &reviewedAt
	sp.UpdatedAt = reviewedAt
	return &sp, nil
}
