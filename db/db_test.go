package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/models"
)

var proposalCols = []string{
	"id", "title", "description", "budget", "allocated_budget", "sponsor_requirement",
	"club_name", "start_date", "end_date", "status", "needs_revision", "comment", "reviewed_at",
	"reviewed_by", "approval_document", "submitted_by", "created_at", "updated_at",
}

var sponsorCols = []string{
	"id", "proposal_id", "sponsor_name", "amount", "status", "submitted_by",
	"reviewed_by", "review_comment", "reviewed_at", "created_at", "updated_at",
}

func newMock(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewStorage(sqlx.NewDb(conn, "postgres")), mock
}

func proposalRow(id, submitter uuid.UUID, status string, requirement string, at time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(proposalCols).AddRow(
		id.String(), "Hackathon", "24h build", "5000.00", "0", requirement,
		"Coding Club", at, at.Add(24*time.Hour), status, false, nil, nil,
		nil, nil, submitter.String(), at, at)
}

func expectChildren(mock sqlmock.Sqlmock, id uuid.UUID, at time.Time) {
	mock.ExpectQuery(`SELECT proposal_id, comment, created_at FROM proposal_revisions`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"proposal_id", "comment", "created_at"}).
			AddRow(id.String(), "looks good", at))
	mock.ExpectQuery(`SELECT proposal_id, advisor_id, comment, created_at FROM advisor_comments`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"proposal_id", "advisor_id", "comment", "created_at"}))
	mock.ExpectQuery(`SELECT proposal_id, id FROM sponsors`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"proposal_id", "id"}).
			AddRow(id.String(), uuid.NewString()).
			AddRow(id.String(), uuid.NewString()))
}

func TestGetProposal(t *testing.T) {
	s, mock := newMock(t)
	id, submitter := uuid.New(), uuid.New()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM proposals WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(proposalRow(id, submitter, "pending", "0", at))
	expectChildren(mock, id, at)

	p, err := s.GetProposal(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "5000", p.Budget.String())
	assert.Equal(t, models.StatusPending, p.Status)
	assert.Equal(t, submitter, p.SubmittedBy)
	assert.Nil(t, p.ReviewedBy)
	require.Len(t, p.RevisionHistory, 1)
	assert.Equal(t, "looks good", p.RevisionHistory[0].Comment)
	assert.Empty(t, p.AdvisorComments)
	assert.Len(t, p.Sponsors, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProposalNotFound(t *testing.T) {
	s, mock := newMock(t)
	id := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM proposals WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(proposalCols))

	_, err := s.GetProposal(context.Background(), id)
	require.ErrorIs(t, err, models.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListProposalsBuildsFilters(t *testing.T) {
	s, mock := newMock(t)
	submitter := uuid.New()
	mock.ExpectQuery(`FROM proposals WHERE status = \$1 AND submitted_by = \$2 ORDER BY reviewed_at DESC NULLS LAST, created_at DESC LIMIT 5 OFFSET 10`).
		WithArgs("approved", submitter).
		WillReturnRows(sqlmock.NewRows(proposalCols))

	got, err := s.ListProposals(context.Background(), models.ProposalFilter{
		Status:       models.StatusApproved,
		SubmittedBy:  submitter,
		ByReviewedAt: true,
		Limit:        5,
		Offset:       10,
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyReviewLocksAndWritesRevision(t *testing.T) {
	s, mock := newMock(t)
	id, submitter, reviewer := uuid.New(), uuid.New(), uuid.New()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM proposals WHERE id = \$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(proposalRow(id, submitter, "pending", "0", at))
	mock.ExpectExec(`UPDATE proposals`).
		WithArgs(models.StatusApproved, false, decimal.RequireFromString("3000"), decimal.RequireFromString("2000"),
			"ok", reviewer, at, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO proposal_revisions`).
		WithArgs(id, "ok", at).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT (.+) FROM proposals WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(proposalRow(id, submitter, "approved", "2000", at))
	expectChildren(mock, id, at)

	var seen decimal.Decimal
	p, err := s.ApplyReview(context.Background(), id, func(current models.Proposal) models.ReviewUpdate {
		seen = current.Budget
		return models.ReviewUpdate{
			Status:             models.StatusApproved,
			AllocatedBudget:    decimal.RequireFromString("3000"),
			SponsorRequirement: decimal.RequireFromString("2000"),
			Comment:            "ok",
			ReviewedBy:         reviewer,
			ReviewedAt:         at,
		}
	})
	require.NoError(t, err)
	assert.Equal(t, "5000", seen.String())
	assert.Equal(t, models.StatusApproved, p.Status)
	assert.Equal(t, "2000", p.SponsorRequirement.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyReviewRollsBackOnWriteFailure(t *testing.T) {
	s, mock := newMock(t)
	id := uuid.New()
	at := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(proposalRow(id, uuid.New(), "pending", "0", at))
	mock.ExpectExec(`UPDATE proposals`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := s.ApplyReview(context.Background(), id, func(models.Proposal) models.ReviewUpdate {
		return models.ReviewUpdate{Status: models.StatusRejected, Comment: "no", ReviewedAt: at}
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProposalDetailsOnlyWhilePending(t *testing.T) {
	s, mock := newMock(t)
	p := &models.Proposal{ID: uuid.New(), Title: "New title", Budget: decimal.NewFromInt(10)}

	mock.ExpectExec(`UPDATE proposals (.+) WHERE id=\$8 AND status='pending'`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM proposals WHERE id=\$1`).
		WithArgs(p.ID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("approved"))
	require.ErrorIs(t, s.UpdateProposalDetails(context.Background(), p), models.ErrInvalidState)

	mock.ExpectExec(`UPDATE proposals`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM proposals`).
		WithArgs(p.ID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	require.ErrorIs(t, s.UpdateProposalDetails(context.Background(), p), models.ErrNotFound)

	mock.ExpectExec(`UPDATE proposals`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.UpdateProposalDetails(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSponsorForMissingProposal(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO sponsors`).
		WillReturnError(&pq.Error{Code: foreignKeyViolation})

	err := s.CreateSponsor(context.Background(), &models.Sponsor{ID: uuid.New(), ProposalID: uuid.New()})
	require.ErrorIs(t, err, models.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewSponsorApproveDecrementsRequirement(t *testing.T) {
	s, mock := newMock(t)
	sponsorID, proposalID, reviewer := uuid.New(), uuid.New(), uuid.New()
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	comment := "thanks"

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM sponsors WHERE id = \$1 FOR UPDATE`).
		WithArgs(sponsorID).
		WillReturnRows(sqlmock.NewRows(sponsorCols).AddRow(
			sponsorID.String(), proposalID.String(), "Acme", "1500", "pending", uuid.NewString(),
			nil, nil, nil, at, at))
	mock.ExpectExec(`UPDATE sponsors`).
		WithArgs(models.SponsorApproved, &comment, reviewer, at, sponsorID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT sponsor_requirement FROM proposals WHERE id = \$1 FOR UPDATE`).
		WithArgs(proposalID).
		WillReturnRows(sqlmock.NewRows([]string{"sponsor_requirement"}).AddRow("2000.00"))
	mock.ExpectExec(`UPDATE proposals SET sponsor_requirement`).
		WithArgs(decimal.RequireFromString("500"), at, proposalID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sp, err := s.ReviewSponsor(context.Background(), sponsorID, models.SponsorReview{
		Status:     models.SponsorApproved,
		Comment:    &comment,
		ReviewedBy: reviewer,
		ReviewedAt: at,
	}, func(current, amount decimal.Decimal) decimal.Decimal { return current.Sub(amount) })
	require.NoError(t, err)
	assert.Equal(t, models.SponsorApproved, sp.Status)
	require.NotNil(t, sp.ReviewedBy)
	assert.Equal(t, reviewer, *sp.ReviewedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewSponsorTwiceIsInvalid(t *testing.T) {
	s, mock := newMock(t)
	sponsorID := uuid.New()
	at := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM sponsors WHERE id = \$1 FOR UPDATE`).
		WithArgs(sponsorID).
		WillReturnRows(sqlmock.NewRows(sponsorCols).AddRow(
			sponsorID.String(), uuid.NewString(), "Acme", "1500", "approved", uuid.NewString(),
			uuid.NewString(), nil, at, at, at))
	mock.ExpectRollback()

	_, err := s.ReviewSponsor(context.Background(), sponsorID, models.SponsorReview{
		Status:     models.SponsorRejected,
		ReviewedAt: at,
	}, func(current, _ decimal.Decimal) decimal.Decimal { return current })
	require.ErrorIs(t, err, models.ErrInvalidState)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordWritesAuditLog(t *testing.T) {
	s, mock := newMock(t)
	rec := models.AuditRecord{
		Action:       models.ActionSponsorReview,
		PerformedBy:  uuid.New(),
		TargetEntity: "Sponsor",
		TargetID:     uuid.New(),
		Details:      map[string]any{"status": "approved"},
		CreatedAt:    time.Now().UTC(),
	}
	mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(rec.Action, rec.PerformedBy, rec.TargetEntity, rec.TargetID, []byte(`{"status":"approved"}`), rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Record(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveIdentity(t *testing.T) {
	s, mock := newMock(t)
	id := uuid.New()
	mock.ExpectQuery(`SELECT id, name, email, role FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role"}).
			AddRow(id.String(), "Dana", "dana@uni.edu", "oca"))

	ident, err := s.ResolveIdentity(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Dana", ident.Name)

	mock.ExpectQuery(`FROM users`).WithArgs(id).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = s.ResolveIdentity(context.Background(), id)
	require.ErrorIs(t, err, models.ErrNotFound)
}
