package certificate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/db/memory"
	"eventhub/internal/workflow"
	"eventhub/models"
)

func TestRenderWritesCertificate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	r := NewRenderer(dir)
	r.now = func() time.Time { return time.Unix(0, 42) }

	reviewedAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	comment := "enjoy"
	id := uuid.MustParse("55555555-5555-5555-5555-555555555555")
	v := workflow.ProposalView{
		Proposal: models.Proposal{
			ID:                 id,
			Title:              "Robotics Expo",
			ClubName:           "Robotics Club",
			Budget:             decimal.NewFromInt(10000),
			AllocatedBudget:    decimal.NewFromInt(6000),
			SponsorRequirement: decimal.NewFromInt(4000),
			StartDate:          time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			EndDate:            time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC),
			ReviewedAt:         &reviewedAt,
			Comment:            &comment,
		},
		Submitter: &models.Identity{Name: "Club Rep", Email: "rep@uni.edu"},
		Reviewer:  &models.Identity{Name: "OCA Officer"},
	}

	name, err := r.Render(v)
	require.NoError(t, err)
	assert.Equal(t, "event-approval-55555555-5555-5555-5555-555555555555-42.txt", name)

	body, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, "Robotics Expo")
	assert.Contains(t, text, "2026-04-01 to 2026-04-03")
	assert.Contains(t, text, "Allocated budget:    6000.00")
	assert.Contains(t, text, "Sponsor requirement: 4000.00")
	assert.Contains(t, text, "Club Rep <rep@uni.edu>")
	assert.Contains(t, text, "OCA Officer")
	assert.Contains(t, text, "enjoy")
}

func TestApprovalHookSetsDocument(t *testing.T) {
	store := memory.NewStore()
	reviewer := uuid.New()
	svc := workflow.New(store, workflow.WithApprovalHook(ApprovalHook(NewRenderer(t.TempDir()), store)))

	budget := decimal.NewFromInt(500)
	p, err := svc.CreateProposal(context.Background(), workflow.NewProposal{
		Title:       "Bake sale",
		Description: "Cakes",
		Budget:      &budget,
		ClubName:    "Cooking Club",
		StartDate:   time.Now(),
		EndDate:     time.Now().Add(time.Hour),
		SubmittedBy: uuid.New(),
	})
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), p.ID, workflow.Decision{Outcome: models.OutcomeApprove, ReviewerID: reviewer})
	require.NoError(t, err)

	got, err := store.GetProposal(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ApprovalDocument)
	assert.Regexp(t, `^event-approval-`+p.ID.String()+`-\d+\.txt$`, *got.ApprovalDocument)
}
