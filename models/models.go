package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Суммы отдаются в JSON числами, а не строками.
	decimal.MarshalJSONWithoutQuotes = true
}

// Статус рассмотрения заявки
type ProposalStatus string

const (
	StatusPending  ProposalStatus = "pending"
	StatusApproved ProposalStatus = "approved"
	StatusRejected ProposalStatus = "rejected"
)

// Статус рассмотрения спонсорского взноса
type SponsorStatus string

const (
	SponsorPending  SponsorStatus = "pending"
	SponsorApproved SponsorStatus = "approved"
	SponsorRejected SponsorStatus = "rejected"
)

// ReviewState объединяет Status и NeedsRevision в одно значение.
type ReviewState string

const (
	StatePending         ReviewState = "pending"
	StatePendingRevision ReviewState = "pending_revision"
	StateApproved        ReviewState = "approved"
	StateRejected        ReviewState = "rejected"
)

// Решение сотрудника OCA по заявке
type ReviewOutcome string

const (
	OutcomeApprove         ReviewOutcome = "approve"
	OutcomeReject          ReviewOutcome = "reject"
	OutcomeRequestRevision ReviewOutcome = "request_revision"
)

// Сущность Заявки на мероприятие (подает представитель клуба)
type Proposal struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	Title              string          `db:"title" json:"title"`
	Description        string          `db:"description" json:"description"`
	Budget             decimal.Decimal `db:"budget" json:"budget"`
	AllocatedBudget    decimal.Decimal `db:"allocated_budget" json:"allocatedBudget"`
	SponsorRequirement decimal.Decimal `db:"sponsor_requirement" json:"sponsorRequirement"`
	ClubName           string          `db:"club_name" json:"clubName"`
	StartDate          time.Time       `db:"start_date" json:"startDate"`
	EndDate            time.Time       `db:"end_date" json:"endDate"`
	Status             ProposalStatus  `db:"status" json:"status"`
	NeedsRevision      bool            `db:"needs_revision" json:"needsRevision"`
	Comment            *string         `db:"comment" json:"comment"`
	ReviewedAt         *time.Time      `db:"reviewed_at" json:"reviewedAt"`
	ReviewedBy         *uuid.UUID      `db:"reviewed_by" json:"reviewedBy"`
	ApprovalDocument   *string         `db:"approval_document" json:"approvalDocument"`
	SubmittedBy        uuid.UUID       `db:"submitted_by" json:"submittedBy"`
	CreatedAt          time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updatedAt"`

	RevisionHistory []RevisionEntry  `db:"-" json:"revisionHistory"`
	AdvisorComments []AdvisorComment `db:"-" json:"advisorComments"`
	Sponsors        []uuid.UUID      `db:"-" json:"sponsors"`
}

// State возвращает состояние рассмотрения заявки.
func (p *Proposal) State() ReviewState {
	switch p.Status {
	case StatusApproved:
		return StateApproved
	case StatusRejected:
		return StateRejected
	}
	if p.NeedsRevision {
		return StatePendingRevision
	}
	return StatePending
}

// Запись истории ревизий заявки
type RevisionEntry struct {
	Comment   string    `db:"comment" json:"comment"`
	Timestamp time.Time `db:"created_at" json:"timestamp"`
}

// Комментарий куратора к одобренному мероприятию
type AdvisorComment struct {
	Comment   string    `db:"comment" json:"comment"`
	AdvisorID uuid.UUID `db:"advisor_id" json:"advisorId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Сущность Спонсора
type Sponsor struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	ProposalID    uuid.UUID       `db:"proposal_id" json:"eventProposal"`
	SponsorName   string          `db:"sponsor_name" json:"sponsorName"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Status        SponsorStatus   `db:"status" json:"status"`
	SubmittedBy   uuid.UUID       `db:"submitted_by" json:"submittedBy"`
	ReviewedBy    *uuid.UUID      `db:"reviewed_by" json:"reviewedBy"`
	ReviewComment *string         `db:"review_comment" json:"reviewComment"`
	ReviewedAt    *time.Time      `db:"reviewed_at" json:"reviewedAt"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// Пользователь (для отображения)
type Identity struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Name  string    `db:"name" json:"name"`
	Email string    `db:"email" json:"email"`
	Role  string    `db:"role" json:"role"`
}
