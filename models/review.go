package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReviewUpdate это все поля, которые записывает рассмотрение заявки.
type ReviewUpdate struct {
	Status             ProposalStatus
	NeedsRevision      bool
	AllocatedBudget    decimal.Decimal
	SponsorRequirement decimal.Decimal
	Comment            string
	ReviewedBy         uuid.UUID
	ReviewedAt         time.Time
}

// ReviewFunc вычисляет ReviewUpdate по текущему сохраненному состоянию заявки.
// Хранилище вызывает ее, удерживая заявку эксклюзивно.
type ReviewFunc func(current Proposal) ReviewUpdate

// SponsorReview это решение по спонсорскому взносу.
type SponsorReview struct {
	Status     SponsorStatus
	Comment    *string
	ReviewedBy uuid.UUID
	ReviewedAt time.Time
}

// DecrementFunc вычисляет новую потребность в спонсорах после одобренного взноса.
type DecrementFunc func(current, amount decimal.Decimal) decimal.Decimal

// ProposalFilter фильтрует список заявок. Нулевые значения означают без фильтра.
type ProposalFilter struct {
	Status      ProposalStatus
	SubmittedBy uuid.UUID
	// ByReviewedAt сортирует по времени рассмотрения вместо времени создания.
	ByReviewedAt bool
	Limit        int
	Offset       int
}

type SponsorFilter struct {
	ProposalID uuid.UUID
	Status     SponsorStatus
	Limit      int
	Offset     int
}
