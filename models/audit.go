package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	ActionProposalCreate AuditAction = "PROPOSAL_CREATE"
	ActionProposalUpdate AuditAction = "PROPOSAL_UPDATE"
	ActionProposalReview AuditAction = "PROPOSAL_REVIEW"
	ActionSponsorCreate  AuditAction = "SPONSOR_CREATE"
	ActionSponsorReview  AuditAction = "SPONSOR_REVIEW"
	ActionAdvisorComment AuditAction = "ADVISOR_COMMENT"
)

// AuditRecord передается в аудит после каждой операции workflow.
type AuditRecord struct {
	Action       AuditAction    `json:"action"`
	PerformedBy  uuid.UUID      `json:"performedBy"`
	TargetEntity string         `json:"targetEntity"`
	TargetID     uuid.UUID      `json:"targetId"`
	Details      map[string]any `json:"details"`
	CreatedAt    time.Time      `json:"createdAt"`
}
