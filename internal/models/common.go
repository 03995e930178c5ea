package models

import (
	"time"
)

type BaseModel struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Review holds the fields shared by every admin-reviewed row.
type Review struct {
	ApprovalStatus  ApprovalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"approval_status"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	ReviewedBy      *string        `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
}

// MarkReviewed stamps an approval decision.
func (r *Review) MarkReviewed(status ApprovalStatus, reviewerID, reason string, at time.Time) {
	r.ApprovalStatus = status
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &at
	if status == ApprovalRejected {
		r.RejectionReason = reason
	} else {
		r.RejectionReason = ""
	}
}

// ResetReview returns the row to the review queue.
func (r *Review) ResetReview() {
	r.ApprovalStatus = ApprovalPending
	r.RejectionReason = ""
	r.ReviewedBy = nil
	r.ReviewedAt = nil
}
