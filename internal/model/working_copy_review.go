package model

import "time"

const (
	ReviewStatusPending          = "pending"
	ReviewStatusApproved         = "approved"
	ReviewStatusRejected         = "rejected"
	ReviewStatusChangesRequested = "changes_requested"
)

// WorkingCopyReview is one reviewer's verdict on a working copy. Reviews are
// created in bulk at submission time and removed with the owning copy.
// Approved and rejected are terminal for the reviewer; changes_requested may
// be re-decided.
type WorkingCopyReview struct {
	ID            string `gorm:"primaryKey;uuid;not null;" json:"id"`
	WorkingCopyID string `gorm:"uuid;not null;index" json:"working_copy_id"`
	ReviewerID    string `gorm:"uuid;not null" json:"reviewer_id"`
	Status        string `gorm:"not null;default:'pending'" json:"status"`
	Comments      string `json:"comments"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Terminal reports whether the review can no longer be re-decided.
func (r *WorkingCopyReview) Terminal() bool {
	return r.Status == ReviewStatusApproved || r.Status == ReviewStatusRejected
}
