package model

import "gorm.io/gorm"

// AuditLog records a core state transition for out-of-band inspection.
// Writes are best effort and never abort the operation that produced them.
type AuditLog struct {
	gorm.Model   `json:"-"`
	ID           string `gorm:"primaryKey;uuid;not null;" json:"id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `gorm:"uuid;not null;index" json:"resource_id"`
	Actor        string `gorm:"uuid" json:"actor"`
	Details      string `json:"details"`
}
