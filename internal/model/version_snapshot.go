package model

import "gorm.io/gorm"

// VersionSnapshot archives a document's state immediately before a merge
// overwrites it. The trail is append only; snapshots are never mutated or
// deleted.
type VersionSnapshot struct {
	gorm.Model  `json:"-"`
	ID          string `gorm:"primaryKey;uuid;not null;" json:"id"`
	DocumentID  string `gorm:"uuid;not null;index" json:"document_id"`
	Version     string `gorm:"not null" json:"version"` // the version string being superseded
	Title       string `json:"title"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Summary     string `json:"summary"`
	CreatedBy   string `gorm:"uuid;not null" json:"created_by"` // author of the merged working copy
	Compression string `json:"compression,omitempty"`
}

func (VersionSnapshot) TableName() string {
	return "version_snapshots"
}
