package model

import (
	"encoding/json"

	"gorm.io/gorm"
)

// Document is the published, canonical version of an SOP. Title, content and
// version are overwritten only by merging an approved working copy; direct
// writes stop after initial authoring.
type Document struct {
	gorm.Model  `json:"-"`
	ID          string `gorm:"primaryKey;uuid;not null;" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Version     string `gorm:"not null" json:"version"` // decimal string, e.g. "1.0", bumped by 0.1 on merge
	Department  string `json:"department"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	CreatedBy   string `gorm:"uuid" json:"created_by"`
}

func (d *Document) MarshalBinary() ([]byte, error) {
	return json.Marshal(d)
}
