package model

import (
	"encoding/json"
	"time"
)

// WorkingCopy is a private draft of a document scoped to a single user.
// The composite unique index backs the at-most-one-live-copy-per-(document,user)
// rule; rows are hard deleted on merge or discard so a user can branch again.
type WorkingCopy struct {
	ID          string `gorm:"primaryKey;uuid;not null;" json:"id"`
	DocumentID  string `gorm:"uuid;not null;uniqueIndex:idx_working_copies_document_user" json:"document_id"`
	UserID      string `gorm:"uuid;not null;uniqueIndex:idx_working_copies_document_user" json:"user_id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Changes     string `json:"changes"` // JSON object staging fields outside the document core schema
	Revision    int64  `gorm:"not null;default:0" json:"revision"` // optimistic concurrency token, bumped on every write
	IsSubmitted bool   `gorm:"not null;default:false" json:"is_submitted"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ChangesMap decodes the staged changes. An empty column decodes to an empty map.
func (w *WorkingCopy) ChangesMap() (map[string]string, error) {
	changes := make(map[string]string)
	if w.Changes == "" {
		return changes, nil
	}

	if err := json.Unmarshal([]byte(w.Changes), &changes); err != nil {
		return nil, err
	}

	return changes, nil
}

// SetChangesMap encodes the staged changes back into the column.
func (w *WorkingCopy) SetChangesMap(changes map[string]string) error {
	data, err := json.Marshal(changes)
	if err != nil {
		return err
	}

	w.Changes = string(data)

	return nil
}
