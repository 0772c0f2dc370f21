// Package audit records core state transitions for out-of-band inspection.
// Recording is best effort; a failed write is logged and never aborts the
// operation that produced it.
package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sopworks/sopflow/internal/model"
	"github.com/sopworks/sopflow/internal/store"
)

type Entry struct {
	Action       string
	ResourceType string
	ResourceID   string
	Actor        string
	Details      string
}

type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

var _ Recorder = (*StoreRecorder)(nil)

// StoreRecorder appends audit rows to the primary database.
type StoreRecorder struct {
	store store.AuditStore
}

func NewStoreRecorder(store store.AuditStore) *StoreRecorder {
	return &StoreRecorder{store: store}
}

func (s *StoreRecorder) Record(ctx context.Context, entry Entry) error {
	return s.store.CreateAuditLog(ctx, &model.AuditLog{
		ID:           uuid.New().String(),
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Actor:        entry.Actor,
		Details:      entry.Details,
	})
}

var _ Recorder = (*LogRecorder)(nil)

// LogRecorder writes audit entries to the service log only.
type LogRecorder struct {
}

func NewLogRecorder() *LogRecorder {
	return &LogRecorder{}
}

func (l *LogRecorder) Record(ctx context.Context, entry Entry) error {
	logrus.WithFields(logrus.Fields{
		"action":        entry.Action,
		"resource_type": entry.ResourceType,
		"resource_id":   entry.ResourceID,
		"actor":         entry.Actor,
	}).Info("audit")

	return nil
}
