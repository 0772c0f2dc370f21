package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sopworks/sopflow/internal/audit"
	"github.com/sopworks/sopflow/internal/cache"
	"github.com/sopworks/sopflow/internal/diff"
	"github.com/sopworks/sopflow/internal/lock"
	"github.com/sopworks/sopflow/internal/model"
	"github.com/sopworks/sopflow/internal/notify"
	"github.com/sopworks/sopflow/internal/store"
)

// NewWorkingCopyService creates a new WorkingCopyService.
func NewWorkingCopyService(store store.Store, notifier notify.Sink, auditor audit.Recorder, opts ...Option) *WorkingCopyService {
	service := &WorkingCopyService{
		store:    store,
		notifier: notifier,
		auditor:  auditor,
		locks:    lock.NewKeyedMutex(),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// WorkingCopyService manages the working-copy lifecycle: branch, edit,
// submit, review and merge back into the published document.
type WorkingCopyService struct {
	store    store.Store
	notifier notify.Sink
	auditor  audit.Recorder
	cache    cache.DocumentCache
	locks    *lock.KeyedMutex
}

type Option func(*WorkingCopyService)

// WithDocumentCache enables the read-through cache for published documents.
func WithDocumentCache(c cache.DocumentCache) Option {
	return func(s *WorkingCopyService) {
		s.cache = c
	}
}

// DocumentFields carries the authoring fields of a published document.
type DocumentFields struct {
	Title       string
	Content     string
	Description string
	Department  string
	Priority    string
	Category    string
}

// CreateDocument publishes a new document at version "1.0". Later mutations
// of title, content and version happen only through merges.
func (s *WorkingCopyService) CreateDocument(ctx context.Context, userID uuid.UUID, fields DocumentFields) (*model.Document, error) {
	if fields.Title == "" {
		return nil, fmt.Errorf("%w: document title is required", ErrInvalid)
	}

	doc := &model.Document{
		ID:          uuid.New().String(),
		Title:       fields.Title,
		Content:     fields.Content,
		Description: fields.Description,
		Version:     "1.0",
		Department:  fields.Department,
		Priority:    fields.Priority,
		Category:    fields.Category,
		CreatedBy:   userID.String(),
	}

	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	s.audit(ctx, audit.Entry{
		Action:       "document.create",
		ResourceType: "document",
		ResourceID:   doc.ID,
		Actor:        userID.String(),
	})

	return doc, nil
}

// GetDocument retrieves a published document, serving from the cache when
// one is configured.
func (s *WorkingCopyService) GetDocument(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	if s.cache != nil {
		doc, err := s.cache.GetDocument(ctx, id)
		if err != nil {
			logrus.Warnf("document cache read failed: %v", err)
		} else if doc != nil {
			return doc, nil
		}
	}

	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}

	if s.cache != nil {
		if err := s.cache.SetDocument(ctx, id, doc); err != nil {
			logrus.Warnf("document cache write failed: %v", err)
		}
	}

	return doc, nil
}

// ListDocuments lists all published documents.
func (s *WorkingCopyService) ListDocuments(ctx context.Context) ([]*model.Document, int64, error) {
	return s.store.ListDocuments(ctx)
}

// ListVersionSnapshots returns a document's archived versions, newest first.
func (s *WorkingCopyService) ListVersionSnapshots(ctx context.Context, docID uuid.UUID) ([]*model.VersionSnapshot, error) {
	if _, err := s.store.GetDocument(ctx, docID); err != nil {
		return nil, mapStoreError(err)
	}

	return s.store.ListVersionSnapshots(ctx, docID)
}

// GetVersionSnapshot returns one archived version of a document.
func (s *WorkingCopyService) GetVersionSnapshot(ctx context.Context, docID uuid.UUID, version string) (*model.VersionSnapshot, error) {
	snapshot, err := s.store.GetVersionSnapshot(ctx, docID, version)
	if err != nil {
		return nil, mapStoreError(err)
	}

	return snapshot, nil
}

// DiffPreview computes the line delta shown to reviewers. Pure; never part
// of merge correctness.
func (s *WorkingCopyService) DiffPreview(original, modified string) []diff.Line {
	return diff.Lines(original, modified)
}

// audit records a state transition. Failures are logged and swallowed; the
// primary transition stays durable.
func (s *WorkingCopyService) audit(ctx context.Context, entry audit.Entry) {
	if err := s.auditor.Record(ctx, entry); err != nil {
		logrus.Warnf("audit record failed for %s %s: %v", entry.Action, entry.ResourceID, err)
	}
}

// notifyUser delivers a notification. Failures are logged and swallowed.
func (s *WorkingCopyService) notifyUser(ctx context.Context, userID uuid.UUID, kind string, payload map[string]string) {
	if err := s.notifier.Notify(ctx, userID, kind, payload); err != nil {
		logrus.Warnf("notification %s to %s failed: %v", kind, userID, err)
	}
}

func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return err
}
