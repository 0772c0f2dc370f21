package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sopworks/sopflow/internal/audit"
	"github.com/sopworks/sopflow/internal/model"
	"github.com/sopworks/sopflow/internal/store"
)

// Staged-change keys carried in WorkingCopy.Changes. The original_* keys
// freeze the document state observed at branch time so the merge engine can
// tell overrides from untouched fields.
const (
	changeOriginalVersion    = "original_version"
	changeOriginalDepartment = "original_department"
	changeOriginalPriority   = "original_priority"
	changeOriginalCategory   = "original_category"
	changeSubmissionSummary  = "submission_summary"
)

// WorkingCopyFields carries a partial edit of a working copy. Nil pointers
// leave the stored value untouched; Changes entries are merged key by key.
type WorkingCopyFields struct {
	Title       *string
	Content     *string
	Description *string
	Changes     map[string]string
}

// CreateWorkingCopy branches a private draft off a published document. The
// document's current fields become the draft defaults unless the caller
// supplies its own. At most one live copy may exist per (document, user);
// the store's unique index rejects the race atomically.
func (s *WorkingCopyService) CreateWorkingCopy(ctx context.Context, documentID, userID uuid.UUID, fields WorkingCopyFields) (*model.WorkingCopy, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	copy := &model.WorkingCopy{
		ID:          uuid.New().String(),
		DocumentID:  doc.ID,
		UserID:      userID.String(),
		Title:       doc.Title,
		Content:     doc.Content,
		Description: doc.Description,
	}

	if fields.Title != nil {
		copy.Title = *fields.Title
	}
	if fields.Content != nil {
		copy.Content = *fields.Content
	}
	if fields.Description != nil {
		copy.Description = *fields.Description
	}

	changes := map[string]string{
		changeOriginalVersion:    doc.Version,
		changeOriginalDepartment: doc.Department,
		changeOriginalPriority:   doc.Priority,
		changeOriginalCategory:   doc.Category,
	}
	for key, value := range fields.Changes {
		changes[key] = value
	}
	if err := copy.SetChangesMap(changes); err != nil {
		return nil, err
	}

	if err := s.store.CreateWorkingCopy(ctx, copy); err != nil {
		if errors.Is(err, store.ErrDuplicateWorkingCopy) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}

		return nil, err
	}

	s.audit(ctx, audit.Entry{
		Action:       "working_copy.create",
		ResourceType: "working_copy",
		ResourceID:   copy.ID,
		Actor:        userID.String(),
		Details:      "document " + doc.ID,
	})

	return copy, nil
}

// UpdateWorkingCopy applies a partial edit to an unsubmitted draft. The
// caller must present the revision it last read; a stale revision fails with
// ErrConflict instead of silently overwriting a concurrent edit.
func (s *WorkingCopyService) UpdateWorkingCopy(ctx context.Context, id, userID uuid.UUID, revision int64, fields WorkingCopyFields) (*model.WorkingCopy, error) {
	copy, err := s.store.GetWorkingCopy(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}

	if copy.UserID != userID.String() {
		return nil, fmt.Errorf("%w: working copy belongs to another user", ErrForbidden)
	}

	if copy.IsSubmitted {
		return nil, fmt.Errorf("%w: submitted working copies are immutable, discard and recreate to restart", ErrInvalid)
	}

	if copy.Revision != revision {
		return nil, fmt.Errorf("%w: working copy revision %d is stale, current is %d", ErrConflict, revision, copy.Revision)
	}

	if fields.Title != nil {
		copy.Title = *fields.Title
	}
	if fields.Content != nil {
		copy.Content = *fields.Content
	}
	if fields.Description != nil {
		copy.Description = *fields.Description
	}

	if len(fields.Changes) > 0 {
		changes, err := copy.ChangesMap()
		if err != nil {
			return nil, err
		}
		for key, value := range fields.Changes {
			changes[key] = value
		}
		if err := copy.SetChangesMap(changes); err != nil {
			return nil, err
		}
	}

	copy.Revision = revision + 1
	ok, err := s.store.UpdateWorkingCopy(ctx, copy, revision)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: working copy was modified concurrently", ErrConflict)
	}

	return copy, nil
}

// DiscardWorkingCopy retires a draft without merging. Before submission the
// owner may discard freely; after submission the draft is only discardable
// once a reviewer has rejected it, so in-flight reviews are not lost by
// accident.
func (s *WorkingCopyService) DiscardWorkingCopy(ctx context.Context, id, userID uuid.UUID) error {
	copy, err := s.store.GetWorkingCopy(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}

	if copy.UserID != userID.String() {
		return fmt.Errorf("%w: working copy belongs to another user", ErrForbidden)
	}

	if copy.IsSubmitted {
		reviews, err := s.store.ListReviews(ctx, id)
		if err != nil {
			return err
		}

		rejected := false
		for _, review := range reviews {
			if review.Status == model.ReviewStatusRejected {
				rejected = true
				break
			}
		}
		if !rejected {
			return fmt.Errorf("%w: submitted working copy can only be discarded after a rejection", ErrInvalid)
		}
	}

	if _, err := s.store.DeleteWorkingCopy(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, audit.Entry{
		Action:       "working_copy.discard",
		ResourceType: "working_copy",
		ResourceID:   copy.ID,
		Actor:        userID.String(),
	})

	return nil
}

// GetWorkingCopy retrieves a working copy by ID.
func (s *WorkingCopyService) GetWorkingCopy(ctx context.Context, id uuid.UUID) (*model.WorkingCopy, error) {
	copy, err := s.store.GetWorkingCopy(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}

	return copy, nil
}

// ListWorkingCopiesForDocument lists the live working copies of a document.
func (s *WorkingCopyService) ListWorkingCopiesForDocument(ctx context.Context, documentID uuid.UUID) ([]*model.WorkingCopy, error) {
	return s.store.ListWorkingCopiesForDocument(ctx, documentID)
}

// ListWorkingCopiesForUser lists the live working copies a user owns.
func (s *WorkingCopyService) ListWorkingCopiesForUser(ctx context.Context, userID uuid.UUID) ([]*model.WorkingCopy, error) {
	return s.store.ListWorkingCopiesForUser(ctx, userID)
}

// ListReviews lists the reviews of a working copy.
func (s *WorkingCopyService) ListReviews(ctx context.Context, workingCopyID uuid.UUID) ([]*model.WorkingCopyReview, error) {
	return s.store.ListReviews(ctx, workingCopyID)
}
