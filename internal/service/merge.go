package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sopworks/sopflow/internal/audit"
	"github.com/sopworks/sopflow/internal/model"
	"github.com/sopworks/sopflow/internal/notify"
	"github.com/sopworks/sopflow/internal/store"
)

// errAlreadyMerged aborts a merge transaction whose working copy was
// consumed by a concurrent merge or discard. Not surfaced to callers.
var errAlreadyMerged = errors.New("working copy already consumed")

// mergeIfApproved runs the check-unanimity-then-merge sequence under the
// per-copy advisory lock so racing final approvals fire exactly one merge.
func (s *WorkingCopyService) mergeIfApproved(ctx context.Context, workingCopyID uuid.UUID) error {
	key := workingCopyID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	var doc *model.Document
	var copy *model.WorkingCopy

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		copy, err = tx.GetWorkingCopy(ctx, workingCopyID)
		if errors.Is(err, store.ErrNotFound) {
			// a concurrent decision already merged or discarded the copy
			return errAlreadyMerged
		}
		if err != nil {
			return err
		}

		// unanimity is re-verified here, never trusted from the caller
		reviews, err := tx.ListReviews(ctx, workingCopyID)
		if err != nil {
			return err
		}
		if len(reviews) == 0 {
			return fmt.Errorf("%w: working copy has no reviews", ErrInvalid)
		}
		for _, review := range reviews {
			if review.Status != model.ReviewStatusApproved {
				return nil
			}
		}

		doc, err = tx.GetDocument(ctx, uuid.MustParse(copy.DocumentID))
		if err != nil {
			return mapStoreError(err)
		}

		changes, err := copy.ChangesMap()
		if err != nil {
			return err
		}

		// archive the pre-merge state before any overwrite
		summary := changes[changeSubmissionSummary]
		if summary == "" {
			summary = "merged working copy"
		}
		snapshot := &model.VersionSnapshot{
			ID:          uuid.New().String(),
			DocumentID:  doc.ID,
			Version:     doc.Version,
			Title:       doc.Title,
			Content:     doc.Content,
			Description: doc.Description,
			Summary:     fmt.Sprintf("%s (by %s)", summary, copy.UserID),
			CreatedBy:   copy.UserID,
		}
		if err := tx.CreateVersionSnapshot(ctx, snapshot); err != nil {
			return err
		}

		version, err := bumpVersion(doc.Version)
		if err != nil {
			return fmt.Errorf("%w: document version %q is not a decimal number", ErrInvalid, doc.Version)
		}

		doc.Version = version
		doc.Title = copy.Title
		doc.Content = copy.Content
		doc.Description = copy.Description
		applyOverride(changes, "department", changeOriginalDepartment, &doc.Department)
		applyOverride(changes, "priority", changeOriginalPriority, &doc.Priority)
		applyOverride(changes, "category", changeOriginalCategory, &doc.Category)

		if err := tx.UpdateDocument(ctx, doc); err != nil {
			return err
		}

		// the delete doubles as the merge marker: zero rows means another
		// transaction won the race, so roll everything back
		rows, err := tx.DeleteWorkingCopy(ctx, workingCopyID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return errAlreadyMerged
		}

		return nil
	})
	if errors.Is(err, errAlreadyMerged) {
		logrus.Infof("merge of working copy %s skipped, already consumed", workingCopyID)
		return nil
	}
	if err != nil {
		return err
	}
	if doc == nil {
		// unanimity not reached yet
		return nil
	}

	logrus.Infof("merged working copy %s into document %s at version %s", copy.ID, doc.ID, doc.Version)

	if s.cache != nil {
		if err := s.cache.SetDocument(ctx, uuid.MustParse(doc.ID), doc); err != nil {
			logrus.Warnf("document cache refresh failed after merge: %v", err)
		}
	}

	s.notifyUser(ctx, uuid.MustParse(copy.UserID), notify.KindWorkingCopyMerged, map[string]string{
		"document_id": doc.ID,
		"version":     doc.Version,
		"title":       doc.Title,
	})

	s.audit(ctx, audit.Entry{
		Action:       "working_copy.merge",
		ResourceType: "document",
		ResourceID:   doc.ID,
		Actor:        copy.UserID,
		Details:      "version " + doc.Version,
	})

	return nil
}

// bumpVersion parses the decimal version string and increments it by 0.1,
// formatted back to one decimal place ("1.0" -> "1.1"). A plain monotonic
// bump, not semantic versioning.
func bumpVersion(version string) (string, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(version), 64)
	if err != nil {
		return "", err
	}

	return strconv.FormatFloat(v+0.1, 'f', 1, 64), nil
}

// applyOverride copies a staged field onto the document when it differs from
// the value frozen at branch time.
func applyOverride(changes map[string]string, key, originalKey string, target *string) {
	value, ok := changes[key]
	if !ok {
		return
	}

	if value != changes[originalKey] {
		*target = value
	}
}
