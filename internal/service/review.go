package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sopworks/sopflow/internal/audit"
	"github.com/sopworks/sopflow/internal/model"
	"github.com/sopworks/sopflow/internal/notify"
	"github.com/sopworks/sopflow/internal/store"
)

// SubmitForReview freezes a draft and fans it out to the chosen reviewers.
// The reviewer set is fixed at submission time; adding reviewers later means
// discard and resubmit. The flag flip and the pending review rows are
// written in one transaction, then each reviewer is notified best effort.
func (s *WorkingCopyService) SubmitForReview(ctx context.Context, id, userID uuid.UUID, reviewerIDs []uuid.UUID, summary string) (*model.WorkingCopy, error) {
	if len(reviewerIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one reviewer is required", ErrInvalid)
	}

	// distinct reviewer ids, submission order preserved
	seen := make(map[uuid.UUID]struct{}, len(reviewerIDs))
	reviewers := make([]uuid.UUID, 0, len(reviewerIDs))
	for _, reviewerID := range reviewerIDs {
		if _, ok := seen[reviewerID]; ok {
			continue
		}
		seen[reviewerID] = struct{}{}
		reviewers = append(reviewers, reviewerID)
	}

	var copy *model.WorkingCopy
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		copy, err = tx.GetWorkingCopy(ctx, id)
		if err != nil {
			return mapStoreError(err)
		}

		if copy.UserID != userID.String() {
			return fmt.Errorf("%w: working copy belongs to another user", ErrForbidden)
		}

		if copy.IsSubmitted {
			return fmt.Errorf("%w: working copy is already submitted", ErrInvalid)
		}

		changes, err := copy.ChangesMap()
		if err != nil {
			return err
		}
		changes[changeSubmissionSummary] = summary
		if err := copy.SetChangesMap(changes); err != nil {
			return err
		}

		now := time.Now()
		revision := copy.Revision
		copy.IsSubmitted = true
		copy.SubmittedAt = &now
		copy.Revision = revision + 1

		ok, err := tx.UpdateWorkingCopy(ctx, copy, revision)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: working copy was modified concurrently", ErrConflict)
		}

		reviews := make([]*model.WorkingCopyReview, 0, len(reviewers))
		for _, reviewerID := range reviewers {
			reviews = append(reviews, &model.WorkingCopyReview{
				ID:            uuid.New().String(),
				WorkingCopyID: copy.ID,
				ReviewerID:    reviewerID.String(),
				Status:        model.ReviewStatusPending,
			})
		}

		return tx.CreateReviews(ctx, reviews)
	})
	if err != nil {
		return nil, err
	}

	for _, reviewerID := range reviewers {
		s.notifyUser(ctx, reviewerID, notify.KindReviewRequested, map[string]string{
			"working_copy_id": copy.ID,
			"document_id":     copy.DocumentID,
			"submitted_by":    copy.UserID,
			"summary":         summary,
		})
	}

	s.audit(ctx, audit.Entry{
		Action:       "working_copy.submit",
		ResourceType: "working_copy",
		ResourceID:   copy.ID,
		Actor:        userID.String(),
		Details:      fmt.Sprintf("%d reviewers", len(reviewers)),
	})

	return copy, nil
}

// RecordReviewDecision stores one reviewer's verdict. Approved and rejected
// are terminal per reviewer; changes_requested may be revised later. The
// decision that completes unanimous approval triggers the merge.
func (s *WorkingCopyService) RecordReviewDecision(ctx context.Context, workingCopyID, reviewID, reviewerID uuid.UUID, status, comments string) (*model.WorkingCopyReview, error) {
	switch status {
	case model.ReviewStatusApproved, model.ReviewStatusRejected, model.ReviewStatusChangesRequested:
	default:
		return nil, fmt.Errorf("%w: unknown review status %q", ErrInvalid, status)
	}

	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	if review.WorkingCopyID != workingCopyID.String() {
		return nil, fmt.Errorf("%w: review does not belong to working copy %s", ErrNotFound, workingCopyID)
	}

	if review.ReviewerID != reviewerID.String() {
		return nil, fmt.Errorf("%w: review is assigned to another reviewer", ErrForbidden)
	}

	if review.Terminal() {
		return nil, fmt.Errorf("%w: review is already %s", ErrInvalid, review.Status)
	}

	now := time.Now()
	review.Status = status
	review.Comments = comments
	review.ReviewedAt = &now

	// single conditional write, so a racing double submit cannot decide twice
	ok, err := s.store.DecideReview(ctx, review)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: review was already decided", ErrInvalid)
	}

	s.audit(ctx, audit.Entry{
		Action:       "review.decide",
		ResourceType: "working_copy_review",
		ResourceID:   review.ID,
		Actor:        reviewerID.String(),
		Details:      status,
	})

	if status == model.ReviewStatusApproved {
		if err := s.mergeIfApproved(ctx, workingCopyID); err != nil {
			return nil, err
		}
	}

	if status == model.ReviewStatusRejected {
		logrus.Infof("working copy %s rejected by %s, awaiting explicit discard", workingCopyID, reviewerID)
	}

	return review, nil
}
