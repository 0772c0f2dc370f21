package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sopworks/sopflow/internal/model"
)

// submitCopy branches a copy, applies an edit and submits it to the given
// reviewers, returning the copy and its pending reviews keyed by reviewer.
func submitCopy(t *testing.T, svc *WorkingCopyService, doc *model.Document, userID uuid.UUID, content string, reviewers ...uuid.UUID) (*model.WorkingCopy, map[uuid.UUID]*model.WorkingCopyReview) {
	t.Helper()

	copy, err := svc.CreateWorkingCopy(context.TODO(), uuid.MustParse(doc.ID), userID, WorkingCopyFields{})
	require.NoError(t, err)
	copyID := uuid.MustParse(copy.ID)

	if content != "" {
		_, err = svc.UpdateWorkingCopy(context.TODO(), copyID, userID, 0, WorkingCopyFields{Content: &content})
		require.NoError(t, err)
	}

	copy, err = svc.SubmitForReview(context.TODO(), copyID, userID, reviewers, "fix")
	require.NoError(t, err)

	reviews, err := svc.ListReviews(context.TODO(), copyID)
	require.NoError(t, err)
	require.Len(t, reviews, len(reviewers))

	byReviewer := make(map[uuid.UUID]*model.WorkingCopyReview, len(reviews))
	for _, review := range reviews {
		byReviewer[uuid.MustParse(review.ReviewerID)] = review
	}

	return copy, byReviewer
}

func TestWorkingCopyService_SubmitForReview(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()
	reviewerA := uuid.New()
	reviewerB := uuid.New()

	doc := publishDocument(t, svc, userID, "Patching", "content", "")
	copy, reviews := submitCopy(t, svc, doc, userID, "content v2", reviewerA, reviewerB)

	assert.True(t, copy.IsSubmitted)
	assert.NotNil(t, copy.SubmittedAt)

	changes, err := copy.ChangesMap()
	require.NoError(t, err)
	assert.Equal(t, "fix", changes["submission_summary"])

	for _, review := range reviews {
		assert.Equal(t, model.ReviewStatusPending, review.Status)
	}
}

func TestWorkingCopyService_SubmitForReview_NoReviewers(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	doc := publishDocument(t, svc, userID, "Releases", "content", "")
	copy, err := svc.CreateWorkingCopy(context.TODO(), uuid.MustParse(doc.ID), userID, WorkingCopyFields{})
	require.NoError(t, err)

	_, err = svc.SubmitForReview(context.TODO(), uuid.MustParse(copy.ID), userID, nil, "fix")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestWorkingCopyService_SubmitForReview_Twice(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()
	reviewer := uuid.New()

	doc := publishDocument(t, svc, userID, "Monitoring", "content", "")
	copy, _ := submitCopy(t, svc, doc, userID, "", reviewer)

	_, err := svc.SubmitForReview(context.TODO(), uuid.MustParse(copy.ID), userID, []uuid.UUID{reviewer}, "again")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestWorkingCopyService_SubmitForReview_NotOwner(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	doc := publishDocument(t, svc, userID, "Audits", "content", "")
	copy, err := svc.CreateWorkingCopy(context.TODO(), uuid.MustParse(doc.ID), userID, WorkingCopyFields{})
	require.NoError(t, err)

	_, err = svc.SubmitForReview(context.TODO(), uuid.MustParse(copy.ID), uuid.New(), []uuid.UUID{uuid.New()}, "fix")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestWorkingCopyService_SubmitForReview_DuplicateReviewers(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()
	reviewer := uuid.New()

	doc := publishDocument(t, svc, userID, "Handover", "content", "")
	_, reviews := submitCopy(t, svc, doc, userID, "", reviewer, reviewer, reviewer)

	assert.Len(t, reviews, 1)
}

func TestWorkingCopyService_RecordReviewDecision_WrongReviewer(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()
	reviewer := uuid.New()

	doc := publishDocument(t, svc, userID, "DR Plan", "content", "")
	copy, reviews := submitCopy(t, svc, doc, userID, "", reviewer)

	_, err := svc.RecordReviewDecision(context.TODO(),
		uuid.MustParse(copy.ID), uuid.MustParse(reviews[reviewer].ID), uuid.New(),
		model.ReviewStatusApproved, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestWorkingCopyService_RecordReviewDecision_TerminalTwice(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()
	reviewerA := uuid.New()
	reviewerB := uuid.New()

	doc := publishDocument(t, svc, userID, "Retention", "content", "")
	copy, reviews := submitCopy(t, svc, doc, userID, "", reviewerA, reviewerB)
	copyID := uuid.MustParse(copy.ID)

	_, err := svc.RecordReviewDecision(context.TODO(), copyID, uuid.MustParse(reviews[reviewerA].ID), reviewerA,
		model.ReviewStatusRejected, "needs work")
	require.NoError(t, err)

	// a rejected verdict is final for that reviewer
	_, err = svc.RecordReviewDecision(context.TODO(), copyID, uuid.MustParse(reviews[reviewerA].ID), reviewerA,
		model.ReviewStatusApproved, "changed my mind")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestWorkingCopyService_RecordReviewDecision_ChangesRequestedRevisable(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()
	reviewerA := uuid.New()
	reviewerB := uuid.New()

	doc := publishDocument(t, svc, userID, "Vendor Access", "content", "")
	copy, reviews := submitCopy(t, svc, doc, userID, "", reviewerA, reviewerB)
	copyID := uuid.MustParse(copy.ID)
	reviewID := uuid.MustParse(reviews[reviewerA].ID)

	_, err := svc.RecordReviewDecision(context.TODO(), copyID, reviewID, reviewerA,
		model.ReviewStatusChangesRequested, "tighten step 3")
	require.NoError(t, err)

	// changes_requested is not terminal, the reviewer may revise the verdict
	review, err := svc.RecordReviewDecision(context.TODO(), copyID, reviewID, reviewerA,
		model.ReviewStatusApproved, "looks good now")
	require.NoError(t, err)
	assert.Equal(t, model.ReviewStatusApproved, review.Status)
}

func TestWorkingCopyService_RecordReviewDecision_UnknownStatus(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()
	reviewer := uuid.New()

	doc := publishDocument(t, svc, userID, "Legal Hold", "content", "")
	copy, reviews := submitCopy(t, svc, doc, userID, "", reviewer)

	_, err := svc.RecordReviewDecision(context.TODO(),
		uuid.MustParse(copy.ID), uuid.MustParse(reviews[reviewer].ID), reviewer, "maybe", "")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestWorkingCopyService_RejectionBlocksMergeAndAllowsDiscard(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()
	reviewerA := uuid.New()
	reviewerB := uuid.New()

	doc := publishDocument(t, svc, userID, "Intake", "original", "")
	copy, reviews := submitCopy(t, svc, doc, userID, "drafted", reviewerA, reviewerB)
	copyID := uuid.MustParse(copy.ID)

	_, err := svc.RecordReviewDecision(context.TODO(), copyID, uuid.MustParse(reviews[reviewerA].ID), reviewerA,
		model.ReviewStatusApproved, "")
	require.NoError(t, err)

	_, err = svc.RecordReviewDecision(context.TODO(), copyID, uuid.MustParse(reviews[reviewerB].ID), reviewerB,
		model.ReviewStatusRejected, "not like this")
	require.NoError(t, err)

	// the published document is untouched and the copy survives
	got, err := svc.GetDocument(context.TODO(), uuid.MustParse(doc.ID))
	require.NoError(t, err)
	assert.Equal(t, "original", got.Content)
	assert.Equal(t, "1.0", got.Version)

	_, err = svc.GetWorkingCopy(context.TODO(), copyID)
	require.NoError(t, err)

	// after the rejection the owner may discard the submitted copy
	require.NoError(t, svc.DiscardWorkingCopy(context.TODO(), copyID, userID))

	reviews2, err := svc.ListReviews(context.TODO(), copyID)
	require.NoError(t, err)
	assert.Empty(t, reviews2)
}
