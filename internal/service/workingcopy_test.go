package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string {
	return &s
}

func TestWorkingCopyService_CreateWorkingCopy(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	doc := publishDocument(t, svc, userID, "Incident Response", "step 1\nstep 2", "")

	copy, err := svc.CreateWorkingCopy(context.TODO(), uuid.MustParse(doc.ID), userID, WorkingCopyFields{})
	require.NoError(t, err)

	assert.Equal(t, doc.ID, copy.DocumentID)
	assert.Equal(t, userID.String(), copy.UserID)
	assert.Equal(t, doc.Title, copy.Title)
	assert.Equal(t, doc.Content, copy.Content)
	assert.False(t, copy.IsSubmitted)
	assert.Nil(t, copy.SubmittedAt)

	changes, err := copy.ChangesMap()
	require.NoError(t, err)
	assert.Equal(t, "1.0", changes["original_version"])
}

func TestWorkingCopyService_CreateWorkingCopy_MissingDocument(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateWorkingCopy(context.TODO(), uuid.New(), uuid.New(), WorkingCopyFields{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkingCopyService_CreateWorkingCopy_Duplicate(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	doc := publishDocument(t, svc, userID, "Backups", "content", "")
	docID := uuid.MustParse(doc.ID)

	_, err := svc.CreateWorkingCopy(context.TODO(), docID, userID, WorkingCopyFields{})
	require.NoError(t, err)

	_, err = svc.CreateWorkingCopy(context.TODO(), docID, userID, WorkingCopyFields{})
	assert.ErrorIs(t, err, ErrConflict)

	// another user may still branch off the same document
	_, err = svc.CreateWorkingCopy(context.TODO(), docID, uuid.New(), WorkingCopyFields{})
	assert.NoError(t, err)
}

func TestWorkingCopyService_CreateWorkingCopy_ConcurrentDuplicates(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	doc := publishDocument(t, svc, userID, "Runbook", "content", "")
	docID := uuid.MustParse(doc.ID)

	const attempts = 50

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = svc.CreateWorkingCopy(context.TODO(), docID, userID, WorkingCopyFields{})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrConflict)
		}
	}
	assert.Equal(t, 1, succeeded)

	copies, err := svc.ListWorkingCopiesForUser(context.TODO(), userID)
	require.NoError(t, err)
	assert.Len(t, copies, 1)
}

func TestWorkingCopyService_UpdateWorkingCopy(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	doc := publishDocument(t, svc, userID, "Escalation", "line1\nline2", "")
	copy, err := svc.CreateWorkingCopy(context.TODO(), uuid.MustParse(doc.ID), userID, WorkingCopyFields{})
	require.NoError(t, err)

	updated, err := svc.UpdateWorkingCopy(context.TODO(), uuid.MustParse(copy.ID), userID, 0, WorkingCopyFields{
		Content: strptr("line1\nline2-changed"),
		Changes: map[string]string{"department": "ops"},
	})
	require.NoError(t, err)

	assert.Equal(t, "line1\nline2-changed", updated.Content)
	assert.Equal(t, doc.Title, updated.Title) // partial update leaves other fields alone
	assert.Equal(t, int64(1), updated.Revision)

	changes, err := updated.ChangesMap()
	require.NoError(t, err)
	assert.Equal(t, "ops", changes["department"])
	assert.Equal(t, "1.0", changes["original_version"])

	// the published document is untouched by draft edits
	got, err := svc.GetDocument(context.TODO(), uuid.MustParse(doc.ID))
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2", got.Content)
}

func TestWorkingCopyService_UpdateWorkingCopy_StaleRevision(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	doc := publishDocument(t, svc, userID, "Change Control", "content", "")
	copy, err := svc.CreateWorkingCopy(context.TODO(), uuid.MustParse(doc.ID), userID, WorkingCopyFields{})
	require.NoError(t, err)
	copyID := uuid.MustParse(copy.ID)

	_, err = svc.UpdateWorkingCopy(context.TODO(), copyID, userID, 0, WorkingCopyFields{Content: strptr("first")})
	require.NoError(t, err)

	// writing against the old revision loses to the first writer
	_, err = svc.UpdateWorkingCopy(context.TODO(), copyID, userID, 0, WorkingCopyFields{Content: strptr("second")})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := svc.GetWorkingCopy(context.TODO(), copyID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Content)
}

func TestWorkingCopyService_UpdateWorkingCopy_NotOwner(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	doc := publishDocument(t, svc, userID, "Access Policy", "content", "")
	copy, err := svc.CreateWorkingCopy(context.TODO(), uuid.MustParse(doc.ID), userID, WorkingCopyFields{})
	require.NoError(t, err)

	_, err = svc.UpdateWorkingCopy(context.TODO(), uuid.MustParse(copy.ID), uuid.New(), 0, WorkingCopyFields{
		Content: strptr("hijacked"),
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestWorkingCopyService_UpdateWorkingCopy_AfterSubmit(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	doc := publishDocument(t, svc, userID, "Deploy Guide", "content", "")
	copy, err := svc.CreateWorkingCopy(context.TODO(), uuid.MustParse(doc.ID), userID, WorkingCopyFields{})
	require.NoError(t, err)
	copyID := uuid.MustParse(copy.ID)

	_, err = svc.SubmitForReview(context.TODO(), copyID, userID, []uuid.UUID{uuid.New()}, "please review")
	require.NoError(t, err)

	_, err = svc.UpdateWorkingCopy(context.TODO(), copyID, userID, 1, WorkingCopyFields{Content: strptr("late edit")})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestWorkingCopyService_DiscardWorkingCopy(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	doc := publishDocument(t, svc, userID, "Onboarding", "content", "")
	copy, err := svc.CreateWorkingCopy(context.TODO(), uuid.MustParse(doc.ID), userID, WorkingCopyFields{})
	require.NoError(t, err)
	copyID := uuid.MustParse(copy.ID)

	require.NoError(t, svc.DiscardWorkingCopy(context.TODO(), copyID, userID))

	_, err = svc.GetWorkingCopy(context.TODO(), copyID)
	assert.ErrorIs(t, err, ErrNotFound)

	// discarding frees the (document, user) slot
	_, err = svc.CreateWorkingCopy(context.TODO(), uuid.MustParse(doc.ID), userID, WorkingCopyFields{})
	assert.NoError(t, err)
}

func TestWorkingCopyService_DiscardWorkingCopy_SubmittedWithoutRejection(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	doc := publishDocument(t, svc, userID, "Security Review", "content", "")
	copy, err := svc.CreateWorkingCopy(context.TODO(), uuid.MustParse(doc.ID), userID, WorkingCopyFields{})
	require.NoError(t, err)
	copyID := uuid.MustParse(copy.ID)

	_, err = svc.SubmitForReview(context.TODO(), copyID, userID, []uuid.UUID{uuid.New()}, "review")
	require.NoError(t, err)

	err = svc.DiscardWorkingCopy(context.TODO(), copyID, userID)
	assert.ErrorIs(t, err, ErrInvalid)
}
