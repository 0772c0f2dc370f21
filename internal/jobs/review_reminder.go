package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sopworks/sopflow/internal/notify"
	"github.com/sopworks/sopflow/internal/store"
)

// ReviewReminder re-notifies reviewers whose verdict has been pending longer
// than maxAge. A submitted working copy cannot move until every reviewer
// decides, so stale reviews block their author indefinitely.
type ReviewReminder struct {
	store    store.Store
	notifier notify.Sink
	maxAge   time.Duration
	cron     string
}

func NewReviewReminder(cron string, maxAge time.Duration, store store.Store, notifier notify.Sink) *ReviewReminder {
	return &ReviewReminder{
		store:    store,
		notifier: notifier,
		maxAge:   maxAge,
		cron:     cron,
	}
}

func (r *ReviewReminder) Schedule() string {
	return r.cron
}

func (r *ReviewReminder) Run() {
	ctx := context.Background()

	reviews, err := r.store.ListStaleReviews(ctx, time.Now().Add(-r.maxAge))
	if err != nil {
		logrus.Errorf("failed to list stale reviews: %v", err)
		return
	}

	for _, review := range reviews {
		reviewerID, err := uuid.Parse(review.ReviewerID)
		if err != nil {
			logrus.Errorf("review %s has a malformed reviewer id: %v", review.ID, err)
			continue
		}

		err = r.notifier.Notify(ctx, reviewerID, notify.KindReviewReminder, map[string]string{
			"review_id":       review.ID,
			"working_copy_id": review.WorkingCopyID,
			"pending_since":   review.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			logrus.Warnf("reminder to reviewer %s failed: %v", review.ReviewerID, err)
		}
	}

	if len(reviews) > 0 {
		logrus.Infof("sent %d review reminders", len(reviews))
	}
}
