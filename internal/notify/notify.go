// Package notify delivers user-facing notifications emitted by the review
// gate and the merge engine. Delivery is best effort: callers log failures
// and never roll back the transition that produced the event.
package notify

import (
	"context"

	"github.com/google/uuid"
)

const (
	KindReviewRequested   = "review_requested"
	KindReviewReminder    = "review_reminder"
	KindWorkingCopyMerged = "working_copy_merged"
)

type Sink interface {
	Notify(ctx context.Context, userID uuid.UUID, kind string, payload map[string]string) error
}
