package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sopworks/sopflow/internal/model"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateWorkingCopy is returned when a live working copy already
	// exists for the same (document, user) pair.
	ErrDuplicateWorkingCopy = errors.New("working copy already exists for this document and user")
)

type Store interface {
	DocumentStore
	WorkingCopyStore
	ReviewStore
	SnapshotStore
	AuditStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type DocumentStore interface {
	// CreateDocument creates a new published document.
	CreateDocument(ctx context.Context, doc *model.Document) error
	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id uuid.UUID) (*model.Document, error)
	// ListDocuments retrieves all published documents.
	ListDocuments(ctx context.Context) ([]*model.Document, int64, error)
	// UpdateDocument overwrites the stored document state.
	UpdateDocument(ctx context.Context, doc *model.Document) error
}

type WorkingCopyStore interface {
	// CreateWorkingCopy inserts a working copy. The insert fails with
	// ErrDuplicateWorkingCopy if a live copy exists for the same
	// (document, user) pair; the unique index makes the check atomic.
	CreateWorkingCopy(ctx context.Context, copy *model.WorkingCopy) error
	// GetWorkingCopy retrieves a working copy by ID.
	GetWorkingCopy(ctx context.Context, id uuid.UUID) (*model.WorkingCopy, error)
	// ListWorkingCopiesForDocument retrieves the live working copies of a document.
	ListWorkingCopiesForDocument(ctx context.Context, docID uuid.UUID) ([]*model.WorkingCopy, error)
	// ListWorkingCopiesForUser retrieves the live working copies owned by a user.
	ListWorkingCopiesForUser(ctx context.Context, userID uuid.UUID) ([]*model.WorkingCopy, error)
	// UpdateWorkingCopy writes the copy conditioned on the stored revision
	// still matching expectedRevision. Returns false when another writer got
	// there first.
	UpdateWorkingCopy(ctx context.Context, copy *model.WorkingCopy, expectedRevision int64) (bool, error)
	// DeleteWorkingCopy hard deletes a working copy and its reviews, returning
	// the number of copy rows removed. Zero means another caller already
	// consumed the copy.
	DeleteWorkingCopy(ctx context.Context, id uuid.UUID) (int64, error)
}

type ReviewStore interface {
	// CreateReviews inserts the per-reviewer rows created at submission time.
	CreateReviews(ctx context.Context, reviews []*model.WorkingCopyReview) error
	// GetReview retrieves a review by ID.
	GetReview(ctx context.Context, id uuid.UUID) (*model.WorkingCopyReview, error)
	// ListReviews retrieves all reviews of a working copy.
	ListReviews(ctx context.Context, workingCopyID uuid.UUID) ([]*model.WorkingCopyReview, error)
	// DecideReview writes status, comments and reviewedAt conditioned on the
	// stored status still being re-decidable. Returns false when the review
	// was already terminal.
	DecideReview(ctx context.Context, review *model.WorkingCopyReview) (bool, error)
	// ListStaleReviews retrieves pending reviews created before the cutoff.
	ListStaleReviews(ctx context.Context, cutoff time.Time) ([]*model.WorkingCopyReview, error)
}

type SnapshotStore interface {
	// CreateVersionSnapshot appends a snapshot to a document's version trail.
	CreateVersionSnapshot(ctx context.Context, snapshot *model.VersionSnapshot) error
	// ListVersionSnapshots retrieves a document's version trail, newest first.
	ListVersionSnapshots(ctx context.Context, docID uuid.UUID) ([]*model.VersionSnapshot, error)
	// GetVersionSnapshot retrieves one archived version of a document.
	GetVersionSnapshot(ctx context.Context, docID uuid.UUID, version string) (*model.VersionSnapshot, error)
}

type AuditStore interface {
	// CreateAuditLog appends an audit record.
	CreateAuditLog(ctx context.Context, entry *model.AuditLog) error
}
