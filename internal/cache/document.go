package cache

import (
	"context"

	"github.com/google/uuid"

	"github.com/sopworks/sopflow/internal/model"
)

// DocumentCache is a read-through cache for published documents. Only the
// merge engine invalidates entries; working copies are never cached.
type DocumentCache interface {
	// GetDocument gets a document from the cache. A miss returns (nil, nil).
	GetDocument(ctx context.Context, id uuid.UUID) (*model.Document, error)
	// SetDocument sets a document in the cache.
	SetDocument(ctx context.Context, id uuid.UUID, doc *model.Document) error
	// DeleteDocument deletes a document from the cache.
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}
