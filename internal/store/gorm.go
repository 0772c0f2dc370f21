package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sopworks/sopflow/internal/model"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	return g.db.WithContext(ctx).Create(doc).Error
}

func (g *GormStore) GetDocument(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	err := g.db.WithContext(ctx).Where("id = ?", id.String()).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

func (g *GormStore) ListDocuments(ctx context.Context) ([]*model.Document, int64, error) {
	var docs []*model.Document
	res := g.db.WithContext(ctx).Order("created_at desc").Find(&docs)

	return docs, res.RowsAffected, res.Error
}

func (g *GormStore) UpdateDocument(ctx context.Context, doc *model.Document) error {
	return g.db.WithContext(ctx).Save(doc).Error
}

func (g *GormStore) CreateWorkingCopy(ctx context.Context, copy *model.WorkingCopy) error {
	err := g.db.WithContext(ctx).Create(copy).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateWorkingCopy
	}

	return err
}

func (g *GormStore) GetWorkingCopy(ctx context.Context, id uuid.UUID) (*model.WorkingCopy, error) {
	var copy model.WorkingCopy
	err := g.db.WithContext(ctx).Where("id = ?", id.String()).First(&copy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &copy, nil
}

func (g *GormStore) ListWorkingCopiesForDocument(ctx context.Context, docID uuid.UUID) ([]*model.WorkingCopy, error) {
	var copies []*model.WorkingCopy
	err := g.db.WithContext(ctx).Where("document_id = ?", docID.String()).Find(&copies).Error

	return copies, err
}

func (g *GormStore) ListWorkingCopiesForUser(ctx context.Context, userID uuid.UUID) ([]*model.WorkingCopy, error) {
	var copies []*model.WorkingCopy
	err := g.db.WithContext(ctx).Where("user_id = ?", userID.String()).Find(&copies).Error

	return copies, err
}

// UpdateWorkingCopy is a compare-and-swap on the revision column. The caller
// supplies the copy with the new revision already set.
func (g *GormStore) UpdateWorkingCopy(ctx context.Context, copy *model.WorkingCopy, expectedRevision int64) (bool, error) {
	res := g.db.WithContext(ctx).
		Model(&model.WorkingCopy{}).
		Where("id = ? AND revision = ?", copy.ID, expectedRevision).
		Updates(map[string]interface{}{
			"title":        copy.Title,
			"content":      copy.Content,
			"description":  copy.Description,
			"changes":      copy.Changes,
			"revision":     copy.Revision,
			"is_submitted": copy.IsSubmitted,
			"submitted_at": copy.SubmittedAt,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (g *GormStore) DeleteWorkingCopy(ctx context.Context, id uuid.UUID) (int64, error) {
	err := g.db.WithContext(ctx).
		Where("working_copy_id = ?", id.String()).
		Delete(&model.WorkingCopyReview{}).Error
	if err != nil {
		return 0, err
	}

	res := g.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&model.WorkingCopy{})

	return res.RowsAffected, res.Error
}

func (g *GormStore) CreateReviews(ctx context.Context, reviews []*model.WorkingCopyReview) error {
	return g.db.WithContext(ctx).Create(reviews).Error
}

func (g *GormStore) GetReview(ctx context.Context, id uuid.UUID) (*model.WorkingCopyReview, error) {
	var review model.WorkingCopyReview
	err := g.db.WithContext(ctx).Where("id = ?", id.String()).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &review, nil
}

func (g *GormStore) ListReviews(ctx context.Context, workingCopyID uuid.UUID) ([]*model.WorkingCopyReview, error) {
	var reviews []*model.WorkingCopyReview
	err := g.db.WithContext(ctx).Where("working_copy_id = ?", workingCopyID.String()).Find(&reviews).Error

	return reviews, err
}

// DecideReview is a single conditional write: the transition to the new
// status only happens while the stored status is still re-decidable, so a
// double submit from the same reviewer cannot overwrite a terminal verdict.
func (g *GormStore) DecideReview(ctx context.Context, review *model.WorkingCopyReview) (bool, error) {
	res := g.db.WithContext(ctx).
		Model(&model.WorkingCopyReview{}).
		Where("id = ? AND status IN ?", review.ID, []string{model.ReviewStatusPending, model.ReviewStatusChangesRequested}).
		Updates(map[string]interface{}{
			"status":      review.Status,
			"comments":    review.Comments,
			"reviewed_at": review.ReviewedAt,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (g *GormStore) ListStaleReviews(ctx context.Context, cutoff time.Time) ([]*model.WorkingCopyReview, error) {
	var reviews []*model.WorkingCopyReview
	err := g.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.ReviewStatusPending, cutoff).
		Find(&reviews).Error

	return reviews, err
}

func (g *GormStore) CreateVersionSnapshot(ctx context.Context, snapshot *model.VersionSnapshot) error {
	return g.db.WithContext(ctx).Create(snapshot).Error
}

func (g *GormStore) ListVersionSnapshots(ctx context.Context, docID uuid.UUID) ([]*model.VersionSnapshot, error) {
	var snapshots []*model.VersionSnapshot
	err := g.db.WithContext(ctx).
		Where("document_id = ?", docID.String()).
		Order("created_at desc").
		Find(&snapshots).Error

	return snapshots, err
}

func (g *GormStore) GetVersionSnapshot(ctx context.Context, docID uuid.UUID, version string) (*model.VersionSnapshot, error) {
	var snapshot model.VersionSnapshot
	err := g.db.WithContext(ctx).
		Where("document_id = ? AND version = ?", docID.String(), version).
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (g *GormStore) CreateAuditLog(ctx context.Context, entry *model.AuditLog) error {
	return g.db.WithContext(ctx).Create(entry).Error
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
