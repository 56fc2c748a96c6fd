package repository

import (
	"context"
	"time"

	"campaign-review-engine/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assignment *model.Assignment) error
	FindTupleForUpdate(ctx context.Context, tx *gorm.DB, campaignID, itemID uint, dayGroup *int, operatorID string) (*model.Assignment, error)
	FindActiveForUpdate(ctx context.Context, tx *gorm.DB, campaignID, itemID uint, dayGroup *int) (*model.Assignment, error)
	RemoveIfUnchanged(ctx context.Context, tx *gorm.DB, id uint, updatedAt time.Time) (int64, error)
	Remove(ctx context.Context, tx *gorm.DB, id uint) error
	ListByItem(ctx context.Context, itemID uint) ([]*model.Assignment, error)
}

type assignmentRepoImpl struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepoImpl{
		db: db,
	}
}

func (r *assignmentRepoImpl) Create(ctx context.Context, tx *gorm.DB, assignment *model.Assignment) error {
	return tx.WithContext(ctx).Create(assignment).Error
}

func dayGroupCond(q *gorm.DB, dayGroup *int) *gorm.DB {
	if dayGroup == nil {
		return q.Where("day_group IS NULL")
	}
	return q.Where("day_group = ?", *dayGroup)
}

func (r *assignmentRepoImpl) FindTupleForUpdate(ctx context.Context, tx *gorm.DB, campaignID, itemID uint, dayGroup *int, operatorID string) (*model.Assignment, error) {
	var assignment model.Assignment
	q := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("campaign_id = ? AND item_id = ? AND operator_id = ?", campaignID, itemID, operatorID)

	err := dayGroupCond(q, dayGroup).First(&assignment).Error
	if err != nil {
		return nil, err
	}

	return &assignment, nil
}

func (r *assignmentRepoImpl) FindActiveForUpdate(ctx context.Context, tx *gorm.DB, campaignID, itemID uint, dayGroup *int) (*model.Assignment, error) {
	var assignment model.Assignment
	q := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("campaign_id = ? AND item_id = ?", campaignID, itemID)

	err := dayGroupCond(q, dayGroup).First(&assignment).Error
	if err != nil {
		return nil, err
	}

	return &assignment, nil
}

// RemoveIfUnchanged soft-deletes the row only if nobody touched it since it
// was read; the caller turns zero affected rows into a conflict.
func (r *assignmentRepoImpl) RemoveIfUnchanged(ctx context.Context, tx *gorm.DB, id uint, updatedAt time.Time) (int64, error) {
	result := tx.WithContext(ctx).
		Where("id = ? AND updated_at = ?", id, updatedAt).
		Delete(&model.Assignment{})

	return result.RowsAffected, result.Error
}

func (r *assignmentRepoImpl) Remove(ctx context.Context, tx *gorm.DB, id uint) error {
	return tx.WithContext(ctx).Delete(&model.Assignment{}, id).Error
}

func (r *assignmentRepoImpl) ListByItem(ctx context.Context, itemID uint) ([]*model.Assignment, error) {
	var assignments []*model.Assignment
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("day_group").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}

	return assignments, nil
}
