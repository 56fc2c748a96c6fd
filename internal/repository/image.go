package repository

import (
	"context"

	"campaign-review-engine/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ImageRepository interface {
	Create(ctx context.Context, tx *gorm.DB, image *model.Image) error
	FindByID(ctx context.Context, id uint) (*model.Image, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*model.Image, error)
	FindByBuyerAndStatus(ctx context.Context, tx *gorm.DB, buyerID uint, status string) (*model.Image, error)
	ListByStatus(ctx context.Context, status string) ([]*model.Image, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, imageID uint, status string) error
	HardDelete(ctx context.Context, tx *gorm.DB, imageID uint) error
}

type imageRepoImpl struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepoImpl{
		db: db,
	}
}

func (r *imageRepoImpl) Create(ctx context.Context, tx *gorm.DB, image *model.Image) error {
	return tx.WithContext(ctx).Create(image).Error
}

func (r *imageRepoImpl) FindByID(ctx context.Context, id uint) (*model.Image, error) {
	var image model.Image
	err := r.db.WithContext(ctx).First(&image, id).Error
	if err != nil {
		return nil, err
	}

	return &image, nil
}

func (r *imageRepoImpl) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*model.Image, error) {
	var image model.Image
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&image, id).Error
	if err != nil {
		return nil, err
	}

	return &image, nil
}

func (r *imageRepoImpl) FindByBuyerAndStatus(ctx context.Context, tx *gorm.DB, buyerID uint, status string) (*model.Image, error) {
	var image model.Image
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("buyer_id = ? AND status = ?", buyerID, status).
		First(&image).Error
	if err != nil {
		return nil, err
	}

	return &image, nil
}

func (r *imageRepoImpl) ListByStatus(ctx context.Context, status string) ([]*model.Image, error) {
	var images []*model.Image
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("resubmitted_at").
		Find(&images).Error
	if err != nil {
		return nil, err
	}

	return images, nil
}

func (r *imageRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, imageID uint, status string) error {
	return tx.WithContext(ctx).
		Model(&model.Image{}).
		Where("id = ?", imageID).
		Update("status", status).Error
}

func (r *imageRepoImpl) HardDelete(ctx context.Context, tx *gorm.DB, imageID uint) error {
	return tx.WithContext(ctx).
		Unscoped().
		Delete(&model.Image{}, imageID).Error
}
