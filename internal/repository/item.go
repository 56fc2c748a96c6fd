package repository

import (
	"context"

	"campaign-review-engine/internal/model"

	"gorm.io/gorm"
)

type CampaignRepository interface {
	Create(ctx context.Context, tx *gorm.DB, campaign *model.Campaign) error
	FindByID(ctx context.Context, id uint) (*model.Campaign, error)
}

type campaignRepoImpl struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepoImpl{
		db: db,
	}
}

func (r *campaignRepoImpl) Create(ctx context.Context, tx *gorm.DB, campaign *model.Campaign) error {
	return tx.WithContext(ctx).Create(campaign).Error
}

func (r *campaignRepoImpl) FindByID(ctx context.Context, id uint) (*model.Campaign, error) {
	var campaign model.Campaign
	err := r.db.WithContext(ctx).First(&campaign, id).Error
	if err != nil {
		return nil, err
	}

	return &campaign, nil
}

type ItemRepository interface {
	Create(ctx context.Context, tx *gorm.DB, item *model.Item) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Item, error)
	FindByToken(ctx context.Context, tx *gorm.DB, token string) (*model.Item, error)
}

type itemRepoImpl struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepoImpl{
		db: db,
	}
}

func (r *itemRepoImpl) Create(ctx context.Context, tx *gorm.DB, item *model.Item) error {
	return tx.WithContext(ctx).Create(item).Error
}

func (r *itemRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Item, error) {
	var item model.Item
	err := tx.WithContext(ctx).First(&item, id).Error
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *itemRepoImpl) FindByToken(ctx context.Context, tx *gorm.DB, token string) (*model.Item, error) {
	var item model.Item
	err := tx.WithContext(ctx).
		Where("upload_link_token = ?", token).
		First(&item).Error
	if err != nil {
		return nil, err
	}

	return &item, nil
}
