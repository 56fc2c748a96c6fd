package repository

import (
	"context"

	"campaign-review-engine/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BuyerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, buyer *model.Buyer) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Buyer, error)
	ListScopeForUpdate(ctx context.Context, tx *gorm.DB, itemID uint, dayGroup *int) ([]*model.Buyer, error)
	FindProvisionalByOrderNumber(ctx context.Context, tx *gorm.DB, itemID uint, orderNumber string) (*model.Buyer, error)
	ListProvisionalForUpdate(ctx context.Context, tx *gorm.DB, itemID uint) ([]*model.Buyer, error)
	Promote(ctx context.Context, tx *gorm.DB, buyer *model.Buyer) error
	UpdateDetails(ctx context.Context, tx *gorm.DB, buyer *model.Buyer) error
}

type buyerRepoImpl struct {
	db *gorm.DB
}

func NewBuyerRepository(db *gorm.DB) BuyerRepository {
	return &buyerRepoImpl{
		db: db,
	}
}

func (r *buyerRepoImpl) Create(ctx context.Context, tx *gorm.DB, buyer *model.Buyer) error {
	return tx.WithContext(ctx).Create(buyer).Error
}

func (r *buyerRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Buyer, error) {
	var buyer model.Buyer
	err := tx.WithContext(ctx).First(&buyer, id).Error
	if err != nil {
		return nil, err
	}

	return &buyer, nil
}

// ListScopeForUpdate returns the match candidates for an upload: buyers
// linked to a slot of the addressed scope, plus every provisional buyer of
// the item. Rows are locked so a concurrent upload serializes behind us.
func (r *buyerRepoImpl) ListScopeForUpdate(ctx context.Context, tx *gorm.DB, itemID uint, dayGroup *int) ([]*model.Buyer, error) {
	q := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Distinct("buyers.*").
		Joins("LEFT JOIN slots ON slots.id = buyers.slot_id AND slots.deleted_at IS NULL")

	if dayGroup != nil {
		q = q.Where(
			"(slots.item_id = ? AND slots.day_group = ?) OR (buyers.is_temporary AND buyers.item_id = ?)",
			itemID, *dayGroup, itemID,
		)
	} else {
		q = q.Where(
			"slots.item_id = ? OR (buyers.is_temporary AND buyers.item_id = ?)",
			itemID, itemID,
		)
	}

	var buyers []*model.Buyer
	if err := q.Find(&buyers).Error; err != nil {
		return nil, err
	}

	return buyers, nil
}

func (r *buyerRepoImpl) FindProvisionalByOrderNumber(ctx context.Context, tx *gorm.DB, itemID uint, orderNumber string) (*model.Buyer, error) {
	var buyer model.Buyer
	err := tx.WithContext(ctx).
		Where("item_id = ? AND order_number = ? AND is_temporary", itemID, orderNumber).
		First(&buyer).Error
	if err != nil {
		return nil, err
	}

	return &buyer, nil
}

func (r *buyerRepoImpl) ListProvisionalForUpdate(ctx context.Context, tx *gorm.DB, itemID uint) ([]*model.Buyer, error) {
	var buyers []*model.Buyer
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ? AND is_temporary", itemID).
		Find(&buyers).Error
	if err != nil {
		return nil, err
	}

	return buyers, nil
}

// Promote re-points a provisional buyer at a slot in place. The row keeps its
// id, so attached images survive.
func (r *buyerRepoImpl) Promote(ctx context.Context, tx *gorm.DB, buyer *model.Buyer) error {
	return tx.WithContext(ctx).
		Model(&model.Buyer{}).
		Where("id = ? AND is_temporary", buyer.ID).
		Updates(map[string]interface{}{
			"slot_id":            buyer.SlotID,
			"is_temporary":       false,
			"order_number":       buyer.OrderNumber,
			"account_descriptor": buyer.AccountDescriptor,
			"name":               buyer.Name,
			"phone":              buyer.Phone,
			"address":            buyer.Address,
			"tracking_number":    buyer.TrackingNumber,
		}).Error
}

func (r *buyerRepoImpl) UpdateDetails(ctx context.Context, tx *gorm.DB, buyer *model.Buyer) error {
	return tx.WithContext(ctx).
		Model(&model.Buyer{}).
		Where("id = ?", buyer.ID).
		Updates(map[string]interface{}{
			"order_number":       buyer.OrderNumber,
			"account_descriptor": buyer.AccountDescriptor,
			"name":               buyer.Name,
			"phone":              buyer.Phone,
			"address":            buyer.Address,
			"tracking_number":    buyer.TrackingNumber,
		}).Error
}
