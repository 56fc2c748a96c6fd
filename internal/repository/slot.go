package repository

import (
	"context"

	"campaign-review-engine/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SlotRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, slots []*model.Slot) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Slot, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*model.Slot, error)
	FindGroupByToken(ctx context.Context, tx *gorm.DB, token string) (*model.Slot, error)
	ListGroupTail(ctx context.Context, tx *gorm.DB, itemID uint, dayGroup, afterSlotNumber int) ([]*model.Slot, error)
	MaxDayGroup(ctx context.Context, tx *gorm.DB, itemID uint) (int, error)
	MoveToGroup(ctx context.Context, tx *gorm.DB, slotID uint, dayGroup, slotNumber int, token string) error
	LinkBuyer(ctx context.Context, tx *gorm.DB, slotID, buyerID uint) error
	UpdateOverrides(ctx context.Context, tx *gorm.DB, slot *model.Slot) error
	ListByItem(ctx context.Context, itemID uint) ([]*model.Slot, error)
}

type slotRepoImpl struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) SlotRepository {
	return &slotRepoImpl{
		db: db,
	}
}

func (r *slotRepoImpl) CreateBatch(ctx context.Context, tx *gorm.DB, slots []*model.Slot) error {
	return tx.WithContext(ctx).Create(&slots).Error
}

func (r *slotRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Slot, error) {
	var slot model.Slot
	err := tx.WithContext(ctx).First(&slot, id).Error
	if err != nil {
		return nil, err
	}

	return &slot, nil
}

func (r *slotRepoImpl) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*model.Slot, error) {
	var slot model.Slot
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&slot, id).Error
	if err != nil {
		return nil, err
	}

	return &slot, nil
}

// FindGroupByToken resolves a day-group upload token to any slot of the
// group; item id and day group on the returned slot identify the scope.
func (r *slotRepoImpl) FindGroupByToken(ctx context.Context, tx *gorm.DB, token string) (*model.Slot, error) {
	var slot model.Slot
	err := tx.WithContext(ctx).
		Where("upload_link_token = ?", token).
		Order("slot_number").
		First(&slot).Error
	if err != nil {
		return nil, err
	}

	return &slot, nil
}

func (r *slotRepoImpl) ListGroupTail(ctx context.Context, tx *gorm.DB, itemID uint, dayGroup, afterSlotNumber int) ([]*model.Slot, error) {
	var slots []*model.Slot
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ? AND day_group = ? AND slot_number > ?", itemID, dayGroup, afterSlotNumber).
		Order("slot_number").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *slotRepoImpl) MaxDayGroup(ctx context.Context, tx *gorm.DB, itemID uint) (int, error) {
	var max int
	err := tx.WithContext(ctx).
		Model(&model.Slot{}).
		Where("item_id = ?", itemID).
		Select("COALESCE(MAX(day_group), 0)").
		Scan(&max).Error

	return max, err
}

func (r *slotRepoImpl) MoveToGroup(ctx context.Context, tx *gorm.DB, slotID uint, dayGroup, slotNumber int, token string) error {
	return tx.WithContext(ctx).
		Model(&model.Slot{}).
		Where("id = ?", slotID).
		Updates(map[string]interface{}{
			"day_group":         dayGroup,
			"slot_number":       slotNumber,
			"upload_link_token": token,
		}).Error
}

func (r *slotRepoImpl) LinkBuyer(ctx context.Context, tx *gorm.DB, slotID, buyerID uint) error {
	return tx.WithContext(ctx).
		Model(&model.Slot{}).
		Where("id = ?", slotID).
		Update("buyer_id", buyerID).Error
}

func (r *slotRepoImpl) UpdateOverrides(ctx context.Context, tx *gorm.DB, slot *model.Slot) error {
	return tx.WithContext(ctx).
		Model(&model.Slot{}).
		Where("id = ?", slot.ID).
		Updates(map[string]interface{}{
			"product_name_override":    slot.ProductNameOverride,
			"price_override":           slot.PriceOverride,
			"purchase_option_override": slot.PurchaseOptionOverride,
		}).Error
}

func (r *slotRepoImpl) ListByItem(ctx context.Context, itemID uint) ([]*model.Slot, error) {
	var slots []*model.Slot
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Buyer.Images", "status = ?", model.ImageStatusApproved).
		Where("item_id = ?", itemID).
		Order("day_group, slot_number").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}

	return slots, nil
}
