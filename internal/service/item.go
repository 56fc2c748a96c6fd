package service

import (
	"context"
	"errors"
	"fmt"

	"campaign-review-engine/internal/model"
	"campaign-review-engine/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateItemInput struct {
	CampaignID      uint
	ProductName     string
	Price           int64
	PurchaseOption  string
	ReviewKeyword   string
	TargetSlotCount int
	CreatedBy       string
}

type SlotOverrides struct {
	ProductName    *string
	Price          *int64
	PurchaseOption *string
}

type ItemService interface {
	CreateCampaign(ctx context.Context, name, brandName string) (*model.Campaign, error)
	CreateItem(ctx context.Context, in CreateItemInput) (*model.Item, error)
	ListSlots(ctx context.Context, itemID uint) ([]*model.Slot, error)
	UpdateSlotOverrides(ctx context.Context, slotID uint, overrides SlotOverrides) (*model.Slot, error)
}

type itemServiceImpl struct {
	db           *gorm.DB
	campaignRepo repository.CampaignRepository
	itemRepo     repository.ItemRepository
	slotRepo     repository.SlotRepository
}

func NewItemService(
	db *gorm.DB,
	campaignRepo repository.CampaignRepository,
	itemRepo repository.ItemRepository,
	slotRepo repository.SlotRepository,
) ItemService {
	return &itemServiceImpl{
		db:           db,
		campaignRepo: campaignRepo,
		itemRepo:     itemRepo,
		slotRepo:     slotRepo,
	}
}

func (s *itemServiceImpl) CreateCampaign(ctx context.Context, name, brandName string) (*model.Campaign, error) {
	campaign := &model.Campaign{
		Name:      name,
		BrandName: brandName,
	}
	if err := s.campaignRepo.Create(ctx, s.db, campaign); err != nil {
		return nil, fmt.Errorf("store campaign: %w", err)
	}

	return campaign, nil
}

// CreateItem registers an item and generates its target slot count in day
// group 1, all sharing one upload token.
func (s *itemServiceImpl) CreateItem(ctx context.Context, in CreateItemInput) (*model.Item, error) {
	if in.TargetSlotCount < 1 {
		return nil, &Error{KindValidation, "target slot count must be positive"}
	}

	if _, err := s.campaignRepo.FindByID(ctx, in.CampaignID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load campaign: %w", err)
	}

	item := &model.Item{
		CampaignID:      in.CampaignID,
		ProductName:     in.ProductName,
		Price:           in.Price,
		PurchaseOption:  in.PurchaseOption,
		ReviewKeyword:   in.ReviewKeyword,
		TargetSlotCount: in.TargetSlotCount,
		UploadLinkToken: uuid.NewString(),
		CreatedBy:       in.CreatedBy,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.itemRepo.Create(ctx, tx, item); err != nil {
			return fmt.Errorf("store item: %w", err)
		}

		groupToken := uuid.NewString()
		slots := make([]*model.Slot, in.TargetSlotCount)
		for i := range slots {
			slots[i] = &model.Slot{
				ItemID:          item.ID,
				DayGroup:        1,
				SlotNumber:      i + 1,
				UploadLinkToken: groupToken,
			}
		}
		if err := s.slotRepo.CreateBatch(ctx, tx, slots); err != nil {
			return fmt.Errorf("store slots: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *itemServiceImpl) ListSlots(ctx context.Context, itemID uint) ([]*model.Slot, error) {
	if _, err := s.itemRepo.FindByID(ctx, s.db, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load item: %w", err)
	}

	return s.slotRepo.ListByItem(ctx, itemID)
}

func (s *itemServiceImpl) UpdateSlotOverrides(ctx context.Context, slotID uint, overrides SlotOverrides) (*model.Slot, error) {
	var slot *model.Slot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		slot, err = s.slotRepo.FindByID(ctx, tx, slotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load slot: %w", err)
		}

		slot.ProductNameOverride = overrides.ProductName
		slot.PriceOverride = overrides.Price
		slot.PurchaseOptionOverride = overrides.PurchaseOption

		if err := s.slotRepo.UpdateOverrides(ctx, tx, slot); err != nil {
			return fmt.Errorf("update slot overrides: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return slot, nil
}
