package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"campaign-review-engine/internal/client"
	"campaign-review-engine/internal/model"
	"campaign-review-engine/internal/repository"

	"gorm.io/gorm"
)

type UploadIdentity struct {
	OrderNumber       string
	AccountDescriptor string
}

type UploadFile struct {
	Name string
	Data []byte
}

type UploadResult struct {
	BuyerID          uint   `json:"matched_buyer_id"`
	IsTemporaryBuyer bool   `json:"is_temporary_buyer"`
	ImageIDs         []uint `json:"image_ids"`
}

type BuyerDetails struct {
	OrderNumber       string
	AccountDescriptor string
	Name              string
	Phone             string
	Address           string
	TrackingNumber    string
}

// ReconcileService matches anonymous uploads to buyers. An upload token
// addresses either one day group or a whole item; identity fields are
// untrusted and partial, so unmatched uploads become provisional buyers that
// ClaimSlot later promotes in place.
type ReconcileService interface {
	UploadImages(ctx context.Context, token string, identity UploadIdentity, files []UploadFile) (*UploadResult, error)
	ClaimSlot(ctx context.Context, slotID uint, details BuyerDetails) (*model.Buyer, error)
}

type reconcileServiceImpl struct {
	db        *gorm.DB
	storage   client.StorageClient
	itemRepo  repository.ItemRepository
	slotRepo  repository.SlotRepository
	buyerRepo repository.BuyerRepository
	imageRepo repository.ImageRepository
}

func NewReconcileService(
	db *gorm.DB,
	storage client.StorageClient,
	itemRepo repository.ItemRepository,
	slotRepo repository.SlotRepository,
	buyerRepo repository.BuyerRepository,
	imageRepo repository.ImageRepository,
) ReconcileService {
	return &reconcileServiceImpl{
		db:        db,
		storage:   storage,
		itemRepo:  itemRepo,
		slotRepo:  slotRepo,
		buyerRepo: buyerRepo,
		imageRepo: imageRepo,
	}
}

// descriptorMatches applies the containment rule for account descriptors:
// trimmed, case-folded, matched if either side contains the other. Short
// descriptors can false-positive; the rule is isolated here so tightening it
// is a one-function change.
func descriptorMatches(stored, supplied string) bool {
	stored = strings.ToLower(strings.TrimSpace(stored))
	supplied = strings.ToLower(strings.TrimSpace(supplied))
	if stored == "" || supplied == "" {
		return false
	}
	return strings.Contains(stored, supplied) || strings.Contains(supplied, stored)
}

// matchBuyer applies the reconciliation priority: exact order number first,
// descriptor containment second.
func matchBuyer(candidates []*model.Buyer, identity UploadIdentity) *model.Buyer {
	if identity.OrderNumber != "" {
		for _, candidate := range candidates {
			if candidate.OrderNumber == identity.OrderNumber {
				return candidate
			}
		}
	}
	if identity.AccountDescriptor != "" {
		for _, candidate := range candidates {
			if descriptorMatches(candidate.AccountDescriptor, identity.AccountDescriptor) {
				return candidate
			}
		}
	}
	return nil
}

func (s *reconcileServiceImpl) UploadImages(ctx context.Context, token string, identity UploadIdentity, files []UploadFile) (*UploadResult, error) {
	identity.OrderNumber = strings.TrimSpace(identity.OrderNumber)
	identity.AccountDescriptor = strings.TrimSpace(identity.AccountDescriptor)
	if identity.OrderNumber == "" && identity.AccountDescriptor == "" {
		return nil, ErrMissingIdentifier
	}
	if len(files) == 0 {
		return nil, ErrNoImages
	}

	// Bytes go to storage before the transaction; only keys enter the store.
	keys := make([]string, len(files))
	for i, file := range files {
		key, err := s.storage.Put(ctx, file.Name, file.Data)
		if err != nil {
			return nil, fmt.Errorf("store image payload: %w", err)
		}
		keys[i] = key
	}

	var result UploadResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		itemID, dayGroup, err := s.resolveToken(ctx, tx, token)
		if err != nil {
			return err
		}

		candidates, err := s.buyerRepo.ListScopeForUpdate(ctx, tx, itemID, dayGroup)
		if err != nil {
			return fmt.Errorf("load match candidates: %w", err)
		}

		buyer := matchBuyer(candidates, identity)
		if buyer == nil {
			buyer, err = s.createProvisional(ctx, tx, itemID, identity)
			if err != nil {
				return err
			}
		}

		now := time.Now()
		result = UploadResult{
			BuyerID:          buyer.ID,
			IsTemporaryBuyer: buyer.IsTemporary,
		}
		for _, key := range keys {
			image, err := attachImage(ctx, tx, s.imageRepo, buyer.ID, key, now)
			if err != nil {
				return err
			}
			result.ImageIDs = append(result.ImageIDs, image.ID)
		}
		return nil
	})
	if err != nil {
		for _, key := range keys {
			if delErr := s.storage.Delete(ctx, key); delErr != nil {
				log.Println("discard unreconciled payload:", delErr)
			}
		}
		return nil, err
	}

	return &result, nil
}

func (s *reconcileServiceImpl) resolveToken(ctx context.Context, tx *gorm.DB, token string) (uint, *int, error) {
	item, err := s.itemRepo.FindByToken(ctx, tx, token)
	if err == nil {
		return item.ID, nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil, fmt.Errorf("resolve item token: %w", err)
	}

	slot, err := s.slotRepo.FindGroupByToken(ctx, tx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, ErrUnknownToken
		}
		return 0, nil, fmt.Errorf("resolve group token: %w", err)
	}
	return slot.ItemID, &slot.DayGroup, nil
}

// createProvisional is the single atomic check-then-act: the partial unique
// index on (item_id, order_number) collapses racing creates onto one row, and
// the loser appends to the winner's buyer instead.
func (s *reconcileServiceImpl) createProvisional(ctx context.Context, tx *gorm.DB, itemID uint, identity UploadIdentity) (*model.Buyer, error) {
	buyer := &model.Buyer{
		ItemID:            &itemID,
		IsTemporary:       true,
		OrderNumber:       identity.OrderNumber,
		AccountDescriptor: identity.AccountDescriptor,
	}

	err := s.buyerRepo.Create(ctx, tx, buyer)
	if err == nil {
		return buyer, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) || identity.OrderNumber == "" {
		return nil, fmt.Errorf("store provisional buyer: %w", err)
	}

	existing, err := s.buyerRepo.FindProvisionalByOrderNumber(ctx, tx, itemID, identity.OrderNumber)
	if err != nil {
		return nil, fmt.Errorf("load racing provisional buyer: %w", err)
	}
	return existing, nil
}

// ClaimSlot records real identity fields for a slot. Matching identifiers
// promote an existing provisional buyer in place (one update, image history
// intact); otherwise a confirmed buyer is created.
func (s *reconcileServiceImpl) ClaimSlot(ctx context.Context, slotID uint, details BuyerDetails) (*model.Buyer, error) {
	details.OrderNumber = strings.TrimSpace(details.OrderNumber)
	details.AccountDescriptor = strings.TrimSpace(details.AccountDescriptor)
	if details.OrderNumber == "" && details.AccountDescriptor == "" {
		return nil, ErrMissingIdentifier
	}

	var buyer *model.Buyer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := s.slotRepo.FindByIDForUpdate(ctx, tx, slotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load slot: %w", err)
		}

		// Slot already has a buyer: just update the details.
		if slot.BuyerID != nil {
			buyer, err = s.buyerRepo.FindByID(ctx, tx, *slot.BuyerID)
			if err != nil {
				return fmt.Errorf("load linked buyer: %w", err)
			}
			applyDetails(buyer, details)
			if err := s.buyerRepo.UpdateDetails(ctx, tx, buyer); err != nil {
				return fmt.Errorf("update buyer details: %w", err)
			}
			return nil
		}

		provisionals, err := s.buyerRepo.ListProvisionalForUpdate(ctx, tx, slot.ItemID)
		if err != nil {
			return fmt.Errorf("load provisional buyers: %w", err)
		}

		match := matchBuyer(provisionals, UploadIdentity{
			OrderNumber:       details.OrderNumber,
			AccountDescriptor: details.AccountDescriptor,
		})
		if match != nil {
			buyer = match
			buyer.SlotID = &slot.ID
			applyDetails(buyer, details)
			if err := s.buyerRepo.Promote(ctx, tx, buyer); err != nil {
				return fmt.Errorf("promote provisional buyer: %w", err)
			}
			buyer.IsTemporary = false
		} else {
			buyer = &model.Buyer{
				ItemID: &slot.ItemID,
				SlotID: &slot.ID,
			}
			applyDetails(buyer, details)
			if err := s.buyerRepo.Create(ctx, tx, buyer); err != nil {
				return fmt.Errorf("store confirmed buyer: %w", err)
			}
		}

		if err := s.slotRepo.LinkBuyer(ctx, tx, slot.ID, buyer.ID); err != nil {
			return fmt.Errorf("link buyer to slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return buyer, nil
}

func applyDetails(buyer *model.Buyer, details BuyerDetails) {
	buyer.OrderNumber = details.OrderNumber
	buyer.AccountDescriptor = details.AccountDescriptor
	buyer.Name = details.Name
	buyer.Phone = details.Phone
	buyer.Address = details.Address
	buyer.TrackingNumber = details.TrackingNumber
}
