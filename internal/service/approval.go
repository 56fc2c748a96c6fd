package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campaign-review-engine/internal/client"
	"campaign-review-engine/internal/model"
	"campaign-review-engine/internal/repository"

	"gorm.io/gorm"
)

type PendingImage struct {
	Image         *model.Image `json:"image"`
	PreviousImage *model.Image `json:"previous_image,omitempty"`
	Buyer         *model.Buyer `json:"buyer"`
	Item          *model.Item  `json:"item,omitempty"`
}

// ApprovalService gates resubmitted images behind an admin decision. Until a
// decision lands the previously approved image stays approved and visible.
type ApprovalService interface {
	ListPending(ctx context.Context) ([]*PendingImage, error)
	Approve(ctx context.Context, imageID uint) error
	Reject(ctx context.Context, imageID uint) error
}

type approvalServiceImpl struct {
	db        *gorm.DB
	storage   client.StorageClient
	itemRepo  repository.ItemRepository
	buyerRepo repository.BuyerRepository
	imageRepo repository.ImageRepository
}

func NewApprovalService(
	db *gorm.DB,
	storage client.StorageClient,
	itemRepo repository.ItemRepository,
	buyerRepo repository.BuyerRepository,
	imageRepo repository.ImageRepository,
) ApprovalService {
	return &approvalServiceImpl{
		db:        db,
		storage:   storage,
		itemRepo:  itemRepo,
		buyerRepo: buyerRepo,
		imageRepo: imageRepo,
	}
}

// attachImage appends an uploaded image to a buyer. The first image for a
// buyer is approved outright; while an approved one exists, new uploads enter
// the approval queue pointing back at it. At most one image per buyer may be
// pending, so a re-resubmission supersedes the currently pending one instead
// of queueing next to it.
func attachImage(ctx context.Context, tx *gorm.DB, imageRepo repository.ImageRepository, buyerID uint, storageKey string, now time.Time) (*model.Image, error) {
	approved, err := imageRepo.FindByBuyerAndStatus(ctx, tx, buyerID, model.ImageStatusApproved)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find approved image: %w", err)
	}

	image := &model.Image{
		BuyerID:    buyerID,
		StorageKey: storageKey,
		CapturedAt: now,
		Status:     model.ImageStatusApproved,
	}

	if approved != nil {
		pending, err := imageRepo.FindByBuyerAndStatus(ctx, tx, buyerID, model.ImageStatusPendingApproval)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find pending image: %w", err)
		}
		if pending != nil {
			err := imageRepo.UpdateStatus(ctx, tx, pending.ID, model.ImageStatusSuperseded)
			if err != nil {
				return nil, fmt.Errorf("supersede pending image: %w", err)
			}
		}

		image.Status = model.ImageStatusPendingApproval
		image.ResubmittedAt = &now
		image.PreviousImageID = &approved.ID
	}

	if err := imageRepo.Create(ctx, tx, image); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	return image, nil
}

func (s *approvalServiceImpl) ListPending(ctx context.Context) ([]*PendingImage, error) {
	images, err := s.imageRepo.ListByStatus(ctx, model.ImageStatusPendingApproval)
	if err != nil {
		return nil, fmt.Errorf("list pending images: %w", err)
	}

	result := make([]*PendingImage, 0, len(images))
	for _, image := range images {
		entry := &PendingImage{Image: image}

		buyer, err := s.buyerRepo.FindByID(ctx, s.db, image.BuyerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // buyer trashed since submission
			}
			return nil, fmt.Errorf("load buyer %d: %w", image.BuyerID, err)
		}
		entry.Buyer = buyer

		if image.PreviousImageID != nil {
			previous, err := s.imageRepo.FindByID(ctx, *image.PreviousImageID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("load previous image: %w", err)
			}
			entry.PreviousImage = previous
		}

		if buyer.ItemID != nil {
			item, err := s.itemRepo.FindByID(ctx, s.db, *buyer.ItemID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("load item: %w", err)
			}
			entry.Item = item
		}

		result = append(result, entry)
	}

	return result, nil
}

func (s *approvalServiceImpl) Approve(ctx context.Context, imageID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		image, err := s.imageRepo.FindByIDForUpdate(ctx, tx, imageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load image: %w", err)
		}
		if image.Status != model.ImageStatusPendingApproval {
			return ErrNotPending
		}

		if image.PreviousImageID != nil {
			err := s.imageRepo.UpdateStatus(ctx, tx, *image.PreviousImageID, model.ImageStatusSuperseded)
			if err != nil {
				return fmt.Errorf("supersede previous image: %w", err)
			}
		}

		if err := s.imageRepo.UpdateStatus(ctx, tx, image.ID, model.ImageStatusApproved); err != nil {
			return fmt.Errorf("approve image: %w", err)
		}
		return nil
	})
}

func (s *approvalServiceImpl) Reject(ctx context.Context, imageID uint) error {
	var storageKey string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		image, err := s.imageRepo.FindByIDForUpdate(ctx, tx, imageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load image: %w", err)
		}
		if image.Status != model.ImageStatusPendingApproval {
			return ErrNotPending
		}

		storageKey = image.StorageKey
		if err := s.imageRepo.HardDelete(ctx, tx, image.ID); err != nil {
			return fmt.Errorf("delete image record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Best effort: an orphaned blob beats a dangling row.
	if err := s.storage.Delete(ctx, storageKey); err != nil {
		log.Println("delete rejected image payload:", err)
	}
	return nil
}
