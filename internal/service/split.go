package service

import (
	"context"
	"errors"
	"fmt"

	"campaign-review-engine/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SplitResult struct {
	NewDayGroup int
	MovedCount  int
}

// SplitService divides a day group in two: the given slot marks the last one
// that stays, everything ordered after it moves to a fresh group.
type SplitService interface {
	SplitDayGroup(ctx context.Context, slotID uint) (*SplitResult, error)
}

type splitServiceImpl struct {
	db       *gorm.DB
	itemRepo repository.ItemRepository
	slotRepo repository.SlotRepository
}

func NewSplitService(
	db *gorm.DB,
	itemRepo repository.ItemRepository,
	slotRepo repository.SlotRepository,
) SplitService {
	return &splitServiceImpl{
		db:       db,
		itemRepo: itemRepo,
		slotRepo: slotRepo,
	}
}

func (s *splitServiceImpl) SplitDayGroup(ctx context.Context, slotID uint) (*SplitResult, error) {
	var result SplitResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := s.slotRepo.FindByIDForUpdate(ctx, tx, slotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load slot: %w", err)
		}

		// A soft-deleted item is filtered out by the default scope.
		if _, err := s.itemRepo.FindByID(ctx, tx, slot.ItemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidSplitTarget
			}
			return fmt.Errorf("load item: %w", err)
		}

		tail, err := s.slotRepo.ListGroupTail(ctx, tx, slot.ItemID, slot.DayGroup, slot.SlotNumber)
		if err != nil {
			return fmt.Errorf("load group tail: %w", err)
		}
		if len(tail) == 0 {
			return ErrInvalidSplitTarget
		}

		maxGroup, err := s.slotRepo.MaxDayGroup(ctx, tx, slot.ItemID)
		if err != nil {
			return fmt.Errorf("max day group: %w", err)
		}

		newGroup := maxGroup + 1
		token := uuid.NewString() // the original group keeps its token

		for i, moved := range tail {
			err := s.slotRepo.MoveToGroup(ctx, tx, moved.ID, newGroup, i+1, token)
			if err != nil {
				return fmt.Errorf("move slot %d: %w", moved.ID, err)
			}
		}

		result = SplitResult{
			NewDayGroup: newGroup,
			MovedCount:  len(tail),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}
