package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campaign-review-engine/internal/model"
	"campaign-review-engine/internal/repository"

	"gorm.io/gorm"
)

// AssignmentService guards every assignment mutation: at most one active
// operator per (item, day group), reassignment is an atomic replace.
// dayGroup == nil addresses the whole item, all groups.
type AssignmentService interface {
	Assign(ctx context.Context, itemID uint, dayGroup *int, operatorID, actorID string) (*model.Assignment, error)
	Reassign(ctx context.Context, itemID uint, dayGroup *int, operatorID, actorID string) (*model.Assignment, error)
	Unassign(ctx context.Context, itemID uint, dayGroup *int, operatorID string) error
	ListByItem(ctx context.Context, itemID uint) ([]*model.Assignment, error)
}

type assignmentServiceImpl struct {
	db             *gorm.DB
	itemRepo       repository.ItemRepository
	assignmentRepo repository.AssignmentRepository
}

func NewAssignmentService(
	db *gorm.DB,
	itemRepo repository.ItemRepository,
	assignmentRepo repository.AssignmentRepository,
) AssignmentService {
	return &assignmentServiceImpl{
		db:             db,
		itemRepo:       itemRepo,
		assignmentRepo: assignmentRepo,
	}
}

func (s *assignmentServiceImpl) Assign(ctx context.Context, itemID uint, dayGroup *int, operatorID, actorID string) (*model.Assignment, error) {
	if err := validDayGroup(dayGroup); err != nil {
		return nil, err
	}

	var assignment *model.Assignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.FindByID(ctx, tx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load item: %w", err)
		}

		_, err = s.assignmentRepo.FindTupleForUpdate(ctx, tx, item.CampaignID, itemID, dayGroup, operatorID)
		if err == nil {
			return ErrDuplicateAssignment
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check existing assignment: %w", err)
		}

		assignment = &model.Assignment{
			CampaignID: item.CampaignID,
			ItemID:     itemID,
			DayGroup:   dayGroup,
			OperatorID: operatorID,
			AssignedBy: actorID,
			AssignedAt: time.Now(),
		}
		// Unique index backstop: a concurrent first-time assign that committed
		// in between surfaces here as a duplicate key.
		if err := s.assignmentRepo.Create(ctx, tx, assignment); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateAssignment
			}
			return fmt.Errorf("store assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return assignment, nil
}

func (s *assignmentServiceImpl) Reassign(ctx context.Context, itemID uint, dayGroup *int, operatorID, actorID string) (*model.Assignment, error) {
	if err := validDayGroup(dayGroup); err != nil {
		return nil, err
	}

	var assignment *model.Assignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.FindByID(ctx, tx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load item: %w", err)
		}

		current, err := s.assignmentRepo.FindActiveForUpdate(ctx, tx, item.CampaignID, itemID, dayGroup)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAssigned
			}
			return fmt.Errorf("load current assignment: %w", err)
		}
		if current.OperatorID == operatorID {
			return ErrDuplicateAssignment
		}

		// CAS on updated_at: a concurrent reassign that committed first leaves
		// nothing for us to remove.
		affected, err := s.assignmentRepo.RemoveIfUnchanged(ctx, tx, current.ID, current.UpdatedAt)
		if err != nil {
			return fmt.Errorf("remove current assignment: %w", err)
		}
		if affected == 0 {
			return ErrConcurrentReassignment
		}

		assignment = &model.Assignment{
			CampaignID: item.CampaignID,
			ItemID:     itemID,
			DayGroup:   dayGroup,
			OperatorID: operatorID,
			AssignedBy: actorID,
			AssignedAt: time.Now(),
		}
		if err := s.assignmentRepo.Create(ctx, tx, assignment); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateAssignment
			}
			return fmt.Errorf("store assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return assignment, nil
}

func (s *assignmentServiceImpl) Unassign(ctx context.Context, itemID uint, dayGroup *int, operatorID string) error {
	if err := validDayGroup(dayGroup); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.FindByID(ctx, tx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load item: %w", err)
		}

		current, err := s.assignmentRepo.FindTupleForUpdate(ctx, tx, item.CampaignID, itemID, dayGroup, operatorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAssigned
			}
			return fmt.Errorf("load assignment: %w", err)
		}

		if err := s.assignmentRepo.Remove(ctx, tx, current.ID); err != nil {
			return fmt.Errorf("remove assignment: %w", err)
		}
		return nil
	})
}

func (s *assignmentServiceImpl) ListByItem(ctx context.Context, itemID uint) ([]*model.Assignment, error) {
	return s.assignmentRepo.ListByItem(ctx, itemID)
}

func validDayGroup(dayGroup *int) error {
	if dayGroup != nil && *dayGroup < 1 {
		return &Error{KindValidation, "day group must be positive"}
	}
	return nil
}
