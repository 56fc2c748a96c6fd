package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campaign-review-engine/internal/model"

	"gorm.io/gorm"
)

type EntityType string

const (
	EntityCampaign   EntityType = "campaign"
	EntityItem       EntityType = "item"
	EntitySlot       EntityType = "slot"
	EntityBuyer      EntityType = "buyer"
	EntityImage      EntityType = "image"
	EntityAssignment EntityType = "assignment"
)

var trashTables = map[EntityType]string{
	EntityCampaign:   "campaigns",
	EntityItem:       "items",
	EntitySlot:       "slots",
	EntityBuyer:      "buyers",
	EntityImage:      "images",
	EntityAssignment: "assignments",
}

type trashEdge struct {
	child EntityType
	fk    string
}

// trashEdges declares existential dependency: deleting a parent cascades to
// these children. A slot's buyer is deliberately absent, buyers outlive slots
// through the provisional state.
var trashEdges = map[EntityType][]trashEdge{
	EntityCampaign: {{EntityItem, "campaign_id"}},
	EntityItem:     {{EntitySlot, "item_id"}},
	EntityBuyer:    {{EntityImage, "buyer_id"}},
}

// purgeOrder hard-deletes dependents before parents.
var purgeOrder = []EntityType{
	EntityImage, EntitySlot, EntityBuyer, EntityAssignment, EntityItem, EntityCampaign,
}

type EntityRef struct {
	Type EntityType `json:"type"`
	ID   uint       `json:"id"`
}

// RestoreReport lists what a restore touched. Skipped entries were deleted
// independently after the parent and stay in trash.
type RestoreReport struct {
	Restored []EntityRef `json:"restored"`
	Skipped  []EntityRef `json:"skipped"`
}

// TrashService soft-deletes, restores, and purges entities across types by
// walking the declared dependency edges.
type TrashService interface {
	SoftDelete(ctx context.Context, entityType EntityType, id uint) error
	Restore(ctx context.Context, entityType EntityType, id uint) (*RestoreReport, error)
	PermanentDelete(ctx context.Context, entityType EntityType, id uint) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type trashServiceImpl struct {
	db        *gorm.DB
	retention time.Duration
}

func NewTrashService(db *gorm.DB, retentionDays int) TrashService {
	return &trashServiceImpl{
		db:        db,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (s *trashServiceImpl) SoftDelete(ctx context.Context, entityType EntityType, id uint) error {
	table, ok := trashTables[entityType]
	if !ok {
		return ErrUnknownEntityType
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One timestamp for the whole cascade: the restore guard relies on
		// cascaded dependents sharing the parent's deleted_at.
		now := time.Now()

		result := tx.Table(table).
			Where("id = ? AND deleted_at IS NULL", id).
			Update("deleted_at", now)
		if result.Error != nil {
			return fmt.Errorf("soft delete %s %d: %w", entityType, id, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		return cascadeSoftDelete(tx, entityType, []uint{id}, now)
	})
}

func cascadeSoftDelete(tx *gorm.DB, entityType EntityType, ids []uint, now time.Time) error {
	for _, edge := range trashEdges[entityType] {
		childTable := trashTables[edge.child]

		var childIDs []uint
		err := tx.Table(childTable).
			Where(edge.fk+" IN ? AND deleted_at IS NULL", ids).
			Pluck("id", &childIDs).Error
		if err != nil {
			return fmt.Errorf("collect %s dependents: %w", edge.child, err)
		}
		if len(childIDs) == 0 {
			continue
		}

		err = tx.Table(childTable).
			Where("id IN ?", childIDs).
			Update("deleted_at", now).Error
		if err != nil {
			return fmt.Errorf("cascade soft delete %s: %w", edge.child, err)
		}

		if err := cascadeSoftDelete(tx, edge.child, childIDs, now); err != nil {
			return err
		}
	}
	return nil
}

type trashRow struct {
	ID        uint
	DeletedAt *time.Time
}

func (s *trashServiceImpl) Restore(ctx context.Context, entityType EntityType, id uint) (*RestoreReport, error) {
	table, ok := trashTables[entityType]
	if !ok {
		return nil, ErrUnknownEntityType
	}

	report := &RestoreReport{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row trashRow
		err := tx.Table(table).
			Select("id", "deleted_at").
			Where("id = ?", id).
			Take(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load %s %d: %w", entityType, id, err)
		}
		if row.DeletedAt == nil {
			return ErrNotInTrash
		}

		if err := restoreCascade(tx, entityType, id, *row.DeletedAt, report); err != nil {
			return err
		}
		return demoteRestoredImages(tx, report)
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// restoreCascade clears deleted_at on the entity, then walks its edges. A
// dependent whose deleted_at is strictly later than the parent's was deleted
// independently afterward and is skipped, not failed.
func restoreCascade(tx *gorm.DB, entityType EntityType, id uint, deletedAt time.Time, report *RestoreReport) error {
	err := tx.Table(trashTables[entityType]).
		Where("id = ?", id).
		Update("deleted_at", nil).Error
	if err != nil {
		return fmt.Errorf("restore %s %d: %w", entityType, id, err)
	}
	report.Restored = append(report.Restored, EntityRef{Type: entityType, ID: id})

	for _, edge := range trashEdges[entityType] {
		var children []trashRow
		err := tx.Table(trashTables[edge.child]).
			Select("id", "deleted_at").
			Where(edge.fk+" = ? AND deleted_at IS NOT NULL", id).
			Find(&children).Error
		if err != nil {
			return fmt.Errorf("collect %s dependents: %w", edge.child, err)
		}

		for _, child := range children {
			if child.DeletedAt.After(deletedAt) {
				report.Skipped = append(report.Skipped, EntityRef{Type: edge.child, ID: child.ID})
				continue
			}
			if err := restoreCascade(tx, edge.child, child.ID, *child.DeletedAt, report); err != nil {
				return err
			}
		}
	}
	return nil
}

// demoteRestoredImages keeps a buyer's image statuses unique across restores.
// While an image sat in trash its buyer may have gained a fresh approval or
// queued a new pending one; the live row wins and the restored copy comes
// back superseded.
func demoteRestoredImages(tx *gorm.DB, report *RestoreReport) error {
	for _, ref := range report.Restored {
		if ref.Type != EntityImage {
			continue
		}

		var restored struct {
			BuyerID uint
			Status  string
		}
		err := tx.Table(trashTables[EntityImage]).
			Select("buyer_id", "status").
			Where("id = ?", ref.ID).
			Take(&restored).Error
		if err != nil {
			return fmt.Errorf("load restored image %d: %w", ref.ID, err)
		}
		if restored.Status != model.ImageStatusApproved && restored.Status != model.ImageStatusPendingApproval {
			continue
		}

		var live int64
		err = tx.Table(trashTables[EntityImage]).
			Where("buyer_id = ? AND status = ? AND deleted_at IS NULL AND id <> ?",
				restored.BuyerID, restored.Status, ref.ID).
			Count(&live).Error
		if err != nil {
			return fmt.Errorf("count %s images of buyer %d: %w", restored.Status, restored.BuyerID, err)
		}
		if live == 0 {
			continue
		}

		err = tx.Table(trashTables[EntityImage]).
			Where("id = ?", ref.ID).
			Update("status", model.ImageStatusSuperseded).Error
		if err != nil {
			return fmt.Errorf("demote restored image %d: %w", ref.ID, err)
		}
	}
	return nil
}

func (s *trashServiceImpl) PermanentDelete(ctx context.Context, entityType EntityType, id uint) error {
	table, ok := trashTables[entityType]
	if !ok {
		return ErrUnknownEntityType
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Table(table).Where("id = ?", id).Count(&count).Error
		if err != nil {
			return fmt.Errorf("load %s %d: %w", entityType, id, err)
		}
		if count == 0 {
			return ErrNotFound
		}

		return hardDeleteCascade(tx, entityType, []uint{id})
	})
}

// hardDeleteCascade removes dependents before parents so no child row ever
// references a missing parent.
func hardDeleteCascade(tx *gorm.DB, entityType EntityType, ids []uint) error {
	for _, edge := range trashEdges[entityType] {
		childTable := trashTables[edge.child]

		var childIDs []uint
		err := tx.Table(childTable).
			Where(edge.fk+" IN ?", ids).
			Pluck("id", &childIDs).Error
		if err != nil {
			return fmt.Errorf("collect %s dependents: %w", edge.child, err)
		}
		if len(childIDs) == 0 {
			continue
		}
		if err := hardDeleteCascade(tx, edge.child, childIDs); err != nil {
			return err
		}
	}

	err := tx.Exec("DELETE FROM "+trashTables[entityType]+" WHERE id IN ?", ids).Error
	if err != nil {
		return fmt.Errorf("hard delete %s: %w", entityType, err)
	}
	return nil
}

func (s *trashServiceImpl) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.retention)

	var purged int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entityType := range purgeOrder {
			result := tx.Exec(
				"DELETE FROM "+trashTables[entityType]+" WHERE deleted_at IS NOT NULL AND deleted_at < ?",
				cutoff,
			)
			if result.Error != nil {
				return fmt.Errorf("purge %s: %w", entityType, result.Error)
			}
			purged += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return purged, nil
}
