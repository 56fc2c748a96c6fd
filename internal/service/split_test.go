package service

import (
	"context"
	"errors"
	"testing"

	"campaign-review-engine/internal/model"
)

func TestSplitDayGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, slots := env.createItem(t, 5)
	originalToken := slots[0].UploadLinkToken

	// Slot #4 gets a buyer before the split; it must keep it after moving.
	buyer, err := env.reconcile.ClaimSlot(ctx, slots[3].ID, BuyerDetails{OrderNumber: "ORD-44"})
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}

	result, err := env.split.SplitDayGroup(ctx, slots[2].ID)
	if err != nil {
		t.Fatalf("SplitDayGroup: %v", err)
	}
	if result.NewDayGroup != 2 {
		t.Errorf("expected new day group 2, got %d", result.NewDayGroup)
	}
	if result.MovedCount != 2 {
		t.Errorf("expected 2 moved slots, got %d", result.MovedCount)
	}

	after, err := env.items.ListSlots(ctx, item.ID)
	if err != nil {
		t.Fatalf("ListSlots: %v", err)
	}

	var group1, group2 []*model.Slot
	for _, slot := range after {
		switch slot.DayGroup {
		case 1:
			group1 = append(group1, slot)
		case 2:
			group2 = append(group2, slot)
		default:
			t.Errorf("unexpected day group %d", slot.DayGroup)
		}
	}

	if len(group1) != 3 || len(group2) != 2 {
		t.Fatalf("expected 3/2 split, got %d/%d", len(group1), len(group2))
	}
	for i, slot := range group1 {
		if slot.SlotNumber != i+1 {
			t.Errorf("group 1 slot %d renumbered to %d", i+1, slot.SlotNumber)
		}
		if slot.UploadLinkToken != originalToken {
			t.Errorf("group 1 lost its token")
		}
	}
	for i, slot := range group2 {
		if slot.SlotNumber != i+1 {
			t.Errorf("group 2 slot %d has number %d, expected %d", slot.ID, slot.SlotNumber, i+1)
		}
		if slot.UploadLinkToken == originalToken {
			t.Errorf("group 2 kept the original token")
		}
	}

	// Formerly #4, now first of group 2, still linked to its buyer.
	if group2[0].BuyerID == nil || *group2[0].BuyerID != buyer.ID {
		t.Errorf("moved slot lost its buyer")
	}
}

func TestSplitLastSlotFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, slots := env.createItem(t, 3)

	_, err := env.split.SplitDayGroup(ctx, slots[2].ID)
	if !errors.Is(err, ErrInvalidSplitTarget) {
		t.Fatalf("expected ErrInvalidSplitTarget, got %v", err)
	}
}

func TestSplitUnknownSlot(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.split.SplitDayGroup(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSplitDeletedItemFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, slots := env.createItem(t, 3)

	// Delete the item row alone so the slot itself stays live.
	if err := env.db.Delete(&model.Item{}, item.ID).Error; err != nil {
		t.Fatalf("delete item: %v", err)
	}

	_, err := env.split.SplitDayGroup(ctx, slots[0].ID)
	if !errors.Is(err, ErrInvalidSplitTarget) {
		t.Fatalf("expected ErrInvalidSplitTarget, got %v", err)
	}
}

func TestSplitAllocatesNextGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, slots := env.createItem(t, 4)

	first, err := env.split.SplitDayGroup(ctx, slots[1].ID)
	if err != nil {
		t.Fatalf("first split: %v", err)
	}
	if first.NewDayGroup != 2 {
		t.Fatalf("expected group 2, got %d", first.NewDayGroup)
	}

	// Split group 1 again; the allocator must skip past group 2.
	second, err := env.split.SplitDayGroup(ctx, slots[0].ID)
	if err != nil {
		t.Fatalf("second split: %v", err)
	}
	if second.NewDayGroup != 3 {
		t.Errorf("expected group 3, got %d", second.NewDayGroup)
	}

	after, _ := env.items.ListSlots(ctx, item.ID)
	if len(after) != 4 {
		t.Errorf("split changed slot count: %d", len(after))
	}
}
