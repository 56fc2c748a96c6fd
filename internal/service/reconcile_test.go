package service

import (
	"context"
	"errors"
	"testing"

	"campaign-review-engine/internal/model"

	"gorm.io/gorm"
)

func onePhoto(name string) []UploadFile {
	return []UploadFile{{Name: name, Data: []byte("jpeg-bytes")}}
}

func TestUploadRequiresIdentifier(t *testing.T) {
	env := newTestEnv(t)

	_, slots := env.createItem(t, 2)

	_, err := env.reconcile.UploadImages(context.Background(), slots[0].UploadLinkToken, UploadIdentity{}, onePhoto("a.jpg"))
	if !errors.Is(err, ErrMissingIdentifier) {
		t.Fatalf("expected ErrMissingIdentifier, got %v", err)
	}
}

func TestUploadUnknownToken(t *testing.T) {
	env := newTestEnv(t)
	env.createItem(t, 2)

	_, err := env.reconcile.UploadImages(context.Background(), "no-such-token",
		UploadIdentity{OrderNumber: "ORD-1"}, onePhoto("a.jpg"))
	if !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected ErrUnknownToken, got %v", err)
	}
}

func TestUploadCreatesProvisionalBuyer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, slots := env.createItem(t, 2)

	result, err := env.reconcile.UploadImages(ctx, slots[0].UploadLinkToken,
		UploadIdentity{OrderNumber: "ORD-1"}, onePhoto("a.jpg"))
	if err != nil {
		t.Fatalf("UploadImages: %v", err)
	}
	if !result.IsTemporaryBuyer {
		t.Errorf("expected a provisional buyer")
	}

	buyer := env.buyerByID(t, result.BuyerID)
	ref, ok := buyer.Ref().(model.ProvisionalBuyer)
	if !ok {
		t.Fatalf("expected provisional variant, got %#v", buyer.Ref())
	}
	if ref.OrderNumber != "ORD-1" {
		t.Errorf("provisional lost its order number: %q", ref.OrderNumber)
	}
	if buyer.ItemID == nil || *buyer.ItemID != item.ID {
		t.Errorf("provisional not scoped to item")
	}

	images := env.imagesOf(t, buyer.ID)
	if len(images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(images))
	}
	if images[0].Status != model.ImageStatusApproved {
		t.Errorf("first image should be approved, got %q", images[0].Status)
	}
}

func TestRepeatUploadReusesProvisional(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, slots := env.createItem(t, 2)
	token := slots[0].UploadLinkToken

	first, err := env.reconcile.UploadImages(ctx, token, UploadIdentity{OrderNumber: "ORD-7"}, onePhoto("a.jpg"))
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	second, err := env.reconcile.UploadImages(ctx, token, UploadIdentity{OrderNumber: "ORD-7"}, onePhoto("b.jpg"))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}

	if first.BuyerID != second.BuyerID {
		t.Fatalf("repeat upload created a second buyer: %d vs %d", first.BuyerID, second.BuyerID)
	}

	var count int64
	env.db.Model(&model.Buyer{}).Where("order_number = ?", "ORD-7").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one buyer for ORD-7, got %d", count)
	}
	if images := env.imagesOf(t, first.BuyerID); len(images) != 2 {
		t.Errorf("expected both images attached, got %d", len(images))
	}
}

// The partial unique index is the backstop for uploads racing past the
// in-transaction match: the second insert must fail as a duplicate key so the
// reconciler can append to the winner's row.
func TestProvisionalUniqueIndexBackstop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, _ := env.createItem(t, 2)

	buyer := &model.Buyer{ItemID: &item.ID, IsTemporary: true, OrderNumber: "ORD-9"}
	if err := env.buyerRepo.Create(ctx, env.db, buyer); err != nil {
		t.Fatalf("first provisional: %v", err)
	}

	dup := &model.Buyer{ItemID: &item.ID, IsTemporary: true, OrderNumber: "ORD-9"}
	err := env.buyerRepo.Create(ctx, env.db, dup)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicated key error, got %v", err)
	}

	// Confirmed buyers with the same order number are not blocked.
	slotBuyer := &model.Buyer{ItemID: &item.ID, OrderNumber: "ORD-9"}
	if err := env.buyerRepo.Create(ctx, env.db, slotBuyer); err != nil {
		t.Fatalf("confirmed buyer blocked by provisional index: %v", err)
	}
}

func TestConcurrentUploadsShareProvisional(t *testing.T) {
	env := newRaceTestEnv(t)
	ctx := context.Background()

	_, slots := env.createItem(t, 2)
	token := slots[0].UploadLinkToken

	start := make(chan struct{})
	errs := make(chan error, 2)
	for _, name := range []string{"a.jpg", "b.jpg"} {
		go func() {
			<-start
			_, err := env.reconcile.UploadImages(ctx, token,
				UploadIdentity{OrderNumber: "ORD-77"}, onePhoto(name))
			errs <- err
		}()
	}
	close(start)

	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("concurrent upload: %v", err)
		}
	}

	var buyers []model.Buyer
	if err := env.db.Where("order_number = ?", "ORD-77").Find(&buyers).Error; err != nil {
		t.Fatalf("load buyers: %v", err)
	}
	if len(buyers) != 1 {
		t.Fatalf("expected one buyer for ORD-77, got %d", len(buyers))
	}
	if images := env.imagesOf(t, buyers[0].ID); len(images) != 2 {
		t.Errorf("expected both images attached, got %d", len(images))
	}
}

func TestUploadMatchesConfirmedBuyerByOrderNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, slots := env.createItem(t, 2)

	buyer, err := env.reconcile.ClaimSlot(ctx, slots[0].ID, BuyerDetails{OrderNumber: "ORD-3", Name: "Kim"})
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}

	result, err := env.reconcile.UploadImages(ctx, slots[0].UploadLinkToken,
		UploadIdentity{OrderNumber: "ORD-3"}, onePhoto("a.jpg"))
	if err != nil {
		t.Fatalf("UploadImages: %v", err)
	}
	if result.BuyerID != buyer.ID {
		t.Errorf("matched buyer %d, expected %d", result.BuyerID, buyer.ID)
	}
	if result.IsTemporaryBuyer {
		t.Errorf("confirmed buyer reported as provisional")
	}
}

func TestUploadOrderNumberIsCaseSensitive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, slots := env.createItem(t, 2)

	if _, err := env.reconcile.ClaimSlot(ctx, slots[0].ID, BuyerDetails{OrderNumber: "ord-3"}); err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}

	result, err := env.reconcile.UploadImages(ctx, slots[0].UploadLinkToken,
		UploadIdentity{OrderNumber: "ORD-3"}, onePhoto("a.jpg"))
	if err != nil {
		t.Fatalf("UploadImages: %v", err)
	}
	if !result.IsTemporaryBuyer {
		t.Errorf("case-differing order number must not match")
	}
}

func TestUploadMatchesByDescriptorContainment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, slots := env.createItem(t, 2)

	buyer, err := env.reconcile.ClaimSlot(ctx, slots[0].ID,
		BuyerDetails{OrderNumber: "ORD-5", AccountDescriptor: "My Shop Account"})
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}

	result, err := env.reconcile.UploadImages(ctx, slots[0].UploadLinkToken,
		UploadIdentity{AccountDescriptor: "  shop acc "}, onePhoto("a.jpg"))
	if err != nil {
		t.Fatalf("UploadImages: %v", err)
	}
	if result.BuyerID != buyer.ID {
		t.Errorf("descriptor containment match failed")
	}
}

// A buyer confirmed in one day group is invisible to another group's token;
// the upload falls through to a provisional buyer.
func TestUploadScopedToDayGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, slots := env.createItem(t, 4)

	if _, err := env.split.SplitDayGroup(ctx, slots[1].ID); err != nil {
		t.Fatalf("SplitDayGroup: %v", err)
	}

	confirmed, err := env.reconcile.ClaimSlot(ctx, slots[0].ID, BuyerDetails{OrderNumber: "ORD-8"})
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}

	var moved model.Slot
	if err := env.db.First(&moved, slots[2].ID).Error; err != nil {
		t.Fatalf("reload moved slot: %v", err)
	}

	result, err := env.reconcile.UploadImages(ctx, moved.UploadLinkToken,
		UploadIdentity{OrderNumber: "ORD-8"}, onePhoto("a.jpg"))
	if err != nil {
		t.Fatalf("UploadImages: %v", err)
	}
	if result.BuyerID == confirmed.ID {
		t.Errorf("group 2 token matched a buyer confirmed in group 1")
	}
	if !result.IsTemporaryBuyer {
		t.Errorf("expected a provisional buyer in the other group")
	}
}

// A whole-item token sees buyers across every day group.
func TestUploadWholeItemToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, slots := env.createItem(t, 4)

	if _, err := env.split.SplitDayGroup(ctx, slots[1].ID); err != nil {
		t.Fatalf("SplitDayGroup: %v", err)
	}

	confirmed, err := env.reconcile.ClaimSlot(ctx, slots[0].ID, BuyerDetails{OrderNumber: "ORD-8"})
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}

	result, err := env.reconcile.UploadImages(ctx, item.UploadLinkToken,
		UploadIdentity{OrderNumber: "ORD-8"}, onePhoto("a.jpg"))
	if err != nil {
		t.Fatalf("UploadImages: %v", err)
	}
	if result.BuyerID != confirmed.ID {
		t.Errorf("whole-item token missed the confirmed buyer")
	}
}

func TestClaimSlotPromotesProvisional(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, slots := env.createItem(t, 2)

	uploaded, err := env.reconcile.UploadImages(ctx, slots[0].UploadLinkToken,
		UploadIdentity{OrderNumber: "ORD-2"}, onePhoto("a.jpg"))
	if err != nil {
		t.Fatalf("UploadImages: %v", err)
	}

	buyer, err := env.reconcile.ClaimSlot(ctx, slots[1].ID,
		BuyerDetails{OrderNumber: "ORD-2", Name: "Lee", Phone: "010-1234"})
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}

	// Promotion is in place: same row, flag cleared, images intact.
	if buyer.ID != uploaded.BuyerID {
		t.Fatalf("promotion recreated the buyer: %d vs %d", buyer.ID, uploaded.BuyerID)
	}

	reloaded := env.buyerByID(t, buyer.ID)
	ref, ok := reloaded.Ref().(model.ConfirmedBuyer)
	if !ok {
		t.Fatalf("expected confirmed variant after promotion, got %#v", reloaded.Ref())
	}
	if ref.SlotID != slots[1].ID {
		t.Errorf("promoted buyer points at slot %d, expected %d", ref.SlotID, slots[1].ID)
	}
	if reloaded.Name != "Lee" {
		t.Errorf("promotion dropped declared details")
	}
	if images := env.imagesOf(t, buyer.ID); len(images) != 1 {
		t.Errorf("promotion lost image history")
	}

	var slot model.Slot
	env.db.First(&slot, slots[1].ID)
	if slot.BuyerID == nil || *slot.BuyerID != buyer.ID {
		t.Errorf("slot not linked to promoted buyer")
	}
}

func TestClaimSlotCreatesConfirmedBuyer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, slots := env.createItem(t, 2)

	buyer, err := env.reconcile.ClaimSlot(ctx, slots[0].ID, BuyerDetails{OrderNumber: "ORD-6"})
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}
	if _, ok := buyer.Ref().(model.ConfirmedBuyer); !ok {
		t.Fatalf("expected confirmed buyer, got %#v", buyer.Ref())
	}
}

func TestClaimSlotUpdatesExistingBuyer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, slots := env.createItem(t, 2)

	first, err := env.reconcile.ClaimSlot(ctx, slots[0].ID, BuyerDetails{OrderNumber: "ORD-6"})
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}

	second, err := env.reconcile.ClaimSlot(ctx, slots[0].ID,
		BuyerDetails{OrderNumber: "ORD-6", TrackingNumber: "TRK-1"})
	if err != nil {
		t.Fatalf("second ClaimSlot: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("editing a claimed slot created a new buyer")
	}
	if env.buyerByID(t, first.ID).TrackingNumber != "TRK-1" {
		t.Errorf("details not updated")
	}
}
