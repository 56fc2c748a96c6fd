package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"campaign-review-engine/internal/client"
	"campaign-review-engine/internal/model"
	"campaign-review-engine/internal/repository"

	"gorm.io/gorm"
)

type memStorage struct {
	mu      sync.Mutex
	nextKey int
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) Put(ctx context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextKey++
	key := fmt.Sprintf("obj-%d-%s", s.nextKey, name)
	s.objects[key] = data
	return key, nil
}

func (s *memStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStorage) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

type testEnv struct {
	db      *gorm.DB
	storage *memStorage

	buyerRepo      repository.BuyerRepository
	imageRepo      repository.ImageRepository
	slotRepo       repository.SlotRepository
	assignmentRepo repository.AssignmentRepository

	items       ItemService
	split       SplitService
	assignments AssignmentService
	reconcile   ReconcileService
	approval    ApprovalService
	trash       TrashService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newEnvWithDB(t, client.NewTestDB(t))
}

// newRaceTestEnv backs the environment with an on-disk database so that
// transactions started from separate goroutines really contend.
func newRaceTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newEnvWithDB(t, client.NewFileTestDB(t))
}

func newEnvWithDB(t *testing.T, db *gorm.DB) *testEnv {
	t.Helper()

	storage := newMemStorage()

	campaignRepo := repository.NewCampaignRepository(db)
	itemRepo := repository.NewItemRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	buyerRepo := repository.NewBuyerRepository(db)
	imageRepo := repository.NewImageRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	return &testEnv{
		db:             db,
		storage:        storage,
		buyerRepo:      buyerRepo,
		imageRepo:      imageRepo,
		slotRepo:       slotRepo,
		assignmentRepo: assignmentRepo,
		items:          NewItemService(db, campaignRepo, itemRepo, slotRepo),
		split:          NewSplitService(db, itemRepo, slotRepo),
		assignments:    NewAssignmentService(db, itemRepo, assignmentRepo),
		reconcile:      NewReconcileService(db, storage, itemRepo, slotRepo, buyerRepo, imageRepo),
		approval:       NewApprovalService(db, storage, itemRepo, buyerRepo, imageRepo),
		trash:          NewTrashService(db, 30),
	}
}

// createItem registers a campaign plus an item with slotCount slots in day
// group 1 and returns the item with its slots ordered by slot number.
func (e *testEnv) createItem(t *testing.T, slotCount int) (*model.Item, []*model.Slot) {
	t.Helper()
	ctx := context.Background()

	campaign, err := e.items.CreateCampaign(ctx, "Autumn Review Push", "Acme")
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}

	item, err := e.items.CreateItem(ctx, CreateItemInput{
		CampaignID:      campaign.ID,
		ProductName:     "Wireless Earbuds",
		Price:           29900,
		PurchaseOption:  "black",
		TargetSlotCount: slotCount,
		CreatedBy:       "sales-01",
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	slots, err := e.items.ListSlots(ctx, item.ID)
	if err != nil {
		t.Fatalf("ListSlots: %v", err)
	}
	if len(slots) != slotCount {
		t.Fatalf("expected %d slots, got %d", slotCount, len(slots))
	}

	return item, slots
}

func (e *testEnv) buyerByID(t *testing.T, id uint) *model.Buyer {
	t.Helper()
	var buyer model.Buyer
	if err := e.db.Unscoped().First(&buyer, id).Error; err != nil {
		t.Fatalf("load buyer %d: %v", id, err)
	}
	return &buyer
}

func (e *testEnv) imagesOf(t *testing.T, buyerID uint) []model.Image {
	t.Helper()
	var images []model.Image
	if err := e.db.Where("buyer_id = ?", buyerID).Order("id").Find(&images).Error; err != nil {
		t.Fatalf("load images of buyer %d: %v", buyerID, err)
	}
	return images
}
