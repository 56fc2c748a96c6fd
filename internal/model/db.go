package model

import (
	"time"

	"gorm.io/gorm"
)

type Campaign struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	BrandName string `gorm:"size:255;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type Item struct {
	ID         uint `gorm:"primaryKey"`
	CampaignID uint `gorm:"index;not null"`

	// Per-slot template fields; a Slot may override them individually.
	ProductName    string `gorm:"size:255;not null"`
	Price          int64  `gorm:"not null"` // smallest currency unit
	PurchaseOption string `gorm:"size:255"`
	ReviewKeyword  string `gorm:"size:255"`

	TargetSlotCount int `gorm:"not null"`

	// Token addressing the whole item (all day groups) on upload.
	UploadLinkToken string `gorm:"size:64;uniqueIndex;not null"`

	CreatedBy string `gorm:"size:64"` // sales user id
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type Slot struct {
	ID         uint `gorm:"primaryKey"`
	ItemID     uint `gorm:"index;not null;uniqueIndex:idx_slots_item_group_number,priority:1"`
	DayGroup   int  `gorm:"not null;uniqueIndex:idx_slots_item_group_number,priority:2"`
	SlotNumber int  `gorm:"not null;uniqueIndex:idx_slots_item_group_number,priority:3"` // 1-based within (item_id, day_group)

	// Shared by all slots of the same (item_id, day_group).
	UploadLinkToken string `gorm:"size:64;index;not null"`

	ProductNameOverride    *string `gorm:"size:255"`
	PriceOverride          *int64
	PurchaseOptionOverride *string `gorm:"size:255"`

	// Nil until reconciliation or manual entry links a buyer.
	BuyerID *uint `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Buyer *Buyer `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
}

type Buyer struct {
	ID uint `gorm:"primaryKey"`

	// Item scope the buyer was reconciled under. Set for provisional buyers;
	// confirmed buyers inherit it from their slot.
	ItemID *uint `gorm:"index"`
	SlotID *uint `gorm:"index"`

	// True while the buyer exists only as an unmatched upload.
	IsTemporary bool `gorm:"not null;default:false;index"`

	OrderNumber       string `gorm:"size:128;index"`
	AccountDescriptor string `gorm:"size:255"`

	Name           string `gorm:"size:128"`
	Phone          string `gorm:"size:64"`
	Address        string `gorm:"size:512"`
	TrackingNumber string `gorm:"size:128"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Images []Image `gorm:"foreignKey:BuyerID" json:"images,omitempty"`
}

const (
	ImageStatusApproved        = "approved"
	ImageStatusPendingApproval = "pending_approval"
	// Terminal state for an image replaced by an approved resubmission.
	ImageStatusSuperseded = "superseded"
)

type Image struct {
	ID      uint `gorm:"primaryKey"`
	BuyerID uint `gorm:"index;not null"`

	StorageKey string    `gorm:"size:512;not null"`
	CapturedAt time.Time `gorm:"not null"`
	Status     string    `gorm:"size:32;index;not null"`

	// Set when this image was uploaded while another was already approved.
	ResubmittedAt   *time.Time
	PreviousImageID *uint

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type Assignment struct {
	ID         uint `gorm:"primaryKey"`
	CampaignID uint `gorm:"index;not null"`
	ItemID     uint `gorm:"index;not null"`

	// Nil means the whole item, all day groups.
	DayGroup *int `gorm:"index"`

	OperatorID string    `gorm:"size:64;index;not null"`
	AssignedBy string    `gorm:"size:64"`
	AssignedAt time.Time `gorm:"not null"`

	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
