package dto

type CreateCampaignRequest struct {
	Name      string `json:"name" validate:"required"`
	BrandName string `json:"brand_name"`
}

type CreateItemRequest struct {
	CampaignID      uint   `json:"campaign_id" validate:"required"`
	ProductName     string `json:"product_name" validate:"required"`
	Price           int64  `json:"price" validate:"gte=0"`
	PurchaseOption  string `json:"purchase_option"`
	ReviewKeyword   string `json:"review_keyword"`
	TargetSlotCount int    `json:"target_slot_count" validate:"required,gte=1"`
}

type UpdateSlotRequest struct {
	ProductNameOverride    *string `json:"product_name_override"`
	PriceOverride          *int64  `json:"price_override"`
	PurchaseOptionOverride *string `json:"purchase_option_override"`

	// Buyer identity; setting either identifier triggers reconciliation
	// against provisional buyers in the item scope.
	OrderNumber       string `json:"order_number"`
	AccountDescriptor string `json:"account_descriptor"`
	BuyerName         string `json:"buyer_name"`
	BuyerPhone        string `json:"buyer_phone"`
	BuyerAddress      string `json:"buyer_address"`
	TrackingNumber    string `json:"tracking_number"`
}

type SplitResponse struct {
	NewDayGroup int `json:"new_day_group"`
	MovedCount  int `json:"moved_count"`
}

type AssignmentRequest struct {
	ItemID     uint   `json:"item_id" validate:"required"`
	OperatorID string `json:"operator_id" validate:"required"`
	// Nil means the whole item, all day groups.
	DayGroup *int `json:"day_group" validate:"omitempty,gte=1"`
}

type UploadResponse struct {
	MatchedBuyerID   uint   `json:"matched_buyer_id"`
	IsTemporaryBuyer bool   `json:"is_temporary_buyer"`
	ImageIDs         []uint `json:"image_ids"`
}

type EmptyTrashResponse struct {
	PurgedCount int64 `json:"purged_count"`
}
