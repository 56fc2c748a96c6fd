package handler

import (
	"net/http"
	"strconv"

	"campaign-review-engine/internal/dto"
	"campaign-review-engine/internal/service"

	"github.com/labstack/echo/v4"
)

type ItemHandler struct {
	itemService      service.ItemService
	splitService     service.SplitService
	reconcileService service.ReconcileService
}

func NewItemHandler(
	itemService service.ItemService,
	splitService service.SplitService,
	reconcileService service.ReconcileService,
) *ItemHandler {
	return &ItemHandler{
		itemService:      itemService,
		splitService:     splitService,
		reconcileService: reconcileService,
	}
}

func idParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

func (h *ItemHandler) CreateCampaign(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateCampaignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	campaign, err := h.itemService.CreateCampaign(ctx, req.Name, req.BrandName)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, campaign)
}

func (h *ItemHandler) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.itemService.CreateItem(ctx, service.CreateItemInput{
		CampaignID:      req.CampaignID,
		ProductName:     req.ProductName,
		Price:           req.Price,
		PurchaseOption:  req.PurchaseOption,
		ReviewKeyword:   req.ReviewKeyword,
		TargetSlotCount: req.TargetSlotCount,
		CreatedBy:       actorID(c),
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) ListSlots(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	slots, err := h.itemService.ListSlots(ctx, itemID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, slots)
}

// UpdateSlot edits a slot's override fields and, when identity fields are
// present, runs buyer reconciliation for the slot.
func (h *ItemHandler) UpdateSlot(c echo.Context) error {
	ctx := c.Request().Context()

	slotID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	slot, err := h.itemService.UpdateSlotOverrides(ctx, slotID, service.SlotOverrides{
		ProductName:    req.ProductNameOverride,
		Price:          req.PriceOverride,
		PurchaseOption: req.PurchaseOptionOverride,
	})
	if err != nil {
		return httpError(err)
	}

	if req.OrderNumber != "" || req.AccountDescriptor != "" {
		buyer, err := h.reconcileService.ClaimSlot(ctx, slotID, service.BuyerDetails{
			OrderNumber:       req.OrderNumber,
			AccountDescriptor: req.AccountDescriptor,
			Name:              req.BuyerName,
			Phone:             req.BuyerPhone,
			Address:           req.BuyerAddress,
			TrackingNumber:    req.TrackingNumber,
		})
		if err != nil {
			return httpError(err)
		}
		slot.BuyerID = &buyer.ID
		slot.Buyer = buyer
	}

	return c.JSON(http.StatusOK, slot)
}

func (h *ItemHandler) SplitSlot(c echo.Context) error {
	ctx := c.Request().Context()

	slotID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	result, err := h.splitService.SplitDayGroup(ctx, slotID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.SplitResponse{
		NewDayGroup: result.NewDayGroup,
		MovedCount:  result.MovedCount,
	})
}
