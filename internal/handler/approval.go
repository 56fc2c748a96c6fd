package handler

import (
	"net/http"

	"campaign-review-engine/internal/service"

	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{
		approvalService: approvalService,
	}
}

func (h *ApprovalHandler) ListPending(c echo.Context) error {
	ctx := c.Request().Context()

	pending, err := h.approvalService.ListPending(ctx)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, pending)
}

func (h *ApprovalHandler) Approve(c echo.Context) error {
	ctx := c.Request().Context()

	imageID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.approvalService.Approve(ctx, imageID); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *ApprovalHandler) Reject(c echo.Context) error {
	ctx := c.Request().Context()

	imageID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.approvalService.Reject(ctx, imageID); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
