package handler

import (
	"net/http"

	"campaign-review-engine/internal/dto"
	"campaign-review-engine/internal/service"

	"github.com/labstack/echo/v4"
)

type TrashHandler struct {
	trashService service.TrashService
}

func NewTrashHandler(trashService service.TrashService) *TrashHandler {
	return &TrashHandler{
		trashService: trashService,
	}
}

func (h *TrashHandler) SoftDelete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	err = h.trashService.SoftDelete(ctx, service.EntityType(c.Param("type")), id)
	if err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *TrashHandler) Restore(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	report, err := h.trashService.Restore(ctx, service.EntityType(c.Param("type")), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, report)
}

func (h *TrashHandler) PermanentDelete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	err = h.trashService.PermanentDelete(ctx, service.EntityType(c.Param("type")), id)
	if err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *TrashHandler) EmptyTrash(c echo.Context) error {
	ctx := c.Request().Context()

	purged, err := h.trashService.PurgeExpired(ctx)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.EmptyTrashResponse{PurgedCount: purged})
}
