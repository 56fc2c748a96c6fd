package handler

import (
	"net/http"
	"strconv"

	"campaign-review-engine/internal/dto"
	"campaign-review-engine/internal/service"

	"github.com/labstack/echo/v4"
)

type AssignmentHandler struct {
	assignmentService service.AssignmentService
}

func NewAssignmentHandler(assignmentService service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
	}
}

func (h *AssignmentHandler) bindRequest(c echo.Context) (*dto.AssignmentRequest, error) {
	var req dto.AssignmentRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := validate.Struct(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return &req, nil
}

func (h *AssignmentHandler) Assign(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := h.bindRequest(c)
	if err != nil {
		return err
	}

	assignment, err := h.assignmentService.Assign(ctx, req.ItemID, req.DayGroup, req.OperatorID, actorID(c))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, assignment)
}

func (h *AssignmentHandler) Reassign(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := h.bindRequest(c)
	if err != nil {
		return err
	}

	assignment, err := h.assignmentService.Reassign(ctx, req.ItemID, req.DayGroup, req.OperatorID, actorID(c))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, assignment)
}

func (h *AssignmentHandler) Unassign(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := strconv.ParseUint(c.QueryParam("item_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item_id")
	}
	operatorID := c.QueryParam("operator_id")
	if operatorID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing operator_id")
	}

	var dayGroup *int
	if raw := c.QueryParam("day_group"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid day_group")
		}
		dayGroup = &parsed
	}

	err = h.assignmentService.Unassign(ctx, uint(itemID), dayGroup, operatorID)
	if err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AssignmentHandler) ListByItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	assignments, err := h.assignmentService.ListByItem(ctx, itemID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, assignments)
}
