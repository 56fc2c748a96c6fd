package handler

import (
	"net/http"

	"campaign-review-engine/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// httpError maps the engine's error categories onto HTTP statuses; anything
// untyped falls through to echo's 500 handling.
func httpError(err error) error {
	kind, ok := service.KindOf(err)
	if !ok {
		return err
	}

	switch kind {
	case service.KindValidation:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case service.KindConflict:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case service.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return err
	}
}

func actorID(c echo.Context) string {
	if id, ok := c.Get("user_id").(string); ok {
		return id
	}
	return ""
}
