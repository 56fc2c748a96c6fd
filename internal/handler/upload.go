package handler

import (
	"io"
	"net/http"

	"campaign-review-engine/internal/dto"
	"campaign-review-engine/internal/service"

	"github.com/labstack/echo/v4"
)

type UploadHandler struct {
	reconcileService service.ReconcileService
}

func NewUploadHandler(reconcileService service.ReconcileService) *UploadHandler {
	return &UploadHandler{
		reconcileService: reconcileService,
	}
}

// Upload accepts an anonymous multipart submission: optional order_number and
// account_descriptor fields plus one or more files under "images".
func (h *UploadHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	token := c.Param("token")

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	files := make([]service.UploadFile, 0, len(form.File["images"]))
	for _, header := range form.File["images"] {
		src, err := header.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable image upload")
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable image upload")
		}
		files = append(files, service.UploadFile{
			Name: header.Filename,
			Data: data,
		})
	}

	result, err := h.reconcileService.UploadImages(ctx, token, service.UploadIdentity{
		OrderNumber:       c.FormValue("order_number"),
		AccountDescriptor: c.FormValue("account_descriptor"),
	}, files)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.UploadResponse{
		MatchedBuyerID:   result.BuyerID,
		IsTemporaryBuyer: result.IsTemporaryBuyer,
		ImageIDs:         result.ImageIDs,
	})
}
