package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/grocerypos/backend/internal/application/catalog"
)

// UploadFormField is the multipart field carrying the image
const UploadFormField = "image"

// UploadHandler accepts product image uploads
type UploadHandler struct {
	BaseHandler
	imageService *catalogapp.ImageService
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(imageService *catalogapp.ImageService) *UploadHandler {
	return &UploadHandler{imageService: imageService}
}

// Upload stores the "image" form file and returns the URL it is served from
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile(UploadFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.HandleError(c, catalogapp.ErrImageTooLarge)
			return
		}
		h.HandleError(c, catalogapp.ErrNoFileUploaded)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	resp, err := h.imageService.Upload(c.Request.Context(), &catalogapp.UploadImageRequest{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
