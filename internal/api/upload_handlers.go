package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/storage"
)

// UploadHandler manages images in the upload bucket
type UploadHandler struct {
	uploader *storage.Uploader
}

// NewUploadHandler creates the upload handler
func NewUploadHandler(uploader *storage.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// List returns the stored images, newest first
// GET /admin/uploads?prefix=rooms
func (h *UploadHandler) List(c *gin.Context) {
	objects, err := h.uploader.Bucket().List(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		respondError(c, err)
		return
	}
	if objects == nil {
		objects = []storage.Object{}
	}
	c.JSON(http.StatusOK, gin.H{"items": objects})
}

// Upload stores one image from the multipart field "file"
// POST /admin/uploads (folder, inline)
func (h *UploadHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperrors.NewValidationError("file", "An image file is required"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, apperrors.NewBadRequestError("could not read the uploaded file"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, apperrors.NewBadRequestError("could not read the uploaded file"))
		return
	}

	obj, err := h.uploader.UploadImage(c.Request.Context(), c.PostForm("folder"), data, c.PostForm("inline") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, obj)
}

// Delete removes an image
// DELETE /admin/uploads/*name
func (h *UploadHandler) Delete(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("name"), "/")
	if err := h.uploader.Bucket().Delete(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}
