package handlers

import (
	"errors"
	"net/http"

	"github.com/free4fun/carbon-codex/errs"
	"github.com/free4fun/carbon-codex/helper"
	"github.com/free4fun/carbon-codex/services"
	"github.com/free4fun/carbon-codex/storage"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for form fields and boundaries on top of
// the file size limit.
const multipartOverhead = 1 << 20

type UploadHandler struct {
	uploadService services.UploadService
	Helper        *helper.HTTPHelper
}

func NewUploadHandler(uploadService services.UploadService, h *helper.HTTPHelper) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, Helper: h}
}

func (h *UploadHandler) ListUploads(c *gin.Context) {
	recursive := c.Query("recursive") == "1" || c.Query("recursive") == "true"
	files, err := h.uploadService.List(c.Request.Context(), c.Query("dir"), recursive)
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Success", files)
}

func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxUploadBytes+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Helper.SendAPIError(c, errs.NewTooLargeError(storage.MaxUploadBytes))
			return
		}
		h.Helper.SendAPIError(c, errs.NewInvalidFieldError("file", "is required"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.Helper.SendAPIError(c, errs.NewInternalErrorWithCause("open upload", err))
		return
	}
	defer f.Close()

	info, err := h.uploadService.Upload(c.Request.Context(), f, fh.Size, fh.Header.Get("Content-Type"), fh.Filename, c.PostForm("destDir"))
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendCreated(c, "File uploaded successfully", info)
}

func (h *UploadHandler) DeleteUpload(c *gin.Context) {
	rel := c.Query("rel")
	if rel == "" {
		h.Helper.SendAPIError(c, errs.NewInvalidFieldError("rel", "is required"))
		return
	}
	if err := h.uploadService.Delete(c.Request.Context(), rel); err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "File deleted successfully", gin.H{"ok": true})
}
