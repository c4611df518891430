package handlers

import (
	"github.com/free4fun/carbon-codex/helper"
	"github.com/free4fun/carbon-codex/models"
	"github.com/free4fun/carbon-codex/services"

	"github.com/gin-gonic/gin"
)

type AuthorHandler struct {
	authorService services.AuthorService
	Helper        *helper.HTTPHelper
}

func NewAuthorHandler(authorService services.AuthorService, h *helper.HTTPHelper) *AuthorHandler {
	return &AuthorHandler{authorService: authorService, Helper: h}
}

func (h *AuthorHandler) bind(c *gin.Context) (models.AuthorRequest, bool) {
	var req models.AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid JSON body", h.Helper.EmptyJsonMap())
		return req, false
	}
	if err := h.Helper.ValidateStruct(req); err != nil {
		h.Helper.SendAPIError(c, err)
		return req, false
	}
	return req, true
}

func (h *AuthorHandler) ListAuthors(c *gin.Context) {
	authors, err := h.authorService.List(c.Request.Context())
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Success", authors)
}

func (h *AuthorHandler) GetAuthor(c *gin.Context) {
	id, ok := parseID(c, h.Helper, "id")
	if !ok {
		return
	}
	author, err := h.authorService.Get(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Success", author)
}

func (h *AuthorHandler) CreateAuthor(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	author, err := h.authorService.Create(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendCreated(c, "Author saved successfully", author)
}

func (h *AuthorHandler) UpdateAuthor(c *gin.Context) {
	id, ok := parseID(c, h.Helper, "id")
	if !ok {
		return
	}
	req, ok := h.bind(c)
	if !ok {
		return
	}
	author, err := h.authorService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Author updated successfully", author)
}

func (h *AuthorHandler) DeleteAuthor(c *gin.Context) {
	id, ok := parseID(c, h.Helper, "id")
	if !ok {
		return
	}
	if err := h.authorService.Delete(c.Request.Context(), id); err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Author deleted successfully", gin.H{"ok": true})
}
