package handlers

import (
	"github.com/free4fun/carbon-codex/helper"
	"github.com/free4fun/carbon-codex/models"
	"github.com/free4fun/carbon-codex/services"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryService services.CategoryService
	Helper        *helper.HTTPHelper
}

func NewCategoryHandler(categoryService services.CategoryService, h *helper.HTTPHelper) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, Helper: h}
}

func (h *CategoryHandler) bind(c *gin.Context) (models.CategoryRequest, bool) {
	var req models.CategoryRequest
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

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Success", categories)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, h.Helper, "id")
	if !ok {
		return
	}
	category, err := h.categoryService.Get(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Success", category)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	category, err := h.categoryService.Create(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendCreated(c, "Category saved successfully", category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, h.Helper, "id")
	if !ok {
		return
	}
	req, ok := h.bind(c)
	if !ok {
		return
	}
	category, err := h.categoryService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Category updated successfully", category)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, h.Helper, "id")
	if !ok {
		return
	}
	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Category deleted successfully", gin.H{"ok": true})
}
