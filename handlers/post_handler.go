package handlers

import (
	"github.com/free4fun/carbon-codex/helper"
	"github.com/free4fun/carbon-codex/models"
	"github.com/free4fun/carbon-codex/services"

	"github.com/gin-gonic/gin"
)

// PostHandler serves the admin post endpoints.
type PostHandler struct {
	postService services.PostService
	Helper      *helper.HTTPHelper
}

func NewPostHandler(postService services.PostService, h *helper.HTTPHelper) *PostHandler {
	return &PostHandler{postService: postService, Helper: h}
}

func (h *PostHandler) bind(c *gin.Context) (models.PostRequest, bool) {
	var req models.PostRequest
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

func (h *PostHandler) ListPosts(c *gin.Context) {
	var params models.AdminPostListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query", h.Helper.EmptyJsonMap())
		return
	}

	page, err := h.postService.AdminList(c.Request.Context(), params)
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Success", page)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := parseID(c, h.Helper, "id")
	if !ok {
		return
	}

	post, err := h.postService.AdminGet(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Success", post)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	post, err := h.postService.Create(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendCreated(c, "Post created successfully", post)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := parseID(c, h.Helper, "id")
	if !ok {
		return
	}
	req, ok := h.bind(c)
	if !ok {
		return
	}

	post, err := h.postService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Post updated successfully", post)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := parseID(c, h.Helper, "id")
	if !ok {
		return
	}

	if err := h.postService.Delete(c.Request.Context(), id); err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Post deleted successfully", gin.H{"ok": true})
}
