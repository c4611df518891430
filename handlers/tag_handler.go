package handlers

import (
	"github.com/free4fun/carbon-codex/helper"
	"github.com/free4fun/carbon-codex/middleware"
	"github.com/free4fun/carbon-codex/services"

	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	tagService     services.TagService
	contentService services.ContentService
	Helper         *helper.HTTPHelper
}

func NewTagHandler(tagService services.TagService, contentService services.ContentService, h *helper.HTTPHelper) *TagHandler {
	return &TagHandler{tagService: tagService, contentService: contentService, Helper: h}
}

func (h *TagHandler) GetTags(c *gin.Context) {
	tags := h.tagService.GetTags(c.Request.Context(), middleware.GetLocale(c))
	h.Helper.SendSuccess(c, "Success", tags)
}

func (h *TagHandler) CountTags(c *gin.Context) {
	count := h.tagService.CountTags(c.Request.Context(), middleware.GetLocale(c))
	h.Helper.SendSuccess(c, "Success", gin.H{"count": count})
}

func (h *TagHandler) GetTagPosts(c *gin.Context) {
	ctx := c.Request.Context()
	tag := h.tagService.GetTag(ctx, c.Param("slug"))
	if tag == nil {
		h.Helper.SendNotFoundError(c, "Tag not found", h.Helper.EmptyJsonMap())
		return
	}

	pageNum, limit, offset := pageParams(c)
	page := h.contentService.PostsByTag(ctx, tag.Slug, middleware.GetLocale(c), offset, limit)
	h.Helper.SendSuccess(c, "Success", gin.H{
		"tag":      tag,
		"items":    page.Items,
		"total":    page.Total,
		"degraded": page.Degraded,
		"paging":   h.Helper.GeneratePaging(c, limit, pageNum, page.Total),
	})
}
