package handlers

import (
	"github.com/free4fun/carbon-codex/helper"
	"github.com/free4fun/carbon-codex/middleware"
	"github.com/free4fun/carbon-codex/models"
	"github.com/free4fun/carbon-codex/services"

	"github.com/gin-gonic/gin"
)

// ContentHandler serves the public blog. The locale always comes from the
// Locale middleware.
type ContentHandler struct {
	contentService services.ContentService
	Helper         *helper.HTTPHelper
}

func NewContentHandler(contentService services.ContentService, h *helper.HTTPHelper) *ContentHandler {
	return &ContentHandler{contentService: contentService, Helper: h}
}

func (h *ContentHandler) offsetPage(c *gin.Context, page models.OffsetPage, pageNum, limit int, extra gin.H) {
	data := gin.H{
		"items":    page.Items,
		"total":    page.Total,
		"degraded": page.Degraded,
		"paging":   h.Helper.GeneratePaging(c, limit, pageNum, page.Total),
	}
	for k, v := range extra {
		data[k] = v
	}
	h.Helper.SendSuccess(c, "Success", data)
}

func (h *ContentHandler) LatestPosts(c *gin.Context) {
	limit := helper.SanitizeLimit(c.Query("limit"), helper.DefaultLimit, helper.MaxLimit)
	page := h.contentService.LatestPosts(c.Request.Context(), middleware.GetLocale(c), limit, c.Query("cursor"))
	h.Helper.SendSuccess(c, "Success", page)
}

func (h *ContentHandler) GetPost(c *gin.Context) {
	post := h.contentService.GetPostBySlug(c.Request.Context(), c.Param("slug"), middleware.GetLocale(c))
	if post == nil {
		h.Helper.SendNotFoundError(c, "Post not found", h.Helper.EmptyJsonMap())
		return
	}
	h.Helper.SendSuccess(c, "Success", post)
}

func (h *ContentHandler) RelatedPosts(c *gin.Context) {
	limit := helper.SanitizeLimit(c.Query("limit"), services.RelatedLimit, helper.MaxLimit)
	posts := h.contentService.RelatedPosts(c.Request.Context(), c.Param("slug"), middleware.GetLocale(c), limit)
	h.Helper.SendSuccess(c, "Success", posts)
}

func (h *ContentHandler) GetCategories(c *gin.Context) {
	h.Helper.SendSuccess(c, "Success", h.contentService.Categories(c.Request.Context(), middleware.GetLocale(c)))
}

func (h *ContentHandler) GetCategory(c *gin.Context) {
	category := h.contentService.Category(c.Request.Context(), c.Param("slug"), middleware.GetLocale(c))
	if category == nil {
		h.Helper.SendNotFoundError(c, "Category not found", h.Helper.EmptyJsonMap())
		return
	}
	h.Helper.SendSuccess(c, "Success", category)
}

func (h *ContentHandler) GetCategoryPosts(c *gin.Context) {
	ctx := c.Request.Context()
	locale := middleware.GetLocale(c)
	category := h.contentService.Category(ctx, c.Param("slug"), locale)
	if category == nil {
		h.Helper.SendNotFoundError(c, "Category not found", h.Helper.EmptyJsonMap())
		return
	}

	pageNum, limit, offset := pageParams(c)
	page := h.contentService.PostsByCategory(ctx, category.Slug, locale, offset, limit)
	h.offsetPage(c, page, pageNum, limit, gin.H{"category": category})
}

func (h *ContentHandler) GetAuthors(c *gin.Context) {
	h.Helper.SendSuccess(c, "Success", h.contentService.Authors(c.Request.Context(), middleware.GetLocale(c)))
}

func (h *ContentHandler) GetAuthor(c *gin.Context) {
	author := h.contentService.Author(c.Request.Context(), c.Param("slug"), middleware.GetLocale(c))
	if author == nil {
		h.Helper.SendNotFoundError(c, "Author not found", h.Helper.EmptyJsonMap())
		return
	}
	h.Helper.SendSuccess(c, "Success", author)
}

func (h *ContentHandler) GetAuthorPosts(c *gin.Context) {
	ctx := c.Request.Context()
	locale := middleware.GetLocale(c)
	author := h.contentService.Author(ctx, c.Param("slug"), locale)
	if author == nil {
		h.Helper.SendNotFoundError(c, "Author not found", h.Helper.EmptyJsonMap())
		return
	}

	pageNum, limit, offset := pageParams(c)
	page := h.contentService.PostsByAuthor(ctx, author.Slug, locale, offset, limit)
	h.offsetPage(c, page, pageNum, limit, gin.H{"author": author})
}

// Search takes limit and offset directly rather than a page number.
func (h *ContentHandler) Search(c *gin.Context) {
	limit := helper.SanitizeLimit(c.Query("limit"), services.SearchLimit, helper.MaxLimit)
	offset := helper.SanitizeOffset(c.Query("offset"))
	page := h.contentService.Search(c.Request.Context(), middleware.GetLocale(c), c.Query("q"), offset, limit)
	h.Helper.SendSuccess(c, "Success", gin.H{
		"items":    page.Items,
		"total":    page.Total,
		"degraded": page.Degraded,
		"query":    c.Query("q"),
		"limit":    limit,
		"offset":   offset,
	})
}
