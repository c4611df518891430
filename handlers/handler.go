package handlers

import (
	"strconv"

	"github.com/free4fun/carbon-codex/helper"

	"github.com/gin-gonic/gin"
)

// parseID reads a positive numeric path parameter and answers 400 when it
// is not one.
func parseID(c *gin.Context, h *helper.HTTPHelper, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		h.SendBadRequest(c, "Invalid "+name, h.EmptyJsonMap())
		return 0, false
	}
	return uint(id), true
}

// pageParams reads page and limit, returning the offset for them.
func pageParams(c *gin.Context) (page, limit, offset int) {
	limit = helper.SanitizeLimit(c.Query("limit"), helper.DefaultLimit, helper.MaxLimit)
	page = helper.SanitizeLimit(c.Query("page"), 1, 1<<20)
	return page, limit, (page - 1) * limit
}
