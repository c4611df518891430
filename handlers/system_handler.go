package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/free4fun/carbon-codex/helper"
	"github.com/free4fun/carbon-codex/logger"
	"github.com/free4fun/carbon-codex/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SystemHandler struct {
	db             *gorm.DB
	sitemapService services.SitemapService
	Helper         *helper.HTTPHelper
}

func NewSystemHandler(db *gorm.DB, sitemapService services.SitemapService, h *helper.HTTPHelper) *SystemHandler {
	return &SystemHandler{db: db, sitemapService: sitemapService, Helper: h}
}

// Health pings the database and reports 503 when it is unreachable.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		log := logger.Component("health")
		log.Error().Err(err).Msg("database ping failed")
		h.Helper.SendError(c, "database unavailable", gin.H{"status": "unhealthy"}, http.StatusServiceUnavailable, `serviceUnavailable`)
		return
	}
	h.Helper.SendSuccess(c, "Success", gin.H{"status": "healthy"})
}

func (h *SystemHandler) Sitemap(c *gin.Context) {
	body, err := h.sitemapService.Build(c.Request.Context())
	if err != nil {
		h.Helper.SendAPIError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}
