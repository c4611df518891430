package services

import (
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/free4fun/carbon-codex/models"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type SitemapService interface {
	Build(ctx context.Context) ([]byte, error)
}

type sitemapService struct {
	content ContentService
	siteURL string
}

func NewSitemapService(content ContentService, siteURL string) SitemapService {
	return &sitemapService{content: content, siteURL: strings.TrimRight(siteURL, "/")}
}

// Build renders every published post as <site>/<locale>/blog/<slug>. A read
// failure produces an empty urlset.
func (s *sitemapService) Build(ctx context.Context) ([]byte, error) {
	return RenderSitemap(s.siteURL, s.content.SitemapEntries(ctx))
}

func RenderSitemap(siteURL string, entries []models.SitemapEntry) ([]byte, error) {
	set := urlSet{Xmlns: sitemapNS, URLs: make([]sitemapURL, 0, len(entries))}
	for _, e := range entries {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        siteURL + "/" + e.Locale + "/blog/" + url.PathEscape(e.Slug),
			LastMod:    e.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			ChangeFreq: "weekly",
			Priority:   "0.6",
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
