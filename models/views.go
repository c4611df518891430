package models

import "time"

type TagRef struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// AuthorSummary is an author with its bio resolved for a locale.
type AuthorSummary struct {
	ID          uint    `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url" gorm:"column:avatar_url"`
	WebsiteURL  *string `json:"website_url" gorm:"column:website_url"`
	LinkedinURL *string `json:"linkedin_url" gorm:"column:linkedin_url"`
	GithubURL   *string `json:"github_url" gorm:"column:github_url"`
	XURL        *string `json:"x_url" gorm:"column:x_url"`
}

// CategorySummary is a category with name and description resolved for a locale.
type CategorySummary struct {
	ID          uint    `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

type AuthorRef struct {
	Slug      string  `json:"slug"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

type CategoryRef struct {
	Slug     string  `json:"slug"`
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url"`
}

// PostCard is a published post as shown in listings.
type PostCard struct {
	ID          uint         `json:"id"`
	GroupID     uint         `json:"group_id"`
	Slug        string       `json:"slug"`
	Locale      string       `json:"locale"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	CoverURL    *string      `json:"cover_url"`
	ReadMinutes int          `json:"read_minutes"`
	PublishedAt *time.Time   `json:"published_at"`
	Author      *AuthorRef   `json:"author"`
	Category    *CategoryRef `json:"category"`
	Tags        []TagRef     `json:"tags"`
}

// PostDetail is the resolved post for a slug. Fallback is set when the
// returned locale differs from the requested one.
type PostDetail struct {
	ID              uint             `json:"id"`
	GroupID         uint             `json:"group_id"`
	Slug            string           `json:"slug"`
	Locale          string           `json:"locale"`
	RequestedLocale string           `json:"requested_locale"`
	Fallback        bool             `json:"fallback"`
	Title           string           `json:"title"`
	Description     *string          `json:"description"`
	BodyMd          string           `json:"body_md"`
	BodyHTML        string           `json:"body_html"`
	CoverURL        *string          `json:"cover_url"`
	ReadMinutes     int              `json:"read_minutes"`
	PublishedAt     *time.Time       `json:"published_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Author          *AuthorSummary   `json:"author"`
	Category        *CategorySummary `json:"category"`
	Tags            []TagRef         `json:"tags"`
	OtherLocales    []string         `json:"other_locales"`
}

// CursorPage is a keyset page. NextCursor is only set when the page was full.
// Degraded marks a page emptied by a read failure.
type CursorPage struct {
	Items      []PostCard `json:"items"`
	NextCursor *string    `json:"next_cursor"`
	Degraded   bool       `json:"degraded,omitempty"`
}

// OffsetPage is an offset page with the total number of matching rows.
type OffsetPage struct {
	Items    []PostCard `json:"items"`
	Total    int64      `json:"total"`
	Degraded bool       `json:"degraded,omitempty"`
}

type CategoryListItem struct {
	CategorySummary
	PostCount int64 `json:"post_count"`
}

type AuthorListItem struct {
	AuthorSummary
	PostCount int64 `json:"post_count"`
}

type TagListItem struct {
	ID        uint   `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	PostCount int64  `json:"post_count"`
}

type SitemapEntry struct {
	Slug      string
	Locale    string
	UpdatedAt time.Time
}

// AdminPostRow is one line of the back office post list.
type AdminPostRow struct {
	ID          uint       `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Locale      string     `json:"locale"`
	Draft       bool       `json:"draft"`
	PublishedAt *time.Time `json:"published_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type AdminPostPage struct {
	Items      []AdminPostRow `json:"items"`
	NextCursor *string        `json:"next_cursor"`
}

// AdminPost is a post with its group fields and tag slugs, ready for editing.
type AdminPost struct {
	ID          uint       `json:"id"`
	GroupID     uint       `json:"group_id"`
	Slug        string     `json:"slug"`
	CategoryID  *uint      `json:"category_id"`
	AuthorID    *uint      `json:"author_id"`
	CoverURL    *string    `json:"cover_url"`
	Locale      string     `json:"locale"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	BodyMd      string     `json:"body_md"`
	ReadMinutes int        `json:"read_minutes"`
	Draft       bool       `json:"draft"`
	PublishedAt *time.Time `json:"published_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Tags        []string   `json:"tags"`
}
