package models

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// PostRequest is the admin payload for creating or updating a localized post.
// An empty slug is derived from the title. Draft defaults to true.
type PostRequest struct {
	Slug        string `json:"slug" validate:"max=200"`
	CategoryID  *uint  `json:"category_id"`
	AuthorID    *uint  `json:"author_id"`
	Tags        string `json:"tags" validate:"max=1000"`
	CoverURL    string `json:"cover_url" validate:"max=2048,weburl"`
	Locale      string `json:"locale" validate:"required,oneof=en es"`
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=1000"`
	BodyMd      string `json:"body_md" validate:"required,max=200000"`
	ReadMinutes *int   `json:"read_minutes" validate:"omitempty,min=0"`
	Draft       *bool  `json:"draft"`
	PublishNow  bool   `json:"publish_now"`
}

// WantsDraft resolves the requested draft flag.
func (r PostRequest) WantsDraft() bool {
	if r.Draft == nil {
		return true
	}
	return *r.Draft
}

type AuthorTranslationInput struct {
	Locale string `json:"locale" validate:"required,oneof=en es"`
	Bio    string `json:"bio" validate:"max=5000"`
}

type AuthorRequest struct {
	Slug         string                   `json:"slug" validate:"required,max=200"`
	Name         string                   `json:"name" validate:"required,max=255"`
	Bio          string                   `json:"bio" validate:"max=5000"`
	AvatarURL    string                   `json:"avatar_url" validate:"max=2048,weburl"`
	WebsiteURL   string                   `json:"website_url" validate:"max=2048"`
	LinkedinURL  string                   `json:"linkedin_url" validate:"max=2048"`
	GithubURL    string                   `json:"github_url" validate:"max=2048"`
	XURL         string                   `json:"x_url" validate:"max=2048"`
	Translations []AuthorTranslationInput `json:"translations" validate:"dive"`
}

type CategoryTranslationInput struct {
	Locale      string `json:"locale" validate:"required,oneof=en es"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
}

// CategoryRequest carries no slug: it is always derived from the name.
type CategoryRequest struct {
	Name         string                     `json:"name" validate:"required,max=255"`
	Description  string                     `json:"description" validate:"max=5000"`
	ImageURL     string                     `json:"image_url" validate:"max=2048,weburl"`
	Translations []CategoryTranslationInput `json:"translations" validate:"dive"`
}

type PageParams struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=10"`
}

// AdminPostListParams filters the back office post list. Draft is "true",
// "false" or empty for both.
type AdminPostListParams struct {
	Q        string `form:"q"`
	Locale   string `form:"locale"`
	Category string `form:"category"`
	Draft    string `form:"draft"`
	Cursor   string `form:"cursor"`
}
