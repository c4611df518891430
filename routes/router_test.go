package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/free4fun/carbon-codex/config"
	"github.com/free4fun/carbon-codex/models"
	"github.com/free4fun/carbon-codex/repositories"
	"github.com/free4fun/carbon-codex/routes"
	"github.com/free4fun/carbon-codex/services"
	"github.com/free4fun/carbon-codex/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type envelope struct {
	Code        int             `json:"code"`
	CodeType    string          `json:"code_type"`
	CodeMessage json.RawMessage `json:"code_message"`
	Data        json.RawMessage `json:"data"`
}

type IntegrationTestSuite struct {
	suite.Suite
	db          *gorm.DB
	store       *storage.LocalStore
	router      *gin.Engine
	token       string
	readerToken string
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

func (suite *IntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	config.SetJWT("test-secret", time.Hour)
}

func (suite *IntegrationTestSuite) SetupTest() {
	cfg := &config.Config{
		DBDriver:    config.DriverSQLite,
		DatabaseURL: ":memory:",
		UploadsBase: "/uploads",
		SiteURL:     "https://blog.test",
		CORSOrigins: []string{"*"},
	}

	db, err := config.InitDB(cfg)
	suite.Require().NoError(err)
	suite.Require().NoError(config.Migrate(db))
	suite.db = db

	store, err := storage.NewLocalStore(suite.T().TempDir(), cfg.UploadsBase)
	suite.Require().NoError(err)
	suite.store = store

	suite.router = routes.Setup(cfg, db, store)

	_, err = services.NewAuthService(repositories.NewUserRepository(db)).
		EnsureAdmin(context.Background(), "admin@example.com", "password123")
	suite.Require().NoError(err)
	suite.token = suite.login("admin@example.com", "password123")

	suite.readerToken, err = services.GenerateToken(&models.User{ID: 99, Email: "reader@example.com"})
	suite.Require().NoError(err)
}

func (suite *IntegrationTestSuite) TearDownTest() {
	if sqlDB, err := suite.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (suite *IntegrationTestSuite) do(method, target string, body interface{}, token string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (suite *IntegrationTestSuite) decode(env envelope, dest interface{}) {
	suite.Require().NoError(json.Unmarshal(env.Data, dest))
}

func (suite *IntegrationTestSuite) login(email, password string) string {
	w, env := suite.do(http.MethodPost, "/api/v1/auth/login", models.LoginRequest{Email: email, Password: password}, "")
	suite.Require().Equal(http.StatusOK, w.Code)

	var resp models.AuthResponse
	suite.decode(env, &resp)
	suite.Require().NotEmpty(resp.Token)
	return resp.Token
}

func (suite *IntegrationTestSuite) createPost(req models.PostRequest) models.AdminPost {
	w, env := suite.do(http.MethodPost, "/api/v1/admin/posts", req, suite.token)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var post models.AdminPost
	suite.decode(env, &post)
	return post
}

func published(slug, locale, title string) models.PostRequest {
	draft := false
	return models.PostRequest{Slug: slug, Locale: locale, Title: title, BodyMd: "# " + title + "\n\nSome text.", Draft: &draft}
}

func (suite *IntegrationTestSuite) TestAuthFlow() {
	w, env := suite.do(http.MethodGet, "/api/v1/auth/me", nil, suite.token)
	suite.Equal(http.StatusOK, w.Code)
	var user models.User
	suite.decode(env, &user)
	suite.Equal("admin@example.com", user.Email)
	suite.True(user.IsAdmin)

	w, env = suite.do(http.MethodPost, "/api/v1/auth/login", models.LoginRequest{Email: "admin@example.com", Password: "nope"}, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("unAuthorized", env.CodeType)

	w, env = suite.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "not-an-email"}, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("validationError", env.CodeType)
	var fields map[string][]string
	suite.Require().NoError(json.Unmarshal(env.CodeMessage, &fields))
	suite.Contains(fields, "email")
	suite.Contains(fields, "password")

	w, _ = suite.do(http.MethodGet, "/api/v1/auth/me", nil, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *IntegrationTestSuite) TestAdminRoutesRequireAdmin() {
	w, _ := suite.do(http.MethodGet, "/api/v1/admin/posts", nil, "")
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, env := suite.do(http.MethodGet, "/api/v1/admin/posts", nil, suite.readerToken)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("forbidden", env.CodeType)

	w, _ = suite.do(http.MethodPost, "/api/v1/admin/uploads", nil, suite.readerToken)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *IntegrationTestSuite) TestPostLifecycle() {
	en := suite.createPost(published("", "en", "Hello, World!"))
	suite.Equal("hello-world", en.Slug)
	suite.False(en.Draft)

	w, env := suite.do(http.MethodGet, "/api/v1/posts/hello-world?locale=es", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("es", w.Header().Get("Content-Language"))
	var detail models.PostDetail
	suite.decode(env, &detail)
	suite.Equal("en", detail.Locale)
	suite.True(detail.Fallback)
	suite.Contains(detail.BodyHTML, `id="hello-world"`)

	suite.createPost(published("hello-world", "es", "Hola, Mundo"))

	w, env = suite.do(http.MethodGet, "/api/v1/posts/hello-world", nil, "", "Accept-Language", "es-ES,es;q=0.9")
	suite.Equal(http.StatusOK, w.Code)
	suite.decode(env, &detail)
	suite.Equal("es", detail.Locale)
	suite.False(detail.Fallback)
	suite.Equal([]string{"en"}, detail.OtherLocales)

	w, env = suite.do(http.MethodPost, "/api/v1/admin/posts", published("hello-world", "en", "Again"), suite.token)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("conflict", env.CodeType)

	w, env = suite.do(http.MethodPost, "/api/v1/admin/posts", models.PostRequest{Locale: "de"}, suite.token)
	suite.Equal(http.StatusBadRequest, w.Code)
	var fields map[string][]string
	suite.Require().NoError(json.Unmarshal(env.CodeMessage, &fields))
	suite.Contains(fields, "title")
	suite.Contains(fields, "locale")
	suite.Contains(fields, "body_md")

	update := published("hello-world", "en", "Hello again")
	update.Tags = "news, go"
	w, env = suite.do(http.MethodPut, fmt.Sprintf("/api/v1/admin/posts/%d", en.ID), update, suite.token)
	suite.Equal(http.StatusOK, w.Code)
	var updated models.AdminPost
	suite.decode(env, &updated)
	suite.Equal("Hello again", updated.Title)
	suite.Equal([]string{"go", "news"}, updated.Tags)
	suite.Require().NotNil(updated.PublishedAt)
	suite.True(updated.PublishedAt.Equal(*en.PublishedAt))

	w, env = suite.do(http.MethodGet, "/api/v1/admin/posts?locale=en", nil, suite.token)
	suite.Equal(http.StatusOK, w.Code)
	var list models.AdminPostPage
	suite.decode(env, &list)
	suite.Len(list.Items, 1)
	suite.Nil(list.NextCursor)

	w, _ = suite.do(http.MethodGet, "/api/v1/admin/posts?cursor=garbage", nil, suite.token)
	suite.Equal(http.StatusBadRequest, w.Code)

	w, _ = suite.do(http.MethodGet, "/api/v1/admin/posts/abc", nil, suite.token)
	suite.Equal(http.StatusBadRequest, w.Code)

	w, _ = suite.do(http.MethodDelete, fmt.Sprintf("/api/v1/admin/posts/%d", en.ID), nil, suite.token)
	suite.Equal(http.StatusOK, w.Code)
	w, _ = suite.do(http.MethodDelete, fmt.Sprintf("/api/v1/admin/posts/%d", en.ID), nil, suite.token)
	suite.Equal(http.StatusNotFound, w.Code)

	w, env = suite.do(http.MethodGet, "/api/v1/posts/hello-world?locale=en", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.decode(env, &detail)
	suite.Equal("es", detail.Locale)
}

func (suite *IntegrationTestSuite) TestDraftsStayPrivate() {
	suite.createPost(models.PostRequest{Locale: "en", Title: "Work in progress", BodyMd: "tbd"})

	w, _ := suite.do(http.MethodGet, "/api/v1/posts/work-in-progress", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)

	w, env := suite.do(http.MethodGet, "/api/v1/posts", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	var page models.CursorPage
	suite.decode(env, &page)
	suite.Empty(page.Items)
}

func (suite *IntegrationTestSuite) TestPublicListings() {
	w, env := suite.do(http.MethodPost, "/api/v1/admin/categories", models.CategoryRequest{
		Name:         "Engineering",
		Translations: []models.CategoryTranslationInput{{Locale: "es", Name: "Ingeniería"}},
	}, suite.token)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var category models.Category
	suite.decode(env, &category)

	w, env = suite.do(http.MethodPost, "/api/v1/admin/authors", models.AuthorRequest{Slug: "ada", Name: "Ada"}, suite.token)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var author models.Author
	suite.decode(env, &author)

	for i, title := range []string{"First", "Second", "Third"} {
		req := published("", "en", title)
		req.CategoryID = &category.ID
		req.AuthorID = &author.ID
		req.Tags = "go"
		if i == 2 {
			req.BodyMd = "A post about goroutines."
		}
		suite.createPost(req)
	}

	w, env = suite.do(http.MethodGet, "/api/v1/posts?limit=2", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	var latest models.CursorPage
	suite.decode(env, &latest)
	suite.Len(latest.Items, 2)
	suite.Require().NotNil(latest.NextCursor)

	w, env = suite.do(http.MethodGet, "/api/v1/categories?locale=es", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	var categories []models.CategoryListItem
	suite.decode(env, &categories)
	suite.Require().Len(categories, 1)
	suite.Equal("Ingeniería", categories[0].Name)

	w, env = suite.do(http.MethodGet, "/api/v1/categories/engineering/posts?limit=2&page=2", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	var byCategory struct {
		Items []models.PostCard `json:"items"`
		Total int64             `json:"total"`
	}
	suite.decode(env, &byCategory)
	suite.Equal(int64(3), byCategory.Total)
	suite.Len(byCategory.Items, 1)

	w, _ = suite.do(http.MethodGet, "/api/v1/categories/missing/posts", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
	w, _ = suite.do(http.MethodGet, "/api/v1/tags/missing/posts", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
	w, _ = suite.do(http.MethodGet, "/api/v1/authors/missing", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)

	w, env = suite.do(http.MethodGet, "/api/v1/authors/ada/posts", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.decode(env, &byCategory)
	suite.Equal(int64(3), byCategory.Total)

	w, env = suite.do(http.MethodGet, "/api/v1/tags/count", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	var count struct {
		Count int64 `json:"count"`
	}
	suite.decode(env, &count)
	suite.Equal(int64(1), count.Count)

	w, env = suite.do(http.MethodGet, "/api/v1/search?q=goroutines", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.decode(env, &byCategory)
	suite.Equal(int64(1), byCategory.Total)
	suite.Equal("third", byCategory.Items[0].Slug)

	w, env = suite.do(http.MethodGet, "/api/v1/posts/first/related", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	var related []models.PostCard
	suite.decode(env, &related)
	suite.Len(related, 2)
}

func pngBody(suite *IntegrationTestSuite, destDir string) (*bytes.Buffer, string) {
	var img bytes.Buffer
	suite.Require().NoError(png.Encode(&img, image.NewGray(image.Rect(0, 0, 3, 2))))

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="Cover Image.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	suite.Require().NoError(err)
	_, err = part.Write(img.Bytes())
	suite.Require().NoError(err)
	suite.Require().NoError(mw.WriteField("destDir", destDir))
	suite.Require().NoError(mw.Close())
	return body, mw.FormDataContentType()
}

func (suite *IntegrationTestSuite) upload(destDir string) (*httptest.ResponseRecorder, envelope) {
	body, contentType := pngBody(suite, destDir)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+suite.token)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	var env envelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func (suite *IntegrationTestSuite) TestUploadFlow() {
	w, env := suite.upload("posts/hello")
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var info storage.FileInfo
	suite.decode(env, &info)
	suite.Equal("posts/hello/cover-image.png", info.Rel)
	suite.Equal("/uploads/posts/hello/cover-image.png", info.URL)
	suite.Equal(3, info.Width)

	w, _ = suite.do(http.MethodGet, info.URL, nil, "")
	suite.Equal(http.StatusOK, w.Code)

	w, env = suite.do(http.MethodGet, "/api/v1/admin/uploads?dir=posts&recursive=true", nil, suite.token)
	suite.Equal(http.StatusOK, w.Code)
	var files []storage.FileInfo
	suite.decode(env, &files)
	suite.Len(files, 1)

	w, _ = suite.upload("../outside")
	suite.Equal(http.StatusBadRequest, w.Code)

	w, _ = suite.do(http.MethodDelete, "/api/v1/admin/uploads", nil, suite.token)
	suite.Equal(http.StatusBadRequest, w.Code)
	w, _ = suite.do(http.MethodDelete, "/api/v1/admin/uploads?rel="+info.Rel, nil, suite.token)
	suite.Equal(http.StatusOK, w.Code)
	w, _ = suite.do(http.MethodDelete, "/api/v1/admin/uploads?rel="+info.Rel, nil, suite.token)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *IntegrationTestSuite) TestHealthAndSitemap() {
	w, env := suite.do(http.MethodGet, "/health", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"status":"healthy"}`, string(env.Data))

	suite.createPost(published("mapped", "en", "Mapped"))

	w, _ = suite.do(http.MethodGet, "/sitemap.xml", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Header().Get("Content-Type"), "application/xml")
	suite.Contains(w.Body.String(), "<loc>https://blog.test/en/blog/mapped</loc>")
}
