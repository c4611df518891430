package services

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/free4fun/carbon-codex/config"
	"github.com/free4fun/carbon-codex/markdown"
	"github.com/free4fun/carbon-codex/models"
	"github.com/free4fun/carbon-codex/repositories"
	"github.com/free4fun/carbon-codex/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.InitDB(&config.Config{DBDriver: config.DriverSQLite, DatabaseURL: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// fixture wires every service against one in-memory database and a
// temporary upload directory. The post service clock advances one minute
// per write so published_at values are distinct.
type fixture struct {
	t          *testing.T
	ctx        context.Context
	db         *gorm.DB
	store      *storage.LocalStore
	posts      *postService
	content    ContentService
	tags       TagService
	authors    AuthorService
	categories CategoryService
	clock      time.Time
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	store, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	postRepo := repositories.NewPostRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	authorRepo := repositories.NewAuthorRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)

	f := &fixture{
		t:          t,
		ctx:        context.Background(),
		db:         db,
		store:      store,
		content:    NewContentService(postRepo, tagRepo, authorRepo, categoryRepo, markdown.NewRenderer()),
		tags:       NewTagService(tagRepo),
		authors:    NewAuthorService(authorRepo),
		categories: NewCategoryService(categoryRepo),
		clock:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.posts = NewPostService(repositories.NewUnitOfWork(db), postRepo, tagRepo, store).(*postService)
	f.posts.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fixture) create(req models.PostRequest) *models.AdminPost {
	f.t.Helper()
	f.tick()
	post, err := f.posts.Create(f.ctx, req)
	require.NoError(f.t, err)
	return post
}

func (f *fixture) category(name string, translations ...models.CategoryTranslationInput) *models.Category {
	f.t.Helper()
	c, err := f.categories.Create(f.ctx, models.CategoryRequest{Name: name, Translations: translations})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) author(slug, name string, translations ...models.AuthorTranslationInput) *models.Author {
	f.t.Helper()
	a, err := f.authors.Create(f.ctx, models.AuthorRequest{Slug: slug, Name: name, Bio: "Writes things.", Translations: translations})
	require.NoError(f.t, err)
	return a
}

func publishedReq(slug, locale, title string) models.PostRequest {
	draft := false
	return models.PostRequest{
		Slug:   slug,
		Locale: locale,
		Title:  title,
		BodyMd: "Body of " + title,
		Draft:  &draft,
	}
}

func draftReq(slug, locale, title string) models.PostRequest {
	return models.PostRequest{Slug: slug, Locale: locale, Title: title, BodyMd: "Draft body"}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}
