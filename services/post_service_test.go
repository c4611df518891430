package services

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/free4fun/carbon-codex/errs"
	"github.com/free4fun/carbon-codex/models"

	"github.com/stretchr/testify/suite"
)

type PostServiceSuite struct {
	suite.Suite
	f *fixture
}

func TestPostServiceSuite(t *testing.T) {
	suite.Run(t, new(PostServiceSuite))
}

func (s *PostServiceSuite) SetupTest() {
	s.f = newFixture(s.T())
}

func (s *PostServiceSuite) count(model interface{}) int64 {
	var n int64
	s.Require().NoError(s.f.db.Model(model).Count(&n).Error)
	return n
}

func (s *PostServiceSuite) TestCreateDerivesSlugAndDefaultsToDraft() {
	post := s.f.create(models.PostRequest{
		Locale: "en",
		Title:  "Hello, World! 2024",
		BodyMd: "Hi",
		Tags:   "Go, go, Web Dev",
	})

	s.Equal("hello-world-2024", post.Slug)
	s.True(post.Draft)
	s.Nil(post.PublishedAt)
	s.Equal([]string{"go", "web-dev"}, post.Tags)
}

func (s *PostServiceSuite) TestCreateRejectsUnsluggableTitle() {
	_, err := s.f.posts.Create(s.f.ctx, models.PostRequest{Locale: "en", Title: "!!!", BodyMd: "x"})
	s.True(errs.IsValidation(err))
	s.Zero(s.count(&models.PostGroup{}))
}

func (s *PostServiceSuite) TestPublishTransitions() {
	first := s.f.clock.Add(time.Minute)
	post := s.f.create(publishedReq("launch", "en", "Launch"))
	s.False(post.Draft)
	s.Require().NotNil(post.PublishedAt)
	s.True(post.PublishedAt.Equal(first))

	// re-saving a published post keeps the original date
	s.f.tick()
	post, err := s.f.posts.Update(s.f.ctx, post.ID, publishedReq("launch", "en", "Launch edited"))
	s.Require().NoError(err)
	s.False(post.Draft)
	s.Require().NotNil(post.PublishedAt)
	s.True(post.PublishedAt.Equal(first))

	// republishing keeps the original date
	s.f.tick()
	req := draftReq("launch", "en", "Launch v2")
	req.PublishNow = true
	post, err = s.f.posts.Update(s.f.ctx, post.ID, req)
	s.Require().NoError(err)
	s.Require().NotNil(post.PublishedAt)
	s.True(post.PublishedAt.Equal(first))
	s.Equal("Launch v2", post.Title)

	// back to draft clears it
	s.f.tick()
	post, err = s.f.posts.Update(s.f.ctx, post.ID, draftReq("launch", "en", "Launch v2"))
	s.Require().NoError(err)
	s.True(post.Draft)
	s.Nil(post.PublishedAt)

	// publishing again stamps the new time
	again := s.f.tick()
	post, err = s.f.posts.Update(s.f.ctx, post.ID, publishedReq("launch", "en", "Launch v2"))
	s.Require().NoError(err)
	s.Require().NotNil(post.PublishedAt)
	s.True(post.PublishedAt.Equal(again))
}

func (s *PostServiceSuite) TestReadMinutesZeroIsUnset() {
	req := publishedReq("timed", "en", "Timed")
	zero := 0
	req.ReadMinutes = &zero
	post := s.f.create(req)
	s.Equal(0, post.ReadMinutes)

	var stored models.Post
	s.Require().NoError(s.f.db.First(&stored, post.ID).Error)
	s.Nil(stored.ReadMinutes)
}

func (s *PostServiceSuite) TestTagsAreSharedByTheGroup() {
	en := publishedReq("shared", "en", "Shared")
	en.Tags = "a, b, c"
	enPost := s.f.create(en)

	es := publishedReq("shared", "es", "Compartido")
	es.Tags = "b, c, d"
	esPost := s.f.create(es)

	s.Equal(enPost.GroupID, esPost.GroupID)
	s.Equal([]string{"b", "c", "d"}, esPost.Tags)

	again, err := s.f.posts.AdminGet(s.f.ctx, enPost.ID)
	s.Require().NoError(err)
	s.Equal([]string{"b", "c", "d"}, again.Tags)
	s.Equal(int64(3), s.count(&models.PostGroupTag{}))
}

func (s *PostServiceSuite) TestCreateConflictLeavesGroupUntouched() {
	req := publishedReq("dup", "en", "Original")
	req.Tags = "keep"
	req.CoverURL = "/uploads/posts/dup/a.png"
	original := s.f.create(req)

	clash := publishedReq("dup", "en", "Intruder")
	clash.Tags = "replace"
	clash.CoverURL = "/uploads/posts/dup/b.png"
	_, err := s.f.posts.Create(s.f.ctx, clash)
	s.Require().Error(err)
	s.True(errs.IsConflict(err))
	s.Contains(err.Error(), "Original")

	got, err := s.f.posts.AdminGet(s.f.ctx, original.ID)
	s.Require().NoError(err)
	s.Equal([]string{"keep"}, got.Tags)
	s.Require().NotNil(got.CoverURL)
	s.Equal("/uploads/posts/dup/a.png", *got.CoverURL)
	s.Equal(int64(1), s.count(&models.Post{}))
}

func (s *PostServiceSuite) TestUpdateKeepsSlugWhenBlank() {
	post := s.f.create(publishedReq("stable", "en", "Stable"))

	req := publishedReq("", "en", "Renamed title")
	updated, err := s.f.posts.Update(s.f.ctx, post.ID, req)
	s.Require().NoError(err)
	s.Equal("stable", updated.Slug)
	s.Equal(post.GroupID, updated.GroupID)
}

func (s *PostServiceSuite) TestUpdateSlugMovesPostAndUploads() {
	_, err := s.f.store.Save(s.f.ctx, bytes.NewReader(pngBytes(s.T())), "image/png", "cover.png", "posts/old")
	s.Require().NoError(err)

	req := publishedReq("old", "en", "Old")
	req.CoverURL = "/uploads/posts/old/cover.png"
	req.Tags = "x"
	post := s.f.create(req)

	req.Slug = "new"
	updated, err := s.f.posts.Update(s.f.ctx, post.ID, req)
	s.Require().NoError(err)

	s.Equal("new", updated.Slug)
	s.NotEqual(post.GroupID, updated.GroupID)
	s.Equal([]string{"x"}, updated.Tags)
	s.Require().NotNil(updated.CoverURL)
	s.Equal("/uploads/posts/new/cover.png", *updated.CoverURL)
	s.FileExists(filepath.Join(s.f.store.Root, "posts", "new", "cover.png"))
	s.NoDirExists(filepath.Join(s.f.store.Root, "posts", "old"))

	s.Equal(int64(1), s.count(&models.PostGroup{}))
	s.Nil(s.f.content.GetPostBySlug(s.f.ctx, "old", "en"))
}

func (s *PostServiceSuite) TestUpdateSlugKeepsGroupWithOtherLocales() {
	en := s.f.create(publishedReq("pair", "en", "Pair"))
	s.f.create(publishedReq("pair", "es", "Par"))

	updated, err := s.f.posts.Update(s.f.ctx, en.ID, publishedReq("pair-en", "en", "Pair"))
	s.Require().NoError(err)
	s.Equal("pair-en", updated.Slug)
	s.Equal(int64(2), s.count(&models.PostGroup{}))

	detail := s.f.content.GetPostBySlug(s.f.ctx, "pair", "en")
	s.Require().NotNil(detail)
	s.Equal("es", detail.Locale)
}

func (s *PostServiceSuite) TestUpdateIntoTakenLocaleConflicts() {
	s.f.create(publishedReq("taken", "en", "Taken"))
	other := s.f.create(publishedReq("other", "en", "Other"))

	_, err := s.f.posts.Update(s.f.ctx, other.ID, publishedReq("taken", "en", "Other"))
	s.True(errs.IsConflict(err))

	got, err := s.f.posts.AdminGet(s.f.ctx, other.ID)
	s.Require().NoError(err)
	s.Equal("other", got.Slug)
}

func (s *PostServiceSuite) TestUpdateAndDeleteMissingPost() {
	_, err := s.f.posts.Update(s.f.ctx, 999, publishedReq("ghost", "en", "Ghost"))
	s.True(errs.IsNotFound(err))
	s.True(errs.IsNotFound(s.f.posts.Delete(s.f.ctx, 999)))

	_, err = s.f.posts.AdminGet(s.f.ctx, 999)
	s.True(errs.IsNotFound(err))
}

func (s *PostServiceSuite) TestDeleteRemovesEmptyGroup() {
	enReq := publishedReq("bye", "en", "Bye")
	enReq.Tags = "t"
	en := s.f.create(enReq)
	esReq := publishedReq("bye", "es", "Adios")
	esReq.Tags = "t"
	es := s.f.create(esReq)

	s.Require().NoError(s.f.posts.Delete(s.f.ctx, en.ID))
	s.Equal(int64(1), s.count(&models.PostGroup{}))
	s.Equal(int64(1), s.count(&models.PostGroupTag{}))

	s.Require().NoError(s.f.posts.Delete(s.f.ctx, es.ID))
	s.Zero(s.count(&models.PostGroup{}))
	s.Zero(s.count(&models.PostGroupTag{}))
	s.Zero(s.count(&models.Post{}))
}

func (s *PostServiceSuite) TestAdminListPagesAndFilters() {
	for i := 0; i < AdminPostLimit+1; i++ {
		s.f.create(publishedReq(fmt.Sprintf("post-%02d", i), "en", fmt.Sprintf("Post %02d", i)))
	}
	s.f.create(draftReq("unfinished", "es", "Borrador"))

	page, err := s.f.posts.AdminList(s.f.ctx, models.AdminPostListParams{Locale: "en"})
	s.Require().NoError(err)
	s.Len(page.Items, AdminPostLimit)
	s.Equal("post-25", page.Items[0].Slug)
	s.Require().NotNil(page.NextCursor)

	page, err = s.f.posts.AdminList(s.f.ctx, models.AdminPostListParams{Locale: "en", Cursor: *page.NextCursor})
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal("post-00", page.Items[0].Slug)
	s.Nil(page.NextCursor)

	page, err = s.f.posts.AdminList(s.f.ctx, models.AdminPostListParams{Draft: "true"})
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal("unfinished", page.Items[0].Slug)

	page, err = s.f.posts.AdminList(s.f.ctx, models.AdminPostListParams{Q: "post 1"})
	s.Require().NoError(err)
	s.Len(page.Items, 10)

	_, err = s.f.posts.AdminList(s.f.ctx, models.AdminPostListParams{Cursor: "yesterday"})
	s.True(errs.IsValidation(err))
	_, err = s.f.posts.AdminList(s.f.ctx, models.AdminPostListParams{Locale: "fr"})
	s.True(errs.IsValidation(err))
}
