package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/free4fun/carbon-codex/errs"
	"github.com/free4fun/carbon-codex/helper"
	"github.com/free4fun/carbon-codex/logger"
	"github.com/free4fun/carbon-codex/models"
	"github.com/free4fun/carbon-codex/repositories"
	"github.com/free4fun/carbon-codex/storage"

	"github.com/rs/zerolog"
)

const AdminPostLimit = 25

// PostService performs the admin writes on post groups and their localized
// posts. Each mutation runs in a single transaction.
type PostService interface {
	Create(ctx context.Context, req models.PostRequest) (*models.AdminPost, error)
	Update(ctx context.Context, id uint, req models.PostRequest) (*models.AdminPost, error)
	Delete(ctx context.Context, id uint) error
	AdminList(ctx context.Context, params models.AdminPostListParams) (*models.AdminPostPage, error)
	AdminGet(ctx context.Context, id uint) (*models.AdminPost, error)
}

type postService struct {
	uow      repositories.UnitOfWork
	postRepo repositories.PostRepository
	tagRepo  repositories.TagRepository
	store    storage.Store
	now      func() time.Time
	log      zerolog.Logger
}

// NewPostService builds the service. store may be nil, in which case upload
// directories are left alone when a slug changes.
func NewPostService(uow repositories.UnitOfWork, postRepo repositories.PostRepository, tagRepo repositories.TagRepository, store storage.Store) PostService {
	return &postService{
		uow:      uow,
		postRepo: postRepo,
		tagRepo:  tagRepo,
		store:    store,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logger.Component("posts"),
	}
}

func (s *postService) Create(ctx context.Context, req models.PostRequest) (*models.AdminPost, error) {
	slug := helper.Slugify(req.Slug)
	if slug == "" {
		slug = helper.Slugify(req.Title)
	}
	if slug == "" {
		return nil, errs.NewInvalidFieldError("slug", "cannot be derived from the title")
	}
	tags := helper.ParseTags(req.Tags)
	now := s.now()

	var postID uint
	err := s.uow.Do(ctx, func(tx repositories.PostTx) error {
		group := &models.PostGroup{
			Slug:       slug,
			CategoryID: optionalID(req.CategoryID),
			AuthorID:   optionalID(req.AuthorID),
			CoverURL:   helper.NullableString(req.CoverURL),
		}
		if err := tx.UpsertGroup(group); err != nil {
			return err
		}

		existing, err := tx.FindPostByGroupLocale(group.ID, req.Locale)
		if err != nil {
			return err
		}
		if existing != nil {
			return errs.NewConflictError(fmt.Sprintf("a %q post already exists for %q: %q", req.Locale, slug, existing.Title))
		}

		post := &models.Post{GroupID: group.ID}
		applyPostRequest(post, req, now)
		if err := tx.CreatePost(post); err != nil {
			return err
		}
		postID = post.ID

		return tx.ReplaceGroupTags(group.ID, tags)
	})
	if err != nil {
		return nil, errs.NewDatabaseError("create", "post", err)
	}

	s.log.Info().Uint("post_id", postID).Str("slug", slug).Str("locale", req.Locale).Msg("post created")
	return s.AdminGet(ctx, postID)
}

// Update replaces the post row. A changed slug moves the post to the group
// holding that slug; the previous group is removed once empty and its
// uploads follow the rename.
func (s *postService) Update(ctx context.Context, id uint, req models.PostRequest) (*models.AdminPost, error) {
	tags := helper.ParseTags(req.Tags)
	now := s.now()

	var (
		oldSlug, newSlug string
		newGroupID       uint
		cover            *string
		oldGroupRemoved  bool
	)
	err := s.uow.Do(ctx, func(tx repositories.PostTx) error {
		post, err := tx.GetPost(id)
		if err != nil {
			return err
		}
		oldGroup, err := tx.GetGroup(post.GroupID)
		if err != nil {
			return err
		}
		oldSlug = oldGroup.Slug

		slug := helper.Slugify(req.Slug)
		if slug == "" {
			slug = oldGroup.Slug
		}

		group := &models.PostGroup{
			Slug:       slug,
			CategoryID: optionalID(req.CategoryID),
			AuthorID:   optionalID(req.AuthorID),
			CoverURL:   helper.NullableString(req.CoverURL),
		}
		if err := tx.UpsertGroup(group); err != nil {
			return err
		}

		other, err := tx.FindPostByGroupLocale(group.ID, req.Locale)
		if err != nil {
			return err
		}
		if other != nil && other.ID != post.ID {
			return errs.NewConflictError(fmt.Sprintf("a %q post already exists for %q: %q", req.Locale, slug, other.Title))
		}

		post.GroupID = group.ID
		applyPostRequest(post, req, now)
		if err := tx.SavePost(post); err != nil {
			return err
		}
		if err := tx.ReplaceGroupTags(group.ID, tags); err != nil {
			return err
		}

		if oldGroup.ID != group.ID {
			remaining, err := tx.CountGroupPosts(oldGroup.ID)
			if err != nil {
				return err
			}
			if remaining == 0 {
				if err := tx.DeleteGroup(oldGroup.ID); err != nil {
					return err
				}
				oldGroupRemoved = true
			}
		}

		newSlug = group.Slug
		newGroupID = group.ID
		cover = group.CoverURL
		return nil
	})
	if err != nil {
		return nil, errs.NewDatabaseError("update", "post", err)
	}

	if oldGroupRemoved && oldSlug != newSlug {
		s.moveUploads(ctx, newGroupID, oldSlug, newSlug, cover)
	}
	return s.AdminGet(ctx, id)
}

// moveUploads is best effort: failures are logged and the update stands.
func (s *postService) moveUploads(ctx context.Context, groupID uint, oldSlug, newSlug string, cover *string) {
	if s.store == nil {
		return
	}
	from := path.Join("posts", oldSlug)
	to := path.Join("posts", newSlug)

	moved, err := s.store.Move(ctx, from, to)
	if err != nil {
		s.log.Warn().Err(err).Str("from", from).Str("to", to).Msg("upload directory move failed")
		return
	}
	if !moved || cover == nil {
		return
	}

	rewritten, changed := storage.RewriteURL(*cover, s.store.URL(from), s.store.URL(to))
	if !changed {
		return
	}
	err = s.uow.Do(ctx, func(tx repositories.PostTx) error {
		return tx.SetGroupCover(groupID, &rewritten)
	})
	if err != nil {
		s.log.Warn().Err(err).Uint("group_id", groupID).Msg("cover url rewrite failed")
	}
}

// Delete removes the post and, when it was the last locale, its group and
// tag links.
func (s *postService) Delete(ctx context.Context, id uint) error {
	err := s.uow.Do(ctx, func(tx repositories.PostTx) error {
		post, err := tx.GetPost(id)
		if err != nil {
			return err
		}
		if err := tx.DeletePost(post.ID); err != nil {
			return err
		}
		remaining, err := tx.CountGroupPosts(post.GroupID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			return tx.DeleteGroup(post.GroupID)
		}
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("delete", "post", err)
	}
	s.log.Info().Uint("post_id", id).Msg("post deleted")
	return nil
}

func (s *postService) AdminList(ctx context.Context, params models.AdminPostListParams) (*models.AdminPostPage, error) {
	var before *time.Time
	if params.Cursor != "" {
		t, err := ParseCursor(params.Cursor)
		if err != nil {
			return nil, errs.NewInvalidFieldError("cursor", "must be an RFC 3339 timestamp")
		}
		before = &t
	}
	if params.Locale != "" && !helper.IsSupportedLocale(params.Locale) {
		return nil, errs.NewInvalidFieldError("locale", "must be one of en es")
	}

	rows, err := s.postRepo.AdminList(ctx, params, before, AdminPostLimit)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "posts", err)
	}

	page := &models.AdminPostPage{Items: rows}
	if page.Items == nil {
		page.Items = []models.AdminPostRow{}
	}
	if len(rows) == AdminPostLimit {
		last := rows[len(rows)-1]
		key := last.UpdatedAt
		if last.PublishedAt != nil {
			key = *last.PublishedAt
		}
		next := FormatCursor(key)
		page.NextCursor = &next
	}
	return page, nil
}

func (s *postService) AdminGet(ctx context.Context, id uint) (*models.AdminPost, error) {
	post, group, err := s.postRepo.AdminGet(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("get", "post", err)
	}
	tags, err := s.tagRepo.SlugsForGroup(ctx, group.ID)
	if err != nil {
		return nil, errs.NewDatabaseError("get", "post tags", err)
	}
	if tags == nil {
		tags = []string{}
	}

	readMinutes := 0
	if post.ReadMinutes != nil {
		readMinutes = *post.ReadMinutes
	}
	return &models.AdminPost{
		ID:          post.ID,
		GroupID:     group.ID,
		Slug:        group.Slug,
		CategoryID:  group.CategoryID,
		AuthorID:    group.AuthorID,
		CoverURL:    group.CoverURL,
		Locale:      post.Locale,
		Title:       post.Title,
		Description: post.Description,
		BodyMd:      post.BodyMd,
		ReadMinutes: readMinutes,
		Draft:       post.Draft,
		PublishedAt: post.PublishedAt,
		UpdatedAt:   post.UpdatedAt,
		Tags:        tags,
	}, nil
}

// applyPostRequest copies the payload onto the row and applies the publish
// transition: publishing keeps an existing published_at, returning to draft
// clears it.
func applyPostRequest(post *models.Post, req models.PostRequest, now time.Time) {
	post.Locale = req.Locale
	post.Title = req.Title
	post.Description = helper.NullableString(req.Description)
	post.BodyMd = req.BodyMd
	post.ReadMinutes = nil
	if req.ReadMinutes != nil && *req.ReadMinutes > 0 {
		minutes := *req.ReadMinutes
		post.ReadMinutes = &minutes
	}
	post.UpdatedAt = now

	if req.PublishNow || !req.WantsDraft() {
		post.Draft = false
		if post.PublishedAt == nil {
			t := now
			post.PublishedAt = &t
		}
		return
	}
	post.Draft = true
	post.PublishedAt = nil
}

func optionalID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}
