package services

import (
	"context"
	"io"

	"github.com/free4fun/carbon-codex/errs"
	"github.com/free4fun/carbon-codex/logger"
	"github.com/free4fun/carbon-codex/storage"
)

type UploadService interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType, filename, destDir string) (*storage.FileInfo, error)
	List(ctx context.Context, dir string, recursive bool) ([]storage.FileInfo, error)
	Delete(ctx context.Context, rel string) error
}

type uploadService struct {
	store storage.Store
}

func NewUploadService(store storage.Store) UploadService {
	return &uploadService{store: store}
}

// Upload rejects a declared size over the limit before reading the body.
// The store enforces the limit again on the bytes actually read.
func (s *uploadService) Upload(ctx context.Context, r io.Reader, size int64, contentType, filename, destDir string) (*storage.FileInfo, error) {
	if _, err := storage.CleanRel(destDir); err != nil {
		return nil, err
	}
	if _, err := storage.MediaType(contentType); err != nil {
		return nil, err
	}
	if size > storage.MaxUploadBytes {
		return nil, errs.NewTooLargeError(storage.MaxUploadBytes)
	}

	info, err := s.store.Save(ctx, r, contentType, filename, destDir)
	if err != nil {
		return nil, err
	}
	log := logger.Component("uploads")
	log.Info().Str("rel", info.Rel).Int64("size", info.Size).Msg("upload stored")
	return info, nil
}

func (s *uploadService) List(ctx context.Context, dir string, recursive bool) ([]storage.FileInfo, error) {
	return s.store.List(ctx, dir, recursive)
}

func (s *uploadService) Delete(ctx context.Context, rel string) error {
	return s.store.Delete(ctx, rel)
}
