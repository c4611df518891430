package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/free4fun/carbon-codex/errs"
	"github.com/free4fun/carbon-codex/logger"
)

// LocalStore keeps uploads on the local filesystem under Root and serves
// them from BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{Root: abs, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// resolve maps a cleaned relative path to an absolute one inside Root.
func (s *LocalStore) resolve(rel string) (string, error) {
	full := filepath.Join(s.Root, filepath.FromSlash(rel))
	if full != s.Root && !strings.HasPrefix(full, s.Root+string(filepath.Separator)) {
		return "", errs.NewInvalidPathError(rel)
	}
	return full, nil
}

func (s *LocalStore) URL(rel string) string {
	return joinURL(s.BaseURL, rel)
}

func (s *LocalStore) Save(ctx context.Context, r io.Reader, contentType, filename, destDir string) (*FileInfo, error) {
	dir, err := CleanRel(destDir)
	if err != nil {
		return nil, err
	}
	mt, err := MediaType(contentType)
	if err != nil {
		return nil, err
	}
	data, cfg, err := readUpload(r, mt)
	if err != nil {
		return nil, err
	}

	rel := path.Join(dir, SanitizeFilename(filename, mt))
	full, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, errs.NewInternalErrorWithCause("create upload directory", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return nil, errs.NewInternalErrorWithCause("write upload", err)
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("stat upload", err)
	}
	return &FileInfo{
		Rel:         rel,
		Name:        path.Base(rel),
		URL:         s.URL(rel),
		ContentType: mt,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// List returns images under dir, newest first. A missing directory is empty.
func (s *LocalStore) List(ctx context.Context, dir string, recursive bool) ([]FileInfo, error) {
	rel, err := CleanRel(dir)
	if err != nil {
		return nil, err
	}
	root, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}

	files := []FileInfo{}
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == root && errors.Is(walkErr, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return walkErr
		}
		if d.IsDir() {
			if p != root && !recursive {
				return fs.SkipDir
			}
			return nil
		}
		if !IsImageName(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		fileRel, err := filepath.Rel(s.Root, p)
		if err != nil {
			return err
		}
		fileRel = filepath.ToSlash(fileRel)
		files = append(files, FileInfo{
			Rel:         fileRel,
			Name:        d.Name(),
			URL:         s.URL(fileRel),
			ContentType: contentTypeFor(d.Name()),
			Size:        info.Size(),
			ModTime:     info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("list uploads", err)
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Rel < files[j].Rel
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

func (s *LocalStore) Delete(ctx context.Context, rel string) error {
	cleaned, err := CleanRel(rel)
	if err != nil {
		return err
	}
	if cleaned == "" {
		return errs.NewInvalidPathError(rel)
	}
	full, err := s.resolve(cleaned)
	if err != nil {
		return err
	}

	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return errs.NewNotFoundError("file")
	}
	if err != nil {
		return errs.NewInternalErrorWithCause("stat upload", err)
	}
	if info.IsDir() {
		return errs.NewInvalidPathError(rel)
	}
	if err := os.Remove(full); err != nil {
		return errs.NewInternalErrorWithCause("delete upload", err)
	}
	log := logger.Component("storage")
	log.Info().Str("rel", cleaned).Msg("upload deleted")
	return nil
}

func (s *LocalStore) Move(ctx context.Context, fromDir, toDir string) (bool, error) {
	from, err := CleanRel(fromDir)
	if err != nil {
		return false, err
	}
	to, err := CleanRel(toDir)
	if err != nil {
		return false, err
	}
	if from == "" || to == "" || from == to {
		return false, errs.NewInvalidPathError(fromDir)
	}

	src, err := s.resolve(from)
	if err != nil {
		return false, err
	}
	dst, err := s.resolve(to)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if _, err := os.Stat(dst); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, err
	}
	if err := os.Rename(src, dst); err != nil {
		return false, err
	}
	return true, nil
}
