package storage

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/free4fun/carbon-codex/errs"
	"github.com/free4fun/carbon-codex/helper"

	_ "golang.org/x/image/webp"
)

const MaxUploadBytes int64 = 5 << 20

// allowedTypes maps each accepted MIME type to its canonical extension.
var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

var allowedExts = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

type FileInfo struct {
	Rel         string    `json:"rel"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
}

// Store keeps uploaded images. Relative paths use forward slashes and are
// resolved against the store root; any ".." segment is rejected.
type Store interface {
	Save(ctx context.Context, r io.Reader, contentType, filename, destDir string) (*FileInfo, error)
	List(ctx context.Context, dir string, recursive bool) ([]FileInfo, error)
	Delete(ctx context.Context, rel string) error
	// Move renames a directory. It reports false when the source is missing
	// or the target already exists.
	Move(ctx context.Context, fromDir, toDir string) (bool, error)
	URL(rel string) string
}

// CleanRel validates a relative path and returns it without leading or
// trailing slashes. The empty string is the root.
func CleanRel(p string) (string, error) {
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return "", errs.NewInvalidPathError(p)
		}
	}
	if strings.ContainsRune(p, 0) {
		return "", errs.NewInvalidPathError(p)
	}
	cleaned := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	return strings.Trim(cleaned, "/"), nil
}

// MediaType returns the bare, allowed MIME type or an unsupported media
// type error.
func MediaType(contentType string) (string, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	if _, ok := allowedTypes[mt]; !ok {
		return "", errs.NewUnsupportedMediaTypeError(contentType, AllowedTypes())
	}
	return mt, nil
}

func AllowedTypes() []string {
	return []string{"image/jpeg", "image/png", "image/webp"}
}

// SanitizeFilename slugifies the base name and keeps the extension only
// when it matches the content type.
func SanitizeFilename(name, contentType string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(path.Ext(name))
	base := helper.Slugify(strings.TrimSuffix(name, path.Ext(name)))
	if base == "" {
		base = "image"
	}
	if allowedExts[ext] != contentType {
		ext = allowedTypes[contentType]
	}
	return base + ext
}

// IsImageName reports whether the file name has an accepted extension.
func IsImageName(name string) bool {
	_, ok := allowedExts[strings.ToLower(path.Ext(name))]
	return ok
}

func contentTypeFor(name string) string {
	return allowedExts[strings.ToLower(path.Ext(name))]
}

// readUpload reads at most MaxUploadBytes and checks that the bytes are an
// image of the declared type.
func readUpload(r io.Reader, contentType string) ([]byte, image.Config, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, image.Config{}, errs.NewInternalErrorWithCause("read upload", err)
	}
	if int64(len(data)) > MaxUploadBytes {
		return nil, image.Config{}, errs.NewTooLargeError(MaxUploadBytes)
	}

	sniffed := http.DetectContentType(data)
	if sniffed != contentType {
		return nil, image.Config{}, errs.NewUnsupportedMediaTypeError(sniffed, AllowedTypes())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, image.Config{}, errs.NewInvalidFieldError("file", "is not a readable image")
	}
	return data, cfg, nil
}

// RewriteURL swaps oldBase for newBase when u points inside oldBase.
func RewriteURL(u, oldBase, newBase string) (string, bool) {
	oldBase = strings.TrimRight(oldBase, "/")
	newBase = strings.TrimRight(newBase, "/")
	if !strings.HasPrefix(u, oldBase+"/") {
		return u, false
	}
	return newBase + strings.TrimPrefix(u, oldBase), true
}

func joinURL(base, rel string) string {
	base = strings.TrimRight(base, "/")
	if rel == "" {
		return base
	}
	return base + "/" + rel
}
