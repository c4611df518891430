package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/free4fun/carbon-codex/config"
	"github.com/free4fun/carbon-codex/errs"
	"github.com/free4fun/carbon-codex/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store keeps uploads in an S3 compatible bucket (AWS, R2, MinIO).
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3Store(cfg config.S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	opts := func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
		// Some S3-compatible backends reject checksum trailers.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	}
	client := s3.New(s3.Options{}, opts)

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.Bucket)
	}

	log := logger.Component("storage")
	log.Info().
		Str("bucket", cfg.Bucket).
		Str("endpoint", cfg.Endpoint).
		Msg("S3 storage client initialized")

	return &S3Store{client: client, bucket: cfg.Bucket, publicURL: publicURL}, nil
}

func (s *S3Store) URL(rel string) string {
	return joinURL(s.publicURL, rel)
}

func (s *S3Store) Save(ctx context.Context, r io.Reader, contentType, filename, destDir string) (*FileInfo, error) {
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

	key := path.Join(dir, SanitizeFilename(filename, mt))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mt),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("s3 upload", err)
	}

	return &FileInfo{
		Rel:         key,
		Name:        path.Base(key),
		URL:         s.URL(key),
		ContentType: mt,
		Size:        int64(len(data)),
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// List pages through the prefix. Without recursive, keys below a further
// slash are skipped through the delimiter.
func (s *S3Store) List(ctx context.Context, dir string, recursive bool) ([]FileInfo, error) {
	rel, err := CleanRel(dir)
	if err != nil {
		return nil, err
	}
	prefix := ""
	if rel != "" {
		prefix = rel + "/"
	}

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}
	if !recursive {
		input.Delimiter = aws.String("/")
	}

	files := []FileInfo{}
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errs.NewInternalErrorWithCause("s3 list", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !IsImageName(key) {
				continue
			}
			info := FileInfo{
				Rel:         key,
				Name:        path.Base(key),
				URL:         s.URL(key),
				ContentType: contentTypeFor(key),
				Size:        aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				info.ModTime = *obj.LastModified
			}
			files = append(files, info)
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

func (s *S3Store) Delete(ctx context.Context, rel string) error {
	key, err := CleanRel(rel)
	if err != nil {
		return err
	}
	if key == "" {
		return errs.NewInvalidPathError(rel)
	}

	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return errs.NewNotFoundError("file")
		}
		return errs.NewInternalErrorWithCause("s3 head", err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		return errs.NewInternalErrorWithCause("s3 delete", err)
	}
	return nil
}

// Move copies every object under fromDir to toDir and deletes the source.
// Buckets have no rename, so a failure midway can leave both prefixes.
func (s *S3Store) Move(ctx context.Context, fromDir, toDir string) (bool, error) {
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

	existing, err := s.keys(ctx, to+"/", 1)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	keys, err := s.keys(ctx, from+"/", 0)
	if err != nil {
		return false, err
	}
	if len(keys) == 0 {
		return false, nil
	}

	for _, key := range keys {
		target := to + strings.TrimPrefix(key, from)
		_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:     aws.String(s.bucket),
			CopySource: aws.String(s.bucket + "/" + escapeKey(key)),
			Key:        aws.String(target),
		})
		if err != nil {
			return false, fmt.Errorf("s3 copy %s: %w", key, err)
		}
		_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
		if err != nil {
			return false, fmt.Errorf("s3 delete %s: %w", key, err)
		}
	}
	return true, nil
}

// keys lists object keys under prefix, stopping after max when max > 0.
func (s *S3Store) keys(ctx context.Context, prefix string, max int) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
			if max > 0 && len(keys) >= max {
				return keys, nil
			}
		}
	}
	return keys, nil
}

func escapeKey(key string) string {
	segs := strings.Split(key, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}
